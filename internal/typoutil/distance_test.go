package typoutil

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		a     string
		b     string
		limit int
		want  int
	}{
		{"both empty", "", "", -1, 0},
		{"a empty", "", "hello", -1, 5},
		{"b empty", "hello", "", -1, 5},
		{"identical", "hello", "hello", -1, 0},
		{"substitution", "kitten", "sitten", -1, 1},
		{"insertion", "apple", "applye", -1, 1},
		{"deletion", "banana", "banna", -1, 1},
		{"multiple edits", "saturday", "sunday", -1, 3},
		{"transposition", "water", "wtaer", -1, 1},
		{"no substring edits after a transposition", "ca", "abc", -1, 3},
		{"unicode same length", "cliché", "cliche", -1, 1},
		{"unicode two substitutions", "résumé", "resume", -1, 2},
		{"within the limit", "kitten", "sitten", 1, 1},
		{"over the limit stops early", "kitten", "sitting", 1, 2},
		{"length gap over the limit", "a", "abcd", 1, 2},
		{"zero limit on equal strings", "rain", "rain", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b, tt.limit); got != tt.want {
				t.Errorf("Distance(%q, %q, %d) = %d, want %d", tt.a, tt.b, tt.limit, got, tt.want)
			}
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	pairs := [][2]string{{"drought", "droughts"}, {"water", "wtaer"}, {"saturday", "sunday"}}
	for _, p := range pairs {
		if Distance(p[0], p[1], -1) != Distance(p[1], p[0], -1) {
			t.Errorf("Distance(%q, %q) is not symmetric", p[0], p[1])
		}
	}
}
