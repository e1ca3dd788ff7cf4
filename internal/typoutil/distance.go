// Package typoutil suggests vocabulary terms close to a misspelled query term.
package typoutil

// Distance returns the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and transpositions of adjacent runes
// each cost one. Once the distance is known to exceed limit the computation
// stops and limit+1 is returned. A negative limit disables the cutoff.
func Distance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	if limit >= 0 && abs(len(ra)-len(rb)) > limit {
		return limit + 1
	}
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Three rows are enough: a transposition looks two rows back.
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d = min(d, prev2[j-2]+1)
			}
			curr[j] = d
			rowMin = min(rowMin, d)
		}
		if limit >= 0 && rowMin > limit {
			return limit + 1
		}
		prev2, prev, curr = prev, curr, prev2
	}

	if limit >= 0 && prev[len(rb)] > limit {
		return limit + 1
	}
	return prev[len(rb)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
