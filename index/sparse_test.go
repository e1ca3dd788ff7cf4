package index

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
)

// 2x3 matrix
// [1 0 2]
// [0 3 0]
func sampleMatrix() *SparseMatrix {
	b := newMatrixBuilder(2)
	b.appendRow(map[int]float64{2: 2, 0: 1})
	b.appendRow(map[int]float64{1: 3})
	return b.build(3)
}

func TestSparseMatrixAt(t *testing.T) {
	m := sampleMatrix()
	tests := []struct {
		r, c int
		want float64
	}{
		{0, 0, 1}, {0, 1, 0}, {0, 2, 2},
		{1, 0, 0}, {1, 1, 3}, {1, 2, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := m.At(tt.r, tt.c); got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.r, tt.c, got, tt.want)
		}
	}
	if m.NNZ() != 3 {
		t.Errorf("NNZ() = %d, want 3", m.NNZ())
	}
}

func TestSparseMatrixMulVec(t *testing.T) {
	m := sampleMatrix()
	got, err := m.MulVec([]float64{1, 1, 1})
	if err != nil {
		t.Fatalf("MulVec failed: %v", err)
	}
	if got[0] != 3 || got[1] != 3 {
		t.Errorf("MulVec = %v, want [3 3]", got)
	}

	_, err = m.MulVec([]float64{1, 1})
	if !errors.Is(err, apperrors.ErrShapeMismatch) {
		t.Errorf("expected shape mismatch, got %v", err)
	}
}

func TestSparseMatrixScaleColumns(t *testing.T) {
	m := sampleMatrix()
	scaled, err := m.ScaleColumns([]float64{10, 100, 0.5})
	if err != nil {
		t.Fatalf("ScaleColumns failed: %v", err)
	}
	if scaled.At(0, 0) != 10 || scaled.At(0, 2) != 1 || scaled.At(1, 1) != 300 {
		t.Errorf("unexpected scaled matrix %+v", scaled)
	}
	if m.At(0, 0) != 1 {
		t.Error("ScaleColumns modified its receiver")
	}
}

func TestSparseMatrixRowNorms(t *testing.T) {
	norms := sampleMatrix().RowNorms()
	if math.Abs(norms[0]-math.Sqrt(5)) > 1e-12 || norms[1] != 3 {
		t.Errorf("RowNorms = %v", norms)
	}
}

func TestSparseMatrixValid(t *testing.T) {
	if !sampleMatrix().valid() {
		t.Error("sample matrix should be valid")
	}
	bad := sampleMatrix()
	bad.Cols = 2
	if bad.valid() {
		t.Error("column index beyond width should be invalid")
	}
	if !NewSparseMatrix(4, 0).valid() {
		t.Error("empty matrix should be valid")
	}
}
