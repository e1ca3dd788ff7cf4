package index

import (
	"math"
	"sort"

	"github.com/Linattendu/projet-moteur-recherche/internal/errors"
)

// SparseMatrix is a compressed sparse row (CSR) matrix.
// Row r owns Indices[IndPtr[r]:IndPtr[r+1]] and the matching Data entries,
// with column indices strictly increasing inside a row.
// A SparseMatrix is never mutated after construction.
type SparseMatrix struct {
	Rows    int
	Cols    int
	IndPtr  []int
	Indices []int
	Data    []float64
}

// NewSparseMatrix returns an all-zero matrix of the given shape.
func NewSparseMatrix(rows, cols int) *SparseMatrix {
	return &SparseMatrix{
		Rows:    rows,
		Cols:    cols,
		IndPtr:  make([]int, rows+1),
		Indices: []int{},
		Data:    []float64{},
	}
}

// matrixBuilder appends rows in order.
type matrixBuilder struct {
	indPtr  []int
	indices []int
	data    []float64
}

func newMatrixBuilder(rowsHint int) *matrixBuilder {
	b := &matrixBuilder{indPtr: make([]int, 1, rowsHint+1)}
	return b
}

// appendRow adds the next row from a column→value map.
func (b *matrixBuilder) appendRow(cells map[int]float64) {
	cols := make([]int, 0, len(cells))
	for c := range cells {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	for _, c := range cols {
		b.indices = append(b.indices, c)
		b.data = append(b.data, cells[c])
	}
	b.indPtr = append(b.indPtr, len(b.indices))
}

func (b *matrixBuilder) build(cols int) *SparseMatrix {
	m := &SparseMatrix{
		Rows:    len(b.indPtr) - 1,
		Cols:    cols,
		IndPtr:  b.indPtr,
		Indices: b.indices,
		Data:    b.data,
	}
	if m.Indices == nil {
		m.Indices = []int{}
		m.Data = []float64{}
	}
	return m
}

// NNZ returns the number of stored entries.
func (m *SparseMatrix) NNZ() int {
	return len(m.Data)
}

// Row returns the column indices and values stored for row r.
// The returned slices alias the matrix and must not be modified.
func (m *SparseMatrix) Row(r int) ([]int, []float64) {
	if r < 0 || r >= m.Rows {
		return nil, nil
	}
	start, end := m.IndPtr[r], m.IndPtr[r+1]
	return m.Indices[start:end], m.Data[start:end]
}

// At returns the value at (r, c), zero when the cell is not stored.
func (m *SparseMatrix) At(r, c int) float64 {
	cols, vals := m.Row(r)
	i := sort.SearchInts(cols, c)
	if i < len(cols) && cols[i] == c {
		return vals[i]
	}
	return 0
}

// MulVec returns m · v, one value per row.
func (m *SparseMatrix) MulVec(v []float64) ([]float64, error) {
	if len(v) != m.Cols {
		return nil, errors.NewShapeMismatchError(m.Cols, len(v))
	}
	out := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		var sum float64
		for k := m.IndPtr[r]; k < m.IndPtr[r+1]; k++ {
			sum += m.Data[k] * v[m.Indices[k]]
		}
		out[r] = sum
	}
	return out, nil
}

// ScaleColumns returns a copy of m with every column c multiplied by w[c].
func (m *SparseMatrix) ScaleColumns(w []float64) (*SparseMatrix, error) {
	if len(w) != m.Cols {
		return nil, errors.NewShapeMismatchError(m.Cols, len(w))
	}
	out := &SparseMatrix{
		Rows:    m.Rows,
		Cols:    m.Cols,
		IndPtr:  append([]int(nil), m.IndPtr...),
		Indices: append([]int{}, m.Indices...),
		Data:    make([]float64, len(m.Data)),
	}
	for k, v := range m.Data {
		out.Data[k] = v * w[m.Indices[k]]
	}
	return out, nil
}

// RowNorms returns the Euclidean norm of every row.
func (m *SparseMatrix) RowNorms() []float64 {
	norms := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		var sum float64
		for k := m.IndPtr[r]; k < m.IndPtr[r+1]; k++ {
			sum += m.Data[k] * m.Data[k]
		}
		norms[r] = math.Sqrt(sum)
	}
	return norms
}

// Equal reports whether m and o have the same shape and stored cells.
func (m *SparseMatrix) Equal(o *SparseMatrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Rows != o.Rows || m.Cols != o.Cols || len(m.Data) != len(o.Data) {
		return false
	}
	for i := range m.IndPtr {
		if m.IndPtr[i] != o.IndPtr[i] {
			return false
		}
	}
	for k := range m.Data {
		if m.Indices[k] != o.Indices[k] || m.Data[k] != o.Data[k] {
			return false
		}
	}
	return true
}

// valid checks the structural invariants of a decoded matrix.
func (m *SparseMatrix) valid() bool {
	if m.Rows < 0 || m.Cols < 0 || len(m.IndPtr) != m.Rows+1 || len(m.Indices) != len(m.Data) {
		return false
	}
	if m.IndPtr[0] != 0 || m.IndPtr[m.Rows] != len(m.Data) {
		return false
	}
	for r := 0; r < m.Rows; r++ {
		if m.IndPtr[r] > m.IndPtr[r+1] {
			return false
		}
	}
	for _, c := range m.Indices {
		if c < 0 || c >= m.Cols {
			return false
		}
	}
	return true
}
