package index

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// EncodeVocabulary serializes v into an opaque blob.
func EncodeVocabulary(v *Vocabulary) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to gob encode vocabulary: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeVocabulary reverses EncodeVocabulary.
func DecodeVocabulary(data []byte) (*Vocabulary, error) {
	v := NewVocabulary()
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return nil, fmt.Errorf("failed to gob decode vocabulary: %w", err)
	}
	return v, nil
}

// EncodeMatrix serializes m into an opaque blob.
func EncodeMatrix(m *SparseMatrix) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("failed to gob encode matrix: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeMatrix reverses EncodeMatrix and checks the CSR structure.
func DecodeMatrix(data []byte) (*SparseMatrix, error) {
	m := &SparseMatrix{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(m); err != nil {
		return nil, fmt.Errorf("failed to gob decode matrix: %w", err)
	}
	// gob drops empty slices
	if m.IndPtr == nil {
		m.IndPtr = make([]int, m.Rows+1)
	}
	if m.Indices == nil {
		m.Indices = []int{}
	}
	if m.Data == nil {
		m.Data = []float64{}
	}
	if !m.valid() {
		return nil, fmt.Errorf("decoded matrix is malformed (%dx%d, %d entries)", m.Rows, m.Cols, len(m.Data))
	}
	return m, nil
}
