package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrCorpusNotFound is returned when a corpus is not found
	ErrCorpusNotFound = errors.New("corpus not found")

	// ErrCorpusAlreadyExists is returned when trying to create a corpus that already exists
	ErrCorpusAlreadyExists = errors.New("corpus already exists")

	// ErrDuplicateDocument is returned when a document's source URL is already in the corpus
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrIndexNotBuilt is returned when searching a corpus whose term index was never built
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrShapeMismatch is returned when the TF-IDF matrix and the vocabulary disagree on size
	ErrShapeMismatch = errors.New("tf-idf matrix does not match vocabulary")

	// ErrIncompleteSnapshot is returned when a stored snapshot lacks one of its parts
	ErrIncompleteSnapshot = errors.New("incomplete snapshot")

	// ErrSnapshotNotFound is returned when no snapshot is stored under a name
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// CorpusNotFoundError represents a corpus not found error with context
type CorpusNotFoundError struct {
	CorpusName string
}

func (e *CorpusNotFoundError) Error() string {
	return fmt.Sprintf("corpus named '%s' not found", e.CorpusName)
}

func (e *CorpusNotFoundError) Is(target error) bool {
	return target == ErrCorpusNotFound
}

// NewCorpusNotFoundError creates a new CorpusNotFoundError
func NewCorpusNotFoundError(corpusName string) *CorpusNotFoundError {
	return &CorpusNotFoundError{CorpusName: corpusName}
}

// CorpusAlreadyExistsError represents a corpus already exists error with context
type CorpusAlreadyExistsError struct {
	CorpusName string
}

func (e *CorpusAlreadyExistsError) Error() string {
	return fmt.Sprintf("corpus named '%s' already exists", e.CorpusName)
}

func (e *CorpusAlreadyExistsError) Is(target error) bool {
	return target == ErrCorpusAlreadyExists
}

// NewCorpusAlreadyExistsError creates a new CorpusAlreadyExistsError
func NewCorpusAlreadyExistsError(corpusName string) *CorpusAlreadyExistsError {
	return &CorpusAlreadyExistsError{CorpusName: corpusName}
}

// DuplicateDocumentError reports a rejected insert of an already known source URL
type DuplicateDocumentError struct {
	SourceURL  string
	CorpusName string
}

func (e *DuplicateDocumentError) Error() string {
	if e.CorpusName != "" {
		return fmt.Sprintf("document '%s' already exists in corpus '%s'", e.SourceURL, e.CorpusName)
	}
	return fmt.Sprintf("document '%s' already exists", e.SourceURL)
}

func (e *DuplicateDocumentError) Is(target error) bool {
	return target == ErrDuplicateDocument
}

// NewDuplicateDocumentError creates a new DuplicateDocumentError
func NewDuplicateDocumentError(sourceURL string, corpusName ...string) *DuplicateDocumentError {
	err := &DuplicateDocumentError{SourceURL: sourceURL}
	if len(corpusName) > 0 {
		err.CorpusName = corpusName[0]
	}
	return err
}

// IndexNotBuiltError represents a search against a corpus that has no term index
type IndexNotBuiltError struct {
	CorpusName string
}

func (e *IndexNotBuiltError) Error() string {
	if e.CorpusName == "" {
		return "term index has not been built"
	}
	return fmt.Sprintf("term index for corpus '%s' has not been built", e.CorpusName)
}

func (e *IndexNotBuiltError) Is(target error) bool {
	return target == ErrIndexNotBuilt
}

// NewIndexNotBuiltError creates a new IndexNotBuiltError
func NewIndexNotBuiltError(corpusName string) *IndexNotBuiltError {
	return &IndexNotBuiltError{CorpusName: corpusName}
}

// ShapeMismatchError describes an index whose matrix width differs from its vocabulary
type ShapeMismatchError struct {
	Columns    int
	Vocabulary int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("tf-idf matrix has %d columns but vocabulary has %d terms", e.Columns, e.Vocabulary)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// NewShapeMismatchError creates a new ShapeMismatchError
func NewShapeMismatchError(columns, vocabulary int) *ShapeMismatchError {
	return &ShapeMismatchError{Columns: columns, Vocabulary: vocabulary}
}

// IncompleteSnapshotError lists the parts missing from a stored snapshot
type IncompleteSnapshotError struct {
	Name    string
	Missing []string
}

func (e *IncompleteSnapshotError) Error() string {
	return fmt.Sprintf("snapshot '%s' is missing %v", e.Name, e.Missing)
}

func (e *IncompleteSnapshotError) Is(target error) bool {
	return target == ErrIncompleteSnapshot
}

// NewIncompleteSnapshotError creates a new IncompleteSnapshotError
func NewIncompleteSnapshotError(name string, missing []string) *IncompleteSnapshotError {
	return &IncompleteSnapshotError{Name: name, Missing: missing}
}

// SnapshotNotFoundError represents a load of an unknown snapshot
type SnapshotNotFoundError struct {
	Name string
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("snapshot named '%s' not found", e.Name)
}

func (e *SnapshotNotFoundError) Is(target error) bool {
	return target == ErrSnapshotNotFound
}

// NewSnapshotNotFoundError creates a new SnapshotNotFoundError
func NewSnapshotNotFoundError(name string) *SnapshotNotFoundError {
	return &SnapshotNotFoundError{Name: name}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
