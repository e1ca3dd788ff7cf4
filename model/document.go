package model

import (
	"strings"
	"time"
)

// OriginKind identifies where a document was ingested from.
type OriginKind string

const (
	OriginGeneric OriginKind = "generic"
	OriginReddit  OriginKind = "reddit"
	OriginArxiv   OriginKind = "arxiv"
	OriginCSV     OriginKind = "csv"
)

// Valid reports whether k is one of the known origin kinds.
func (k OriginKind) Valid() bool {
	switch k {
	case OriginGeneric, OriginReddit, OriginArxiv, OriginCSV:
		return true
	}
	return false
}

// OriginExtra carries the source-specific fields of a document.
// Only the field matching the document's origin is meaningful.
type OriginExtra struct {
	CommentCount int      `json:"comment_count,omitempty"` // reddit
	CoAuthors    []string `json:"co_authors,omitempty"`    // arxiv
}

// Document is a single unit of text in a corpus.
// SourceURL is the document's identity and must be unique within a corpus.
type Document struct {
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	PublishedAt time.Time   `json:"published_at"`
	SourceURL   string      `json:"source_url"`
	Body        string      `json:"body"`
	Origin      OriginKind  `json:"origin,omitempty"`
	Extra       OriginExtra `json:"extra,omitempty"`
}

// ID returns the identity of the document inside a corpus.
func (d Document) ID() string {
	return d.SourceURL
}

// Validate returns the name of the first invalid field and a message,
// or two empty strings when the document is acceptable.
func (d Document) Validate() (field, message string) {
	if strings.TrimSpace(d.SourceURL) == "" {
		return "source_url", "source_url cannot be empty"
	}
	if strings.TrimSpace(d.Body) == "" {
		return "body", "body cannot be empty"
	}
	if d.Origin != "" && !d.Origin.Valid() {
		return "origin", "unknown origin '" + string(d.Origin) + "'"
	}
	return "", ""
}

// Clone returns a copy of d that shares no slices with it.
func (d Document) Clone() Document {
	if d.Extra.CoAuthors != nil {
		d.Extra.CoAuthors = append([]string(nil), d.Extra.CoAuthors...)
	}
	return d
}
