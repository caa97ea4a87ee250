package document

import (
	"fmt"

	"github.com/kailas-cloud/vecluster/internal/domain"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// MaxIDLength is the maximum document identifier length.
const MaxIDLength = 256

// Document is an input text of a clustering request (immutable value object).
type Document struct {
	id      string
	content string
	name    string
	docType string
}

// New validates and creates a Document.
// ID: 1-256 chars. Content may be empty (it vectorizes to zeros), max 160KB.
func New(id, content, name, docType string) (Document, error) {
	if id == "" {
		return Document{}, domain.NewValidationError("id", "document ID is required")
	}
	if len(id) > MaxIDLength {
		return Document{}, domain.NewValidationError("id", fmt.Sprintf("document ID too long (max %d)", MaxIDLength))
	}
	if len(content) > MaxContentSize {
		return Document{}, domain.NewValidationError("content", fmt.Sprintf("content too large (max %d bytes)", MaxContentSize))
	}
	return Document{id: id, content: content, name: name, docType: docType}, nil
}

// FromText creates a Document for a bare string input at the given position.
func FromText(index int, content string) (Document, error) {
	return New(DefaultID(index), content, "", "")
}

// DefaultID is the identifier assigned to inputs that carry none.
func DefaultID(index int) string {
	return fmt.Sprintf("point_%d", index)
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Content returns the raw document text.
func (d Document) Content() string { return d.content }

// Name returns the optional display name.
func (d Document) Name() string { return d.name }

// Type returns the optional document type (e.g. "interview").
func (d Document) Type() string { return d.docType }
