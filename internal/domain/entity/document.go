package entity

import (
	"strings"
	"time"

	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

// DocumentStatus represents the lifecycle status of a document
type DocumentStatus string

const (
	DocumentStatusDraft DocumentStatus = "draft"
	DocumentStatusFinal DocumentStatus = "final"
)

// IsValid reports whether s is a known status
func (s DocumentStatus) IsValid() bool {
	return s == DocumentStatusDraft || s == DocumentStatusFinal
}

// ParseDocumentStatus converts a raw value to a DocumentStatus
func ParseDocumentStatus(raw string) (DocumentStatus, error) {
	status := DocumentStatus(raw)
	if !status.IsValid() {
		return "", apperrors.InvalidDocumentState("Invalid document status: " + raw)
	}
	return status, nil
}

// Document is the aggregate root of the service.
//
// Fields are exported for the persistence mappers; code outside the
// persistence layer goes through NewDocument, Finalize and AssignAccessCode
// so that Validate runs on every transition.
type Document struct {
	ID         string         `gorm:"primaryKey;size:64;index:idx_documents_created_at_id,priority:2" json:"id"`
	Title      string         `gorm:"type:text;not null" json:"title"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Status     DocumentStatus `gorm:"size:16;not null;default:draft" json:"status"`
	AccessCode *string        `gorm:"column:access_code;size:255" json:"access_code"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;autoCreateTime:false;index:idx_documents_created_at_id,priority:1" json:"created_at"`
}

// TableName specifies the table name for Document
func (Document) TableName() string {
	return "documents"
}

// NewDocument builds a validated document. An empty status means draft.
func NewDocument(id, title, content string, createdAt time.Time, status DocumentStatus, accessCode *string) (*Document, error) {
	if status == "" {
		status = DocumentStatusDraft
	}
	d := &Document{
		ID:         id,
		Title:      title,
		Content:    content,
		Status:     status,
		AccessCode: accessCode,
		CreatedAt:  createdAt,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDraft builds a draft document without an access code
func NewDraft(id, title, content string, createdAt time.Time) (*Document, error) {
	return NewDocument(id, title, content, createdAt, DocumentStatusDraft, nil)
}

// Validate checks every document invariant
func (d *Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return apperrors.InvalidDocumentState("Document id cannot be empty")
	}
	if strings.TrimSpace(d.Title) == "" {
		return apperrors.InvalidDocumentState("Document title cannot be empty")
	}
	if strings.TrimSpace(d.Content) == "" {
		return apperrors.InvalidDocumentState("Document content cannot be empty")
	}
	if d.CreatedAt.IsZero() {
		return apperrors.InvalidDocumentState("Document createdAt must be a valid date")
	}
	if !cursor.Representable(d.CreatedAt) {
		return apperrors.InvalidDocumentState("Document createdAt must be between years 0001 and 9999")
	}
	if !d.Status.IsValid() {
		return apperrors.InvalidDocumentState("Invalid document status: " + string(d.Status))
	}
	if d.AccessCode != nil {
		if d.Status != DocumentStatusFinal {
			return apperrors.InvalidDocumentState("Access code can only be assigned to finalized documents")
		}
		if strings.TrimSpace(*d.AccessCode) == "" {
			return apperrors.InvalidDocumentState("Access code cannot be empty")
		}
	}
	return nil
}

// IsFinal reports whether the document is finalized
func (d *Document) IsFinal() bool {
	return d.Status == DocumentStatusFinal
}

// HasAccessCode reports whether an access code has been issued
func (d *Document) HasAccessCode() bool {
	return d.AccessCode != nil
}

// Finalize moves a draft to final. The access code is left untouched.
func (d *Document) Finalize() error {
	if d.Status == DocumentStatusFinal {
		return apperrors.InvalidDocumentState("Document is already finalized")
	}
	if strings.TrimSpace(d.Content) == "" {
		return apperrors.InvalidDocumentState("Cannot finalize a document with empty content")
	}
	prev := d.Status
	d.Status = DocumentStatusFinal
	if err := d.Validate(); err != nil {
		d.Status = prev
		return err
	}
	return nil
}

// AssignAccessCode stores the trimmed code on a finalized document
func (d *Document) AssignAccessCode(code string) error {
	if d.Status != DocumentStatusFinal {
		return apperrors.InvalidDocumentState("Access code can only be assigned to finalized documents")
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return apperrors.InvalidDocumentState("Access code cannot be empty")
	}
	prev := d.AccessCode
	d.AccessCode = &trimmed
	if err := d.Validate(); err != nil {
		d.AccessCode = prev
		return err
	}
	return nil
}

// Clone returns a deep copy detached from d
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.AccessCode != nil {
		code := *d.AccessCode
		c.AccessCode = &code
	}
	return &c
}
