package user

import (
	"errors"

	"github.com/google/uuid"
)

// Record is one user as the remote collection stores it.
type Record struct {
	ID         ID     `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// FullName is what the table shows in its first column.
func (r Record) FullName() string {
	return r.FirstName + " " + r.LastName
}

// the editable part of a record
func (r Record) Fields() Fields {
	return Fields{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Department: r.Department,
	}
}

var ErrNotFound = errors.New("user not found")

// Fields are the four user-editable values shared by the form and the wire body.
type Fields struct {
	FirstName  string `json:"firstName" validate:"required" binding:"required,max=120"`
	LastName   string `json:"lastName" validate:"required" binding:"required,max=120"`
	Email      string `json:"email" validate:"required" binding:"required,max=254"`
	Department string `json:"department" validate:"required" binding:"required,max=120"`
}

// WithID builds the full-replacement body sent for an update.
func (f Fields) WithID(id ID) Record {
	return Record{
		ID:         id,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Department: f.Department,
	}
}

// PendingRecord is a create that has not been confirmed by the store yet.
// TempID is generated on the client and only survives if the store answers without an id.
type PendingRecord struct {
	TempID ID
	Fields Fields
}

func NewPending(f Fields) PendingRecord {
	return PendingRecord{TempID: NewTempID(), Fields: f}
}

func NewTempID() ID {
	return ID(uuid.NewString())
}

// Body is the POST payload, temp id included.
func (p PendingRecord) Body() Record {
	return p.Fields.WithID(p.TempID)
}

// Confirm swaps the pending record for the store's answer.
func (p PendingRecord) Confirm(resp Record) Record {
	if resp.ID.IsZero() {
		resp.ID = p.TempID
	}

	return resp
}
