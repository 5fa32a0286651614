package cashregister

import (
	"strings"

	"github.com/google/uuid"
)

// ReferenceKind names the entity a ledger row originates from
type ReferenceKind string

const (
	ReferenceNone    ReferenceKind = ""
	ReferenceShift   ReferenceKind = "SHIFT"
	ReferenceOrder   ReferenceKind = "ORDER"
	ReferencePayment ReferenceKind = "PAYMENT"
	ReferenceManual  ReferenceKind = "MANUAL"
)

// IsValid returns true if the kind is known
func (k ReferenceKind) IsValid() bool {
	switch k {
	case ReferenceNone, ReferenceShift, ReferenceOrder, ReferencePayment, ReferenceManual:
		return true
	}
	return false
}

// Reference is a tagged pointer to the originating entity. Consumers switch
// on Kind; ID is meaningful for every kind except ReferenceNone.
type Reference struct {
	Kind ReferenceKind
	ID   uuid.UUID
}

// NoReference is the empty reference
var NoReference = Reference{}

// ShiftRef references a shift
func ShiftRef(id uuid.UUID) Reference {
	return Reference{Kind: ReferenceShift, ID: id}
}

// IsZero reports whether the reference points nowhere
func (r Reference) IsZero() bool {
	return r.Kind == ReferenceNone
}

// Validate checks the kind/id pairing
func (r Reference) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidReference
	}
	if r.Kind == ReferenceNone {
		if r.ID != uuid.Nil {
			return ErrInvalidReference
		}
		return nil
	}
	if r.Kind != ReferenceManual && r.ID == uuid.Nil {
		return ErrInvalidReference
	}
	return nil
}

// ParseReference rebuilds a reference from its stored columns
func ParseReference(kind string, id *uuid.UUID) Reference {
	ref := Reference{Kind: ReferenceKind(strings.ToUpper(strings.TrimSpace(kind)))}
	if id != nil {
		ref.ID = *id
	}
	return ref
}

// IDPtr returns the id for storage, nil when the reference is empty
func (r Reference) IDPtr() *uuid.UUID {
	if r.ID == uuid.Nil {
		return nil
	}
	id := r.ID
	return &id
}
