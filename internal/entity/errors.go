package entity

import (
	"errors"
	"fmt"

	"github.com/roach88/storesim/internal/ir"
)

// ErrInvalidAmount is returned for negative budgets, non-positive prices
// and non-positive restock amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// DuplicateIDError is returned when an entity id is already taken within
// its kind. It is a setup fault and is never recovered internally.
type DuplicateIDError struct {
	Kind ir.EntityKind
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id %q", e.Kind, e.ID)
}

// NotFoundError is returned when an operation references an unknown entity.
type NotFoundError struct {
	Kind ir.EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsDuplicateID reports whether err is a DuplicateIDError.
func IsDuplicateID(err error) bool {
	var de *DuplicateIDError
	return errors.As(err, &de)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
