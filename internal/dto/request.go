package dto

import (
	"github.com/google/uuid"
)

// CreateRequest builds a new entity from a bound request body.
// actor is the authenticated user performing the call.
type CreateRequest[T any] interface {
	ToModel(actor uuid.UUID) *T
}

// UpdateRequest applies the fields present in a bound request body
type UpdateRequest[T any] interface {
	ApplyTo(item *T)
}

// Validator is implemented by requests with cross-field rules binding tags cannot express
type Validator interface {
	Validate() error
}
