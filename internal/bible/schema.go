package bible

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tags on the element
// types are the schema contracts: required fields, positive IDs, and
// closed enum sets via oneof.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateElement checks an element (or the aggregate story bible)
// against its schema contract. Validation happens at construction time
// and fails closed — callers must not persist a value that fails here.
func ValidateElement(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
