package model

import (
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateContractCall checks that a call names a contract, an ABI and a method.
// Args may be empty for methods without parameters.
func ValidateContractCall(c *ContractCall) error {
	var ve ValidationError

	if strings.TrimSpace(c.ContractAddress) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "contract_address", Message: "is required"})
	}
	if strings.TrimSpace(c.ABIHash) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "abi_hash", Message: "is required"})
	}
	if strings.TrimSpace(c.Method) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "method", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateTicket checks that a ticket is non-empty.
func ValidateTicket(t Ticket) error {
	if strings.TrimSpace(string(t)) == "" {
		return &ValidationError{Errors: []FieldError{{Field: "ticket", Message: "is required"}}}
	}
	return nil
}
