package integration

import "fmt"

// FieldError is a contract error, returned by Parse when a required envelope
// field is missing or has an invalid value. The error names the exact field
// that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (err FieldError) Error() string {
	return fmt.Sprintf("integration.Parse: invalid field '%s', %s", err.Field, err.Reason)
}

// TenantMismatchError is returned when an externally supplied envelope
// carries a tenant id different from the one resolved from the caller's
// authenticated context.
type TenantMismatchError struct {
	Envelope      string
	Authenticated string
}

func (err TenantMismatchError) Error() string {
	return fmt.Sprintf(
		"integration: envelope tenant '%s' does not match authenticated tenant '%s'",
		err.Envelope,
		err.Authenticated,
	)
}
