package mutate

import "fmt"

// EmptyFieldError is the only client-side validation failure: a required
// field was blank. Everything beyond presence is the server's call.
type EmptyFieldError struct {
	Field string
}

func (e EmptyFieldError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

type InvalidStatusError struct {
	Status string
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid task status: %q", e.Status)
}

type BadDateError struct {
	Value string
}

func (e BadDateError) Error() string {
	return fmt.Sprintf("unrecognized date: %q (use YYYY-MM-DD or RFC 3339)", e.Value)
}
