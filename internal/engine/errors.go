package engine

import "fmt"

// ValidationError rejects malformed task data before any store write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError covers operations on tasks or confirmations that do not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InvalidStateError marks an operation that the target's current state does
// not allow, like reviewing a confirmation that is no longer pending.
type InvalidStateError struct {
	Kind   string
	ID     string
	State  string
	Reason string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s: %s", e.Kind, e.ID, e.State, e.Reason)
}
