package checkout

import "fmt"

// PersistenceError is the dangerous failure class: the gateway already
// accepted the charge, but the local record is incomplete. It is kept
// distinct from gateway failures so operators can reconcile manually.
type PersistenceError struct {
	Step      string
	Reference string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed at %s step for reference %s: %v", e.Step, e.Reference, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
