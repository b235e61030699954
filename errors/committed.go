package errors

// Committed marks given error so that the state changes made by the failing
// operation are written anyway. A committed error is still returned to the
// client as a failure. Use it when a failed operation must leave a trace in
// the state, for example to close an entity that can no longer succeed.
//
// Committed returns nil if err is nil.
func Committed(err error) error {
	if isNilErr(err) {
		return nil
	}
	return &committedError{parent: err}
}

// IsCommitted returns true if given error, or any error it wraps, was marked
// with Committed.
func IsCommitted(err error) bool {
	for {
		if isNilErr(err) {
			return false
		}
		if _, ok := err.(*committedError); ok {
			return true
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

type committedError struct {
	parent error
}

func (e *committedError) Error() string {
	return e.parent.Error()
}

func (e *committedError) Cause() error {
	return e.parent
}
