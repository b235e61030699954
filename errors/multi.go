package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If none or only one non nil error is provided, the result is that error
// itself. Otherwise a collection of errors is returned. The collection
// reports the ABCI code of its first element.
func Append(errs ...error) error {
	var flat multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		// Flatten nested collections so that Unpack never returns
		// another multi error.
		if m, ok := e.(multiErr); ok {
			flat = append(flat, m...)
		} else {
			flat = append(flat, e)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return flat
	}
}

// unpacker is implemented by error collections.
type unpacker interface {
	Unpack() []error
}

type multiErr []error

var _ unpacker = multiErr(nil)

// Unpack returns all the errors this collection holds.
func (e multiErr) Unpack() []error {
	return e
}

func (e multiErr) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = "* " + err.Error()
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(e), strings.Join(msgs, "\n\t"))
}

// ABCICode returns the code of the first error in the collection.
func (e multiErr) ABCICode() uint32 {
	if len(e) == 0 {
		return SuccessABCICode
	}
	return abciCode(e[0])
}
