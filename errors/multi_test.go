package errors

import (
	"testing"
)

func TestAppend(t *testing.T) {
	cases := map[string]struct {
		errs     []error
		wantNil  bool
		wantCode uint32
		wantLen  int
	}{
		"no errors": {
			errs:    nil,
			wantNil: true,
		},
		"only nils": {
			errs:    []error{nil, nil},
			wantNil: true,
		},
		"single error is returned as is": {
			errs:     []error{nil, ErrEmpty},
			wantCode: ErrEmpty.code,
			wantLen:  1,
		},
		"first error code is used": {
			errs:     []error{ErrInput, ErrEmpty},
			wantCode: ErrInput.code,
			wantLen:  2,
		},
		"nested collections are flattened": {
			errs:     []error{Append(ErrInput, ErrEmpty), ErrState},
			wantCode: ErrInput.code,
			wantLen:  3,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := Append(tc.errs...)
			if tc.wantNil {
				if err != nil {
					t.Fatalf("want nil, got %+v", err)
				}
				return
			}
			if code := abciCode(err); code != tc.wantCode {
				t.Fatalf("want %d code, got %d", tc.wantCode, code)
			}
			n := 1
			if u, ok := err.(unpacker); ok {
				n = len(u.Unpack())
			}
			if n != tc.wantLen {
				t.Fatalf("want %d errors, got %d", tc.wantLen, n)
			}
		})
	}
}
