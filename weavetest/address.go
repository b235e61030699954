package weavetest

import (
	"testing"

	vault "github.com/iov-one/vault"
)

// ParseAddress takes an address in a human readable format and returns
// its binary representation. This function is a test helper that is using
// vault.ParseAddress.
func ParseAddress(t testing.TB, encodedAddress string) vault.Address {
	t.Helper()

	addr, err := vault.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
