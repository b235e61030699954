package weavetest

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/crypto"
)

// NewKey returns a new, random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns a condition of a random signature key.
func NewCondition() vault.Condition {
	return NewKey().PublicKey().Condition()
}
