package sigs

import (
	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// UserData is the state kept for every public key that ever signed a
// transaction.
type UserData struct {
	// Pubkey is set on the first signature and never changes.
	Pubkey *crypto.PublicKey `json:"pubkey"`
	// Sequence is the value the next signature must carry.
	Sequence int64 `json:"sequence"`
}

func (u *UserData) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, u), "user data")
}

// StdSignature is a signature of a transaction together with the data
// required to verify it.
type StdSignature struct {
	Pubkey    *crypto.PublicKey `json:"pubkey"`
	Signature *crypto.Signature `json:"signature"`
	Sequence  int64             `json:"sequence"`
}

func (s *StdSignature) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, s), "signature")
}
