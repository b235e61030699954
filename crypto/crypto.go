package crypto

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	amino "github.com/tendermint/go-amino"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() vault.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

var cdc = amino.NewCodec()

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte `json:"ed25519"`
}

// PrivateKey is an ed25519 private key. It must never leave the client.
type PrivateKey struct {
	Ed25519 []byte `json:"ed25519"`
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte `json:"ed25519"`
}

// Address is a shortcut for the address of the condition this public key
// represents.
func (p *PublicKey) Address() vault.Address {
	c := p.Condition()
	if c == nil {
		return nil
	}
	return c.Address()
}

func (p *PublicKey) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

func (p *PublicKey) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, p), "public key")
}

func (p *PrivateKey) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

func (p *PrivateKey) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, p), "private key")
}

func (s *Signature) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *Signature) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, s), "signature")
}
