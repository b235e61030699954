package cash

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Set is the balance of a single wallet.
type Set struct {
	Coins coin.Coins `json:"coins"`
}

func (s *Set) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *Set) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, s), "set")
}

// SendMsg moves coins from the source wallet to the destination wallet.
type SendMsg struct {
	Source      vault.Address `json:"source"`
	Destination vault.Address `json:"destination"`
	Amount      *coin.Coin    `json:"amount"`
	Memo        string        `json:"memo,omitempty"`
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return errors.Wrap(cdc.UnmarshalBinaryBare(raw, m), "send msg")
}
