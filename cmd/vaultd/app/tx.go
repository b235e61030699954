package vaultd

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/multisig"
	"github.com/iov-one/vault/x/sigs"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	RegisterCodec(cdc)
}

// RegisterCodec registers every message the application routes.
func RegisterCodec(c *amino.Codec) {
	c.RegisterInterface((*vault.Msg)(nil), nil)
	c.RegisterConcrete(&cash.SendMsg{}, "vault/cash/SendMsg", nil)
	multisig.RegisterCodec(c)
}

// Tx is the transaction processed by vaultd. It carries a single message
// and the signatures authorizing it.
type Tx struct {
	Msg        vault.Msg            `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

var _ vault.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (vault.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) GetMsg() (vault.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are not part of them.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}

func (tx *Tx) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(tx)
}

func (tx *Tx) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, tx); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// SignTx creates a transaction for msg signed by every signer. Sequences
// must be given in the signers order.
func SignTx(msg vault.Msg, chainID string, signers []crypto.Signer, seqs []int64) (*Tx, error) {
	if len(signers) != len(seqs) {
		return nil, errors.Wrap(errors.ErrHuman, "one sequence per signer required")
	}
	tx := &Tx{Msg: msg}
	for i, s := range signers {
		sig, err := sigs.SignTx(s, tx, chainID, seqs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "signer %d", i)
		}
		tx.Signatures = append(tx.Signatures, sig)
	}
	return tx, nil
}
