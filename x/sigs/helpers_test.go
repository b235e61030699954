package sigs

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/weavetest"
)

type testTx struct {
	weavetest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*testTx)(nil)
var _ vault.Tx = (*testTx)(nil)

func newTestTx(payload []byte) *testTx {
	return &testTx{
		Tx: weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/payload", Serialized: payload}},
	}
}

func (tx *testTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *testTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// sigCheckHandler stores the seen signers on each call
type sigCheckHandler struct {
	Signers []vault.Condition
}

var _ vault.Handler = (*sigCheckHandler)(nil)

func (s *sigCheckHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &vault.CheckResult{}, nil
}

func (s *sigCheckHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &vault.DeliverResult{}, nil
}
