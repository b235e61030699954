package sigs

import (
	"context"
	"testing"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	checkKv := kv.CacheWrap()
	signers := new(sigCheckHandler)
	d := NewDecorator()
	chainID := "deco-rate"
	ctx := vault.WithChainID(context.Background(), chainID)

	priv := crypto.GenPrivKeyEd25519()
	perms := []vault.Condition{priv.PublicKey().Condition()}

	tx := newTestTx([]byte("art"))
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)

	deliver := func(dec vault.Decorator, my vault.Tx) error {
		_, err := dec.Deliver(ctx, kv, my, signers)
		return err
	}
	check := func(dec vault.Decorator, my vault.Tx) error {
		_, err := dec.Check(ctx, checkKv, my, signers)
		return err
	}

	for i, fn := range []func(vault.Decorator, vault.Tx) error{check, deliver} {
		// test with no sigs
		tx.Signatures = nil
		err := fn(d, tx)
		assert.Error(t, err, "%d", i)

		// test with one
		tx.Signatures = []*StdSignature{sig}
		err = fn(d, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.Signers)

		// test with replay
		err = fn(d, tx)
		assert.Error(t, err, "%d", i)

		// test allowing none
		ad := d.AllowMissingSigs()
		tx.Signatures = nil
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, []vault.Condition{}, signers.Signers)

		// test allowing, with next sequence
		tx.Signatures = []*StdSignature{sig1}
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.Signers)
	}
}

func TestAuthenticate(t *testing.T) {
	a := Authenticate{}
	ctx := context.Background()
	assert.Empty(t, a.GetConditions(ctx))

	c1 := crypto.GenPrivKeyEd25519().PublicKey().Condition()
	c2 := crypto.GenPrivKeyEd25519().PublicKey().Condition()
	ctx = withSigners(ctx, []vault.Condition{c1})

	assert.Equal(t, []vault.Condition{c1}, a.GetConditions(ctx))
	assert.True(t, a.HasAddress(ctx, c1.Address()))
	assert.False(t, a.HasAddress(ctx, c2.Address()))
}
