package app

import (
	"context"
	"testing"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/weavetest"
	"github.com/iov-one/vault/weavetest/assert"
)

func TestChain(t *testing.T) {
	var (
		d1 weavetest.Decorator
		d2 weavetest.Decorator
		d3 weavetest.Decorator
		h  weavetest.Handler
	)

	stack := ChainDecorators(
		&d1,
		NewLogging(),
		NewRecovery(),
		&d2,
		nil,
		&d3,
	).WithHandler(&h)

	ctx := context.Background()

	_, err := stack.Check(ctx, nil, nil)
	assert.Nil(t, err)
	_, err = stack.Deliver(ctx, nil, nil)
	assert.Nil(t, err)

	assert.Equal(t, 2, d1.CallCount())
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 2, d3.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// an error stops the execution of the following decorators
	d2.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, nil, nil)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 3, d1.CallCount())
	assert.Equal(t, 3, d2.CallCount())
	assert.Equal(t, 2, d3.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainDoesNotShareDecorators(t *testing.T) {
	var a, b, c weavetest.Decorator
	base := ChainDecorators(&a)
	one := base.Chain(&b)
	two := base.Chain(&c)

	var h weavetest.Handler
	_, err := one.WithHandler(&h).Deliver(context.Background(), nil, nil)
	assert.Nil(t, err)
	_, err = two.WithHandler(&h).Deliver(context.Background(), nil, nil)
	assert.Nil(t, err)

	assert.Equal(t, 2, a.CallCount())
	assert.Equal(t, 1, b.CallCount())
	assert.Equal(t, 1, c.CallCount())
}

type panicHandler struct{}

func (panicHandler) Check(vault.Context, vault.KVStore, vault.Tx) (*vault.CheckResult, error) {
	panic("check")
}

func (panicHandler) Deliver(vault.Context, vault.KVStore, vault.Tx) (*vault.DeliverResult, error) {
	panic("deliver")
}

func TestRecovery(t *testing.T) {
	stack := ChainDecorators(NewRecovery()).WithHandler(panicHandler{})

	_, err := stack.Check(context.Background(), nil, nil)
	assert.IsErr(t, errors.ErrPanic, err)
	_, err = stack.Deliver(context.Background(), nil, nil)
	assert.IsErr(t, errors.ErrPanic, err)
}
