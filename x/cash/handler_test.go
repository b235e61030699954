package cash

import (
	"context"
	"testing"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/weavetest"
	"github.com/iov-one/vault/weavetest/assert"
)

func TestSendHandler(t *testing.T) {
	foo := coin.NewCoin(100, "FOO")
	some := coin.NewCoin(300, "SOME")

	perm := weavetest.NewCondition()
	perm2 := weavetest.NewCondition()

	cases := map[string]struct {
		signers        []vault.Condition
		initState      map[string]coin.Coin
		msg            vault.Msg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		wantBalance    coin.Coins
	}{
		"wrong message type": {
			msg:            &weavetest.Msg{RoutePath: "cash/send"},
			wantCheckErr:   errors.ErrType,
			wantDeliverErr: errors.ErrType,
		},
		"invalid message": {
			msg:            new(SendMsg),
			wantCheckErr:   errors.ErrAmount,
			wantDeliverErr: errors.ErrAmount,
		},
		"not signed by the source": {
			msg:            &SendMsg{Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"sender has no account": {
			signers:        []vault.Condition{perm},
			msg:            &SendMsg{Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
			wantDeliverErr: errors.ErrEmpty,
		},
		"sender too poor": {
			signers:        []vault.Condition{perm},
			initState:      map[string]coin.Coin{string(perm.Address()): some},
			msg:            &SendMsg{Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
			wantDeliverErr: errors.ErrInsufficientAmount,
		},
		"successful send": {
			signers:     []vault.Condition{perm},
			initState:   map[string]coin.Coin{string(perm.Address()): coin.NewCoin(150, "FOO")},
			msg:         &SendMsg{Amount: &foo, Source: perm.Address(), Destination: perm2.Address()},
			wantBalance: coin.Coins{&foo},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			auth := &weavetest.Auth{Signers: tc.signers}
			ctrl := NewController(NewBucket())
			h := NewSendHandler(auth, ctrl)

			kv := store.MemStore()
			for addr, c := range tc.initState {
				assert.Nil(t, ctrl.IssueCoins(kv, vault.Address(addr), c))
			}

			tx := &weavetest.Tx{Msg: tc.msg}
			ctx := context.Background()

			_, err := h.Check(ctx, kv.CacheWrap(), tx)
			assert.IsErr(t, tc.wantCheckErr, err)

			_, err = h.Deliver(ctx, kv, tx)
			assert.IsErr(t, tc.wantDeliverErr, err)

			if tc.wantBalance != nil {
				got, err := ctrl.Balance(kv, perm2.Address())
				assert.Nil(t, err)
				assert.Equal(t, tc.wantBalance, got)
			}
		})
	}
}

func TestWalletQuery(t *testing.T) {
	kv := store.MemStore()
	addr := weavetest.RandomAddr(t)
	assert.Nil(t, NewController(NewBucket()).IssueCoins(kv, addr, coin.NewCoin(3, "ABC")))

	qr := vault.NewQueryRouter()
	RegisterQuery(qr)
	h := qr.Handler("/wallets")
	if h == nil {
		t.Fatal("wallets query not registered")
	}

	res, err := h.Query(kv, addr)
	assert.Nil(t, err)
	set, ok := res.(*Set)
	if !ok || set == nil {
		t.Fatalf("unexpected result: %#v", res)
	}
	assert.Equal(t, coin.Coins{coin.NewCoinp(3, "ABC")}, set.Coins)
}
