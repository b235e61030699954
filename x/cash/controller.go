package cash

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
)

// Controller is the functionality needed by cash.Handler and
// any other extension that moves funds.
type Controller interface {
	MoveCoins(db vault.KVStore, src, dest vault.Address, amount coin.Coin) error
	IssueCoins(db vault.KVStore, dest vault.Address, amount coin.Coin) error
	Balance(db vault.ReadOnlyKVStore, addr vault.Address) (coin.Coins, error)
}

// BaseController is a simple implementation of Controller
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db vault.KVStore, src, dest vault.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount: %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return err
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	if !sender.Contains(amount) {
		return errors.Wrap(errors.ErrInsufficientAmount, "funds")
	}
	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := c.bucket.Save(db, src, sender); err != nil {
		return err
	}

	// Loaded after the sender was saved so that moving to self is a
	// no-op.
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, recipient)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db vault.KVStore, dest vault.Address, amount coin.Coin) error {
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, recipient)
}

// Balance returns all coins held by the given address.
func (c BaseController) Balance(db vault.ReadOnlyKVStore, addr vault.Address) (coin.Coins, error) {
	s, err := c.bucket.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "wallet %s", addr)
	}
	return s.Coins, nil
}
