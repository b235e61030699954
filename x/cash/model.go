package cash

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

var _ orm.Model = (*Set)(nil)

// Validate requires that all coins are in alphabetical order and non zero.
func (s *Set) Validate() error {
	return s.Coins.Validate()
}

// Copy makes a new set with the same coins
func (s *Set) Copy() *Set {
	return &Set{Coins: s.Coins.Clone()}
}

// Add modifies the set to add coin c.
func (s *Set) Add(c coin.Coin) error {
	cs, err := s.Coins.Add(c)
	if err != nil {
		return err
	}
	s.Coins = cs
	return nil
}

// Subtract modifies the set to remove coin c. It fails if the set does not
// hold enough of the currency.
func (s *Set) Subtract(c coin.Coin) error {
	cs, err := s.Coins.Subtract(c)
	if err != nil {
		return err
	}
	s.Coins = cs
	return nil
}

// Contains returns true if the set holds at least the given amount.
func (s *Set) Contains(c coin.Coin) bool {
	return s.Coins.Balance(c.Ticker).IsGTE(c)
}

// IsEmpty returns true if the set holds no value.
func (s *Set) IsEmpty() bool {
	return s.Coins.IsEmpty()
}

// Bucket is a type-safe wrapper around orm.ModelBucket. Wallets are stored
// under their owner address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &Set{}),
	}
}

// Get returns the wallet of the given address or nil if it does not exist.
func (b Bucket) Get(db vault.ReadOnlyKVStore, addr vault.Address) (*Set, error) {
	var s Set
	switch err := b.One(db, addr, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// GetOrCreate returns the wallet of the given address or an empty one.
func (b Bucket) GetOrCreate(db vault.ReadOnlyKVStore, addr vault.Address) (*Set, error) {
	s, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &Set{}
	}
	return s, nil
}

// Save stores the wallet. An empty wallet is removed from the store.
func (b Bucket) Save(db vault.KVStore, addr vault.Address, s *Set) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "wallet address")
	}
	if s.IsEmpty() {
		if err := b.Delete(db, addr); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	return b.Put(db, addr, s)
}
