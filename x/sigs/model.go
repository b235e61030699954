package sigs

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	var errs error
	if seq := u.Sequence; seq < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	} else if seq > 0 && u.Pubkey == nil {
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey"))
	}
	return errs
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}

	next := u.Sequence + 1

	// The greatest nonce a javascript client can represent is
	//   Number.MAX_SAFE_INTEGER = 2^53 - 1
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// SetPubkey sets the public key of a new user. It is illegal to reset an
// already set key.
func (u *UserData) SetPubkey(pubkey *crypto.PublicKey) error {
	if u.Pubkey != nil {
		return errors.Wrap(errors.ErrImmutable, "pubkey")
	}
	u.Pubkey = pubkey
	return nil
}

// Bucket extends orm.ModelBucket with GetOrCreate
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &UserData{}),
	}
}

// Get returns the user stored under given address or nil.
func (b Bucket) Get(db vault.ReadOnlyKVStore, addr vault.Address) (*UserData, error) {
	var u UserData
	switch err := b.One(db, addr, &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// GetOrCreate initializes a UserData if none exist for that key
func (b Bucket) GetOrCreate(db vault.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	u, err := b.Get(db, pubkey.Address())
	if err != nil {
		return nil, err
	}
	if u == nil {
		u = &UserData{Pubkey: pubkey}
	}
	return u, nil
}

// Save stores the user under its public key address.
func (b Bucket) Save(db vault.KVStore, u *UserData) error {
	if u.Pubkey == nil {
		return errors.Wrap(errors.ErrEmpty, "pubkey")
	}
	return b.Put(db, u.Pubkey.Address(), u)
}

// NextNonce returns the next numeric nonce value that should be used during a
// transaction signing. If the signer is not yet known, counting starts at
// zero.
func NextNonce(db vault.ReadOnlyKVStore, signer vault.Address) (int64, error) {
	u, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, errors.Wrap(err, "bucket get")
	}
	if u == nil {
		return 0, nil
	}
	return u.Sequence, nil
}

// RegisterQuery will register the user data under "/auth". The query data
// is the signer address.
func RegisterQuery(qr vault.QueryRouter) {
	qr.Register("/auth", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, data []byte) (interface{}, error) {
		return NewBucket().Get(db, data)
	}))
}
