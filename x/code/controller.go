package code

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

// BucketName is where the code history is stored.
const BucketName = "code"

// Controller installs new code and reports which code is in use.
type Controller interface {
	InstallCode(db vault.KVStore, codeID []byte) error
	Current(db vault.ReadOnlyKVStore) (*Installation, error)
	History(db vault.ReadOnlyKVStore) ([]*Installation, error)
}

// BaseController stores every installation under its revision number.
type BaseController struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

var _ Controller = (*BaseController)(nil)

// NewController returns a controller using the default bucket.
func NewController() *BaseController {
	return &BaseController{
		bucket: orm.NewModelBucket(BucketName, &Installation{}),
		seq:    orm.NewSequence(BucketName, "revision"),
	}
}

// InstallCode appends given code id to the history making it the current
// code.
func (c *BaseController) InstallCode(db vault.KVStore, codeID []byte) error {
	id := CodeID(codeID)
	if err := id.Validate(); err != nil {
		return err
	}
	rev, err := c.seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "revision sequence")
	}
	inst := &Installation{Revision: rev, CodeID: append(CodeID(nil), id...)}
	if err := c.bucket.Put(db, orm.EncodeSequence(rev), inst); err != nil {
		return errors.Wrap(err, "cannot store installation")
	}
	return nil
}

// Current returns the most recent installation. ErrNotFound is returned if
// no code was ever installed.
func (c *BaseController) Current(db vault.ReadOnlyKVStore) (*Installation, error) {
	rev, _, err := c.seq.Latest(db)
	if err != nil {
		return nil, errors.Wrap(err, "revision sequence")
	}
	if rev == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "no code installed")
	}
	return c.load(db, rev)
}

// History returns all installations, oldest first.
func (c *BaseController) History(db vault.ReadOnlyKVStore) ([]*Installation, error) {
	latest, _, err := c.seq.Latest(db)
	if err != nil {
		return nil, errors.Wrap(err, "revision sequence")
	}
	res := make([]*Installation, 0, latest)
	for rev := int64(1); rev <= latest; rev++ {
		inst, err := c.load(db, rev)
		if err != nil {
			return nil, err
		}
		res = append(res, inst)
	}
	return res, nil
}

func (c *BaseController) load(db vault.ReadOnlyKVStore, rev int64) (*Installation, error) {
	var inst Installation
	if err := c.bucket.One(db, orm.EncodeSequence(rev), &inst); err != nil {
		return nil, errors.Wrapf(err, "revision %d", rev)
	}
	return &inst, nil
}

// RegisterQuery registers "/code" returning the current installation and
// "/code/history" returning all of them.
func RegisterQuery(qr vault.QueryRouter, c Controller) {
	qr.Register("/code", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		inst, err := c.Current(db)
		if errors.ErrNotFound.Is(err) {
			return nil, nil
		}
		return inst, err
	}))
	qr.Register("/code/history", vault.QueryHandlerFunc(func(db vault.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return c.History(db)
	}))
}
