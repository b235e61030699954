package code

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

const optKey = "code"

// GenesisCode is the genesis representation of the code installed when the
// chain starts.
type GenesisCode struct {
	CodeID CodeID `json:"code_id"`
}

// Initializer installs the initial code from the genesis file.
type Initializer struct {
	Control Controller
}

var _ vault.Initializer = (*Initializer)(nil)

// FromGenesis installs the genesis code. Missing "code" key is a no-op.
func (i *Initializer) FromGenesis(ctx vault.Context, opts vault.Options, db vault.KVStore) error {
	var gen *GenesisCode
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	if gen == nil {
		return nil
	}
	if err := i.Control.InstallCode(db, gen.CodeID); err != nil {
		return errors.Wrap(err, "genesis code")
	}
	return nil
}
