package multisig

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

const optKey = "multisig"

// GenesisVault is the genesis representation of the vault configuration.
type GenesisVault struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []vault.Address `json:"members"`
	QuorumBps   uint32          `json:"quorum_bps"`
}

// Initializer configures the vault from the genesis file.
type Initializer struct {
	Keeper *Keeper
}

var _ vault.Initializer = (*Initializer)(nil)

// FromGenesis initializes the vault if the "multisig" key is present.
// Otherwise the vault is left for an InitializeMsg to configure.
func (i *Initializer) FromGenesis(ctx vault.Context, opts vault.Options, db vault.KVStore) error {
	var gen *GenesisVault
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	if gen == nil {
		return nil
	}
	err := i.Keeper.Initialize(ctx, db, gen.Name, gen.Description, gen.Members, gen.QuorumBps)
	return errors.Wrap(err, "genesis vault")
}
