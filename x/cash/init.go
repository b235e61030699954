package cash

import (
	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use vault.Address, so address in hex, not base64
type GenesisAccount struct {
	Address vault.Address `json:"address"`
	Coins   []coin.Coin   `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ vault.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(ctx vault.Context, opts vault.Options, db vault.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		set, err := bucket.GetOrCreate(db, acct.Address)
		if err != nil {
			return err
		}
		for _, c := range acct.Coins {
			if err := set.Add(c); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
		if err := bucket.Save(db, acct.Address, set); err != nil {
			return err
		}
	}
	return nil
}
