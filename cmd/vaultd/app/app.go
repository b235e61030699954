/*
Package vaultd links together the extensions that make up the vault
application: signature verification, token wallets, code installation and
the multisig vault itself.
*/
package vaultd

import (
	"fmt"
	"path/filepath"
	"strings"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/app"
	"github.com/iov-one/vault/store/iavl"
	"github.com/iov-one/vault/x"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/code"
	"github.com/iov-one/vault/x/multisig"
	"github.com/iov-one/vault/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle logging, recovery and
// signature verification.
func Chain() app.Decorators {
	return app.ChainDecorators(
		app.NewLogging(),
		app.NewRecovery(),
		sigs.NewDecorator(),
	)
}

// Extensions holds the controllers shared by the handlers, queries and
// genesis initializers.
type Extensions struct {
	Auth   x.Authenticator
	Cash   cash.Controller
	Code   code.Controller
	Keeper *multisig.Keeper
}

// NewExtensions builds the default set of controllers.
func NewExtensions() Extensions {
	auth := Authenticator()
	wallets := cash.NewController(cash.NewBucket())
	installer := code.NewController()
	return Extensions{
		Auth:   auth,
		Cash:   wallets,
		Code:   installer,
		Keeper: multisig.NewKeeper(auth, wallets, installer),
	}
}

// Router returns a router dispatching all application messages.
func (e Extensions) Router() *app.Router {
	r := app.NewRouter()
	cash.RegisterRoutes(r, e.Auth, e.Cash)
	multisig.RegisterRoutes(r, e.Keeper)
	return r
}

// QueryRouter returns a query router exposing "/auth", "/wallets", "/code",
// "/code/history" and the "/multisig/..." paths.
func (e Extensions) QueryRouter() vault.QueryRouter {
	qr := vault.NewQueryRouter()
	qr.RegisterAll(
		sigs.RegisterQuery,
		cash.RegisterQuery,
	)
	code.RegisterQuery(qr, e.Code)
	multisig.RegisterQuery(qr, e.Keeper)
	return qr
}

// Initializer loads the genesis state of every extension.
func (e Extensions) Initializer() vault.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		&code.Initializer{Control: e.Code},
		&multisig.Initializer{Keeper: e.Keeper},
	)
}

// Stack wires up the router with the decorator chain.
func (e Extensions) Stack() vault.Handler {
	return Chain().WithHandler(e.Router())
}

// Application returns a runner processing vaultd transactions against the
// given store.
func Application(kv vault.CommitKVStore, logger log.Logger) (*app.Runner, error) {
	ext := NewExtensions()
	r, err := app.NewRunner(kv, TxDecoder, ext.Stack(), ext.QueryRouter())
	if err != nil {
		return nil, err
	}
	return r.WithInit(ext.Initializer()).WithLogger(logger), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string, cacheSize int) (vault.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if cacheSize <= 0 {
		cacheSize = iavl.DefaultCacheSize
	}
	return iavl.NewCommitStoreWithCache(dir, name, cacheSize), nil
}
