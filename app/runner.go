package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Runner processes transactions one at a time against a committed store.
//
// Each transaction is executed in its own cache wrap. Changes are written
// when the handler succeeds and dropped when it fails, unless the returned
// error was marked with errors.Committed.
type Runner struct {
	logger log.Logger

	store       *CommitStore
	decoder     vault.TxDecoder
	handler     vault.Handler
	queryRouter vault.QueryRouter
	initializer vault.Initializer

	chainID string

	// baseContext contains context info that is valid for
	// lifetime of this runner (eg. chainID)
	baseContext vault.Context

	// blockContext contains context info that is valid for the
	// current block (eg. time), reset on BeginBlock
	blockContext vault.Context
}

// NewRunner loads the latest state from given store. If the chain was
// already initialized, its chain id is restored.
func NewRunner(store vault.CommitKVStore, decoder vault.TxDecoder, handler vault.Handler, qr vault.QueryRouter) (*Runner, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		store:       cs,
		decoder:     decoder,
		handler:     handler,
		queryRouter: qr,
		baseContext: context.Background(),
	}
	r = r.WithLogger(log.NewNopLogger())

	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	if chainID != "" {
		r.chainID = chainID
		r.baseContext = vault.WithChainID(r.baseContext, chainID)
	}
	r.blockContext = r.baseContext
	return r, nil
}

// WithInit is used to set the init function we call
func (r *Runner) WithInit(init vault.Initializer) *Runner {
	r.initializer = init
	return r
}

// WithLogger sets the logger on the Runner and returns it,
// to make it easy to chain in initialization
func (r *Runner) WithLogger(logger log.Logger) *Runner {
	r.baseContext = vault.WithLogger(r.baseContext, logger)
	r.blockContext = vault.WithLogger(r.blockContext, logger)
	r.logger = logger
	return r
}

// ChainID returns the chain id or an empty string if the chain was not
// initialized yet.
func (r *Runner) ChainID() string {
	return r.chainID
}

// InitChain stores the chain id and passes the genesis app state to the
// initializer. It can be called only once per store.
func (r *Runner) InitChain(gen Genesis, now time.Time) error {
	if r.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %s", r.chainID)
	}
	if r.initializer == nil {
		return errors.Wrap(errors.ErrHuman, "no initializer")
	}

	cache := r.store.DeliverStore().CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	ctx := vault.WithChainID(r.baseContext, gen.ChainID)
	ctx = vault.WithBlockTime(ctx, now)
	if err := r.initializer.FromGenesis(ctx, gen.AppState, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return err
	}

	r.chainID = gen.ChainID
	r.baseContext = vault.WithChainID(r.baseContext, gen.ChainID)
	r.blockContext = r.baseContext
	r.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return nil
}

// BeginBlock sets up the block context. All transactions that follow are
// executed with the given block time.
func (r *Runner) BeginBlock(now time.Time) {
	r.blockContext = vault.WithBlockTime(r.baseContext, now)
}

// DeliverTx decodes and executes the transaction against the deliver store.
func (r *Runner) DeliverTx(txBytes []byte) (*vault.DeliverResult, error) {
	tx, err := r.loadTx(txBytes)
	if err != nil {
		return nil, err
	}
	ctx := vault.WithLogInfo(r.blockContext, "call", "deliver_tx", "path", vault.GetPath(tx))

	cache := r.store.DeliverStore().CacheWrap()
	res, err := r.handler.Deliver(ctx, cache, tx)
	if err != nil && !errors.IsCommitted(err) {
		cache.Discard()
		return nil, err
	}
	if werr := cache.Write(); werr != nil {
		return nil, errors.Wrap(errors.ErrDatabase, werr.Error())
	}
	return res, err
}

// CheckTx decodes and validates the transaction against the check store.
func (r *Runner) CheckTx(txBytes []byte) (*vault.CheckResult, error) {
	tx, err := r.loadTx(txBytes)
	if err != nil {
		return nil, err
	}
	ctx := vault.WithLogInfo(r.blockContext, "call", "check_tx", "path", vault.GetPath(tx))

	cache := r.store.CheckStore().CacheWrap()
	res, err := r.handler.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}

// Commit writes all delivered transactions to the committed store.
func (r *Runner) Commit() (vault.CommitID, error) {
	id, err := r.store.Commit()
	if err != nil {
		return id, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	r.logger.Debug("commit synced", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return id, nil
}

// CommitInfo returns the latest committed version.
func (r *Runner) CommitInfo() (vault.CommitID, error) {
	return r.store.CommitInfo()
}

// Query runs the handler registered for the path against the latest
// delivered state. Path may be followed by "?<modifier>" which is ignored.
func (r *Runner) Query(path string, data []byte) (interface{}, error) {
	path = strings.SplitN(path, "?", 2)[0]
	qh := r.queryRouter.Handler(path)
	if qh == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "unexpected query path: %v", path)
	}
	return qh.Query(r.store.DeliverStore(), data)
}

// loadTx calls the decoder, and capture any panics
func (r *Runner) loadTx(txBytes []byte) (tx vault.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = r.decoder(txBytes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return tx, nil
}
