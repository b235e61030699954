package main

import (
	"fmt"
	"os"
	"time"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/app"
	vaultd "github.com/iov-one/vault/cmd/vaultd/app"
	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/urfave/cli/v2"
)

// newLogger returns a logger writing to stdout, filtered to the configured
// level.
func newLogger(cfg *Config) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	opt, err := log.AllowLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt).With("module", "vaultd"), nil
}

// openNode loads the local state database.
func openNode(cfg *Config) (*app.Runner, log.Logger, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.resolve("data"), 0755); err != nil {
		return nil, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	kv, err := vaultd.CommitKVStore(cfg.DBPath(), cfg.DB.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	r, err := vaultd.Application(kv, logger)
	if err != nil {
		return nil, nil, err
	}
	return r, logger, nil
}

var initCMD = &cli.Command{
	Name:      "init",
	Usage:     "Initialize the state from a genesis file",
	ArgsUsage: "<genesis.json>",
	Action:    initChain,
}

func initChain(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowSubcommandHelp(ctx)
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	gen, err := app.LoadGenesis(ctx.Args().First())
	if err != nil {
		return err
	}
	if gen.ChainID != cfg.ChainID {
		return fmt.Errorf("genesis chain id %q does not match configured %q", gen.ChainID, cfg.ChainID)
	}
	r, _, err := openNode(cfg)
	if err != nil {
		return err
	}
	if err := r.InitChain(gen, time.Now().UTC()); err != nil {
		return err
	}
	id, err := r.Commit()
	if err != nil {
		return err
	}
	fmt.Printf("chain %s initialized at height %d\n", gen.ChainID, id.Version)
	return nil
}

// submit signs the message with the named key and processes it in a new
// block. A failing transaction is reported but state marked as committed
// by the handler is still persisted.
func submit(ctx *cli.Context, msg vault.Msg) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	key, err := loadKey(cfg, ctx.String("key"))
	if err != nil {
		return err
	}
	r, logger, err := openNode(cfg)
	if err != nil {
		return err
	}
	if r.ChainID() == "" {
		return errors.Wrap(errors.ErrState, "chain not initialized, run vaultd init first")
	}

	raw, err := signMsg(r, key, msg)
	if err != nil {
		return err
	}

	r.BeginBlock(time.Now().UTC())
	res, txErr := r.DeliverTx(raw)
	if txErr == nil || errors.IsCommitted(txErr) {
		if _, err := r.Commit(); err != nil {
			return err
		}
	}
	code, info := errors.ABCIInfo(txErr, false)
	if txErr != nil {
		logger.Error("transaction failed", "path", msg.Path(), "code", code, "err", info)
		return cli.Exit(info, 1)
	}
	if res != nil && len(res.Data) != 0 {
		fmt.Printf("%X\n", res.Data)
	}
	return nil
}

func signMsg(r *app.Runner, key *crypto.PrivateKey, msg vault.Msg) ([]byte, error) {
	seq, err := nextSequence(r, key.PublicKey().Address())
	if err != nil {
		return nil, err
	}
	tx, err := vaultd.SignTx(msg, r.ChainID(), []crypto.Signer{key}, []int64{seq})
	if err != nil {
		return nil, err
	}
	return tx.Marshal()
}

func nextSequence(r *app.Runner, addr vault.Address) (int64, error) {
	res, err := r.Query("/auth", addr)
	if err != nil {
		return 0, err
	}
	if u, ok := res.(*sigs.UserData); ok && u != nil {
		return u.Sequence, nil
	}
	return 0, nil
}
