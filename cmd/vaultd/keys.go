package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/vault/crypto"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/ed25519"
)

var keyNameFlag = &cli.StringFlag{
	Name:  "key",
	Usage: "Name of the private key stored in the keys directory",
	Value: "default",
}

var keysCMD = &cli.Command{
	Name:  "keys",
	Usage: "Private key management",
	Subcommands: []*cli.Command{
		{
			Name:   "new",
			Usage:  "Generate a new private key",
			Flags:  []cli.Flag{keyNameFlag},
			Action: newKey,
		},
		{
			Name:   "show",
			Usage:  "Print the address of a private key",
			Flags:  []cli.Flag{keyNameFlag},
			Action: showKey,
		},
	},
}

func newKey(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	path := keyPath(cfg, ctx.String("key"))
	if Exist(path) {
		// Never overwrite a key, it must be removed manually.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", path)
	}
	if err := os.MkdirAll(cfg.KeysPath(), 0700); err != nil {
		return errors.Wrap(err, "cannot create keys directory")
	}

	key := crypto.GenPrivKeyEd25519()
	if err := os.WriteFile(path, key.Ed25519, 0600); err != nil {
		return errors.Wrap(err, "cannot write private key")
	}
	fmt.Println(key.PublicKey().Address())
	return nil
}

func showKey(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	key, err := loadKey(cfg, ctx.String("key"))
	if err != nil {
		return err
	}
	fmt.Println(key.PublicKey().Address())
	return nil
}

func keyPath(cfg *Config, name string) string {
	return filepath.Join(cfg.KeysPath(), name+".key")
}

func loadKey(cfg *Config, name string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(keyPath(cfg, name))
	if err != nil {
		return nil, errors.Wrap(err, "cannot read private key file")
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	return &crypto.PrivateKey{Ed25519: raw}, nil
}
