package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/x/multisig"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// argKind describes how the positional argument of a query is encoded.
type argKind int

const (
	noArg argKind = iota
	proposalArg
	addressArg
)

type queryDef struct {
	name  string
	path  string
	usage string
	arg   argKind
}

var queries = []queryDef{
	{name: "info", path: "/multisig/info", usage: "Vault configuration"},
	{name: "members", path: "/multisig/members", usage: "Vault members"},
	{name: "proposal", path: "/multisig/proposal", usage: "A single proposal", arg: proposalArg},
	{name: "proposals", path: "/multisig/proposals", usage: "All proposals"},
	{name: "signatures", path: "/multisig/signatures", usage: "Signature status of a proposal", arg: proposalArg},
	{name: "lastid", path: "/multisig/lastid", usage: "Most recent proposal id"},
	{name: "ready", path: "/multisig/ready", usage: "Whether a proposal reached the quorum", arg: proposalArg},
	{name: "version", path: "/multisig/version", usage: "Number of executed upgrades"},
	{name: "balance", path: "/wallets", usage: "Wallet balance, vault wallet by default", arg: addressArg},
	{name: "code", path: "/code", usage: "Currently installed code"},
	{name: "codes", path: "/code/history", usage: "All installed code versions"},
	{name: "account", path: "/auth", usage: "Signer sequence and public key", arg: addressArg},
}

func queryCommand() *cli.Command {
	cmd := &cli.Command{
		Name:  "query",
		Usage: "Read the local state",
	}
	for _, q := range queries {
		q := q
		sub := &cli.Command{
			Name:  q.name,
			Usage: q.usage,
			Action: func(ctx *cli.Context) error {
				return runQuery(ctx, q)
			},
		}
		switch q.arg {
		case proposalArg:
			sub.ArgsUsage = "<proposal id>"
		case addressArg:
			sub.ArgsUsage = "[address]"
		}
		cmd.Subcommands = append(cmd.Subcommands, sub)
	}
	return cmd
}

func runQuery(ctx *cli.Context, q queryDef) error {
	data, err := queryData(ctx, q.arg)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	r, _, err := openNode(cfg)
	if err != nil {
		return err
	}
	res, err := r.Query(q.path, data)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize result")
	}
	fmt.Println(string(raw))
	return nil
}

func queryData(ctx *cli.Context, kind argKind) ([]byte, error) {
	switch kind {
	case proposalArg:
		if ctx.NArg() != 1 {
			return nil, errors.New("proposal id required")
		}
		id, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid proposal id")
		}
		return multisig.ProposalKey(id), nil
	case addressArg:
		if ctx.NArg() == 0 {
			return multisig.VaultAddress(), nil
		}
		addr, err := vault.ParseAddress(ctx.Args().First())
		if err != nil {
			return nil, err
		}
		return addr, nil
	default:
		return nil, nil
	}
}
