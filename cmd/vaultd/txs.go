package main

import (
	"encoding/hex"
	"strings"

	vault "github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/multisig"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var expirationFlag = &cli.Uint64Flag{
	Name:  "expiration",
	Usage: "Seconds until the proposal expires, zero means seven days",
}

var proposalIDFlag = &cli.Uint64Flag{
	Name:     "id",
	Usage:    "Proposal id",
	Required: true,
}

var txCommands = []*cli.Command{
	{
		Name:      "send",
		Usage:     "Transfer tokens from your wallet",
		ArgsUsage: "<recipient> <amount ticker>",
		Flags: []cli.Flag{
			keyNameFlag,
			&cli.StringFlag{Name: "memo", Usage: "Optional memo"},
		},
		Action: sendTokens,
	},
	{
		Name:  "propose",
		Usage: "Create a vault proposal",
		Subcommands: []*cli.Command{
			{
				Name:      "transfer",
				Usage:     "Propose a transfer of vault tokens",
				ArgsUsage: "<recipient> <amount ticker>",
				Flags: []cli.Flag{
					keyNameFlag,
					expirationFlag,
					&cli.StringFlag{Name: "title", Usage: "Proposal title"},
					&cli.StringFlag{Name: "description", Usage: "Proposal description"},
				},
				Action: proposeTransfer,
			},
			{
				Name:      "upgrade",
				Usage:     "Propose installation of a new code version",
				ArgsUsage: "<hex code id>",
				Flags:     []cli.Flag{keyNameFlag, expirationFlag},
				Action:    proposeUpgrade,
			},
		},
	},
	{
		Name:   "sign",
		Usage:  "Approve a proposal",
		Flags:  []cli.Flag{keyNameFlag, proposalIDFlag},
		Action: signProposal,
	},
	{
		Name:   "execute",
		Usage:  "Execute a proposal that reached the quorum",
		Flags:  []cli.Flag{keyNameFlag, proposalIDFlag},
		Action: executeProposal,
	},
	{
		Name:   "remove",
		Usage:  "Remove a proposal you created",
		Flags:  []cli.Flag{keyNameFlag, proposalIDFlag},
		Action: removeProposal,
	},
}

func sendTokens(ctx *cli.Context) error {
	recipient, amount, err := transferArgs(ctx)
	if err != nil {
		return err
	}
	sender, err := senderAddress(ctx)
	if err != nil {
		return err
	}
	return submit(ctx, &cash.SendMsg{
		Source:      sender,
		Destination: recipient,
		Amount:      &amount,
		Memo:        ctx.String("memo"),
	})
}

func proposeTransfer(ctx *cli.Context) error {
	recipient, amount, err := transferArgs(ctx)
	if err != nil {
		return err
	}
	sender, err := senderAddress(ctx)
	if err != nil {
		return err
	}
	return submit(ctx, &multisig.CreateTransferProposalMsg{
		Sender:      sender,
		Title:       ctx.String("title"),
		Description: ctx.String("description"),
		Recipient:   recipient,
		Amount:      amount.Amount,
		Token:       amount.Ticker,
		Expiration:  ctx.Uint64("expiration"),
	})
}

func proposeUpgrade(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowSubcommandHelp(ctx)
	}
	codeID, err := hex.DecodeString(ctx.Args().First())
	if err != nil {
		return errors.Wrap(err, "invalid code id")
	}
	sender, err := senderAddress(ctx)
	if err != nil {
		return err
	}
	return submit(ctx, &multisig.CreateUpgradeProposalMsg{
		Sender:     sender,
		CodeID:     codeID,
		Expiration: ctx.Uint64("expiration"),
	})
}

func signProposal(ctx *cli.Context) error {
	sender, err := senderAddress(ctx)
	if err != nil {
		return err
	}
	return submit(ctx, &multisig.SignProposalMsg{Sender: sender, ProposalID: ctx.Uint64("id")})
}

func executeProposal(ctx *cli.Context) error {
	sender, err := senderAddress(ctx)
	if err != nil {
		return err
	}
	return submit(ctx, &multisig.ExecuteProposalMsg{Sender: sender, ProposalID: ctx.Uint64("id")})
}

func removeProposal(ctx *cli.Context) error {
	sender, err := senderAddress(ctx)
	if err != nil {
		return err
	}
	return submit(ctx, &multisig.RemoveProposalMsg{Sender: sender, ProposalID: ctx.Uint64("id")})
}

// transferArgs parses the recipient address and the amount given as
// positional arguments. Amount may be split into two arguments.
func transferArgs(ctx *cli.Context) (vault.Address, coin.Coin, error) {
	if ctx.NArg() < 2 {
		return nil, coin.Coin{}, errors.New("recipient and amount required")
	}
	args := ctx.Args().Slice()
	recipient, err := vault.ParseAddress(args[0])
	if err != nil {
		return nil, coin.Coin{}, errors.Wrap(err, "invalid recipient")
	}
	amount, err := coin.ParseHumanFormat(strings.Join(args[1:], " "))
	if err != nil {
		return nil, coin.Coin{}, err
	}
	return recipient, amount, nil
}

func senderAddress(ctx *cli.Context) (vault.Address, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	key, err := loadKey(cfg, ctx.String("key"))
	if err != nil {
		return nil, err
	}
	return signerAddress(key), nil
}

func signerAddress(s crypto.Signer) vault.Address {
	return s.PublicKey().Address()
}
