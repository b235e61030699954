package main

import (
	"fmt"
	"os"
	"time"

	vault "github.com/iov-one/vault"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "vaultd"
	app.Usage = "Multisig vault node"
	app.Version = vault.Version()
	app.Compiled = time.Now()

	// global flags
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "home",
			Usage:   "Directory holding config, keys and state",
			EnvVars: []string{homeEnvVar},
		},
	}

	app.Commands = []*cli.Command{
		configCMD,
		keysCMD,
		initCMD,
		queryCommand(),
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "Print vaultd version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(vault.Version())
				return nil
			},
		},
	}
	app.Commands = append(app.Commands, txCommands...)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
