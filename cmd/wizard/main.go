package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/functionland/blox-wizard/internal/config"
)

type metadata struct {
	config *config.Config
	w      io.Writer
	e      io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "blox-wizard"
	app.Usage = "Blox setup wizard and local gateway"
	app.Version = version

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Value:  "",
			Usage:  " YAML configuration `FILE`",
			EnvVar: "BLOX_CONFIG",
		},
		cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: " dotenv `FILE` loaded before the configuration",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "run the wizard web server (default)",
			Action: runServe,
		},
		{
			Name:   "status",
			Usage:  "print the stored onboarding state",
			Action: runStatus,
		},
		{
			Name:   "next-step",
			Usage:  "print the URL path of the next wizard step",
			Action: runNextStep,
		},
		{
			Name:   "reset",
			Usage:  "forget the stored onboarding state",
			Action: runReset,
		},
	}
	app.Action = runServe

	app.Before = func(c *cli.Context) error {
		// best-effort: a missing .env is not an error
		_ = godotenv.Load(c.GlobalString("env-file"))

		cfg, err := config.Load(c.GlobalString("config"))
		if err != nil {
			return err
		}
		app.Metadata = map[string]interface{}{
			"config": &metadata{config: cfg, w: app.Writer, e: app.ErrWriter},
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%v\n", v)
		return
	}
	fmt.Fprintf(w, "%s\n", b)
}
