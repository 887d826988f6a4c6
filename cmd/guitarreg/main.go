package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/atvirokodosprendimai/guitarregistry/internal/app"
)

func main() {
	cmd := &cli.Command{
		Name:  "guitarreg",
		Usage: "Validate guitar registry submissions and export their schemas",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Sources: cli.EnvVars("GUITARREG_CONFIG"),
				Usage:   "Optional YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: json or text (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Reject unknown keys instead of ignoring them",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate submission files",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "batch",
						Usage: "Treat each file as a batch submission",
					},
					&cli.BoolFlag{
						Name:  "deliver",
						Usage: "Hand valid submissions to the configured sink",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Directory to write canonical JSON for valid files",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					a, err := newApp(c)
					if err != nil {
						return err
					}
					return a.Validate(ctx, app.ValidateRequest{
						Files:     c.Args().Slice(),
						Batch:     c.Bool("batch"),
						Deliver:   c.Bool("deliver"),
						ExportDir: c.String("export"),
					})
				},
			},
			{
				Name:      "components",
				Usage:     "Validate each component of a payload independently",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, c *cli.Command) error {
					file, err := singleArg(c)
					if err != nil {
						return err
					}
					a, err := newApp(c)
					if err != nil {
						return err
					}
					return a.Components(file)
				},
			},
			{
				Name:      "summary",
				Usage:     "Report which components a payload carries and whether it is valid",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, c *cli.Command) error {
					file, err := singleArg(c)
					if err != nil {
						return err
					}
					a, err := newApp(c)
					if err != nil {
						return err
					}
					return a.Summary(file)
				},
			},
			{
				Name:  "schema",
				Usage: "Print or write the JSON Schema documents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Single schema to export",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Directory to write <name>.json files into",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					a, err := newApp(c)
					if err != nil {
						return err
					}
					return a.Schema(c.String("name"), c.String("out"))
				},
			},
			{
				Name:      "check-schema",
				Usage:     "Validate a file against an exported JSON Schema",
				ArgsUsage: "NAME FILE",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 2 {
						return fmt.Errorf("expected NAME and FILE, got %d arguments", c.Args().Len())
					}
					a, err := newApp(c)
					if err != nil {
						return err
					}
					return a.CheckSchema(c.Args().Get(0), c.Args().Get(1))
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

func newApp(c *cli.Command) (*app.App, error) {
	a, err := app.New(app.Options{
		ConfigPath: c.String("config"),
		LogLevel:   c.String("log-level"),
		LogFormat:  c.String("log-format"),
		Strict:     c.Bool("strict"),
	}, os.Stdout, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}
	return a, nil
}

func singleArg(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected one FILE argument, got %d", c.Args().Len())
	}
	return c.Args().First(), nil
}
