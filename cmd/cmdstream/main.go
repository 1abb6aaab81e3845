package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fxnlabs/cmdstream/internal/config"
	"github.com/fxnlabs/cmdstream/internal/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	var home string
	var rootLogger *zap.Logger

	app := &cli.App{
		Name:  "cmdstream",
		Usage: "Build, submit and synchronize accelerator command streams",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "home",
				Value:       config.GetDefaultConfigHome(),
				Usage:       "Path to the cmdstream home directory",
				EnvVars:     []string{"CMDSTREAM_HOME"},
				Destination: &home,
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(home)
			if errors.Is(err, fs.ErrNotExist) {
				cfg = config.Default()
			} else if err != nil {
				return err
			}
			zapLogger, err := logger.New(cfg.Logger)
			if err != nil {
				return err
			}
			rootLogger = zapLogger.Named("cli")
			c.App.Metadata["homeDir"] = home
			c.App.Metadata["config"] = cfg
			c.App.Metadata["logger"] = rootLogger
			return nil
		},
		Commands: []*cli.Command{
			initCommand(),
			infoCommand(),
			fenceCommand(),
			benchCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("failed to run app", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func loggerFrom(c *cli.Context) *zap.Logger {
	return c.App.Metadata["logger"].(*zap.Logger)
}
