package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxnlabs/cmdstream/fixtures"
	"github.com/fxnlabs/cmdstream/internal/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write the default config into the home directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing config"},
		},
		Action: func(c *cli.Context) error {
			homeDir := c.App.Metadata["homeDir"].(string)
			return writeConfig(homeDir, c.Bool("force"), loggerFrom(c))
		},
	}
}

func writeConfig(homeDir string, force bool, log *zap.Logger) error {
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	path := filepath.Join(homeDir, config.DefaultFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := os.WriteFile(path, fixtures.ConfigTemplate, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	log.Info("wrote config", zap.String("path", path))
	return nil
}
