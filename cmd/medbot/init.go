package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petasbytes/medbot/internal/config"
)

const initLongDesc string = `Write a config.toml holding the default settings.

Without --config the file is created as ./.medbot/config.toml, which medbot
reads on start. The API key is not written; set MEDBOT_ANTHROPIC_API_KEY
or ANTHROPIC_API_KEY instead.

Examples:
  medbot init
  medbot init --force`

const initShortDesc string = "Write a default .medbot/config.toml"

func newInitCmd(configFile *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := *configFile
			if path == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting current directory: %w", err)
				}
				path = filepath.Join(cwd, config.DirName, "config.toml")
			}
			if err := config.Save(path, config.NewDefaultConfig(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}
