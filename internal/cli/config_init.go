package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/shepherd/internal/config"
)

// ErrConfigExists is returned by config init when the file is already present.
var ErrConfigExists = errors.New("configuration file already exists, use --force to overwrite")

// newConfigInitCmd creates the config init command.
func newConfigInitCmd(st *state) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates ~/.shepherd/config.yaml (or the --config path) populated with the
default logging, API, lazy loading, cache and session settings.`,
		Example: `  # Create the default configuration
  shepherd config init

  # Overwrite an existing configuration
  shepherd config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(st)
			if err != nil {
				return err
			}
			return initConfig(cmd, path, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	return cmd
}

func initConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return ErrConfigExists
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}
	if err := config.New().Save(path); err != nil {
		return err
	}
	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}

func configPath(st *state) (string, error) {
	if st.configPath != "" {
		return st.configPath, nil
	}
	return config.DefaultPath()
}
