package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigShowCmd prints the effective configuration after file, project
// overlay and environment overrides have been applied.
func newConfigShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(st.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// newConfigValidateCmd reports whether the configuration loads. Loading
// already validates, so reaching RunE means the file is valid.
func newConfigValidateCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(st)
			if err != nil {
				return err
			}
			if err := st.cfg.Validate(); err != nil {
				return err
			}
			cmd.Printf("Configuration is valid (%s)\n", path)
			return nil
		},
	}
}
