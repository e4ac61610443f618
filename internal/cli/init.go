package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// config.yaml is already in place after PersistentPreRunE.
			j, err := opts.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			configPath := filepath.Join(opts.resolvedConfigDir, configFileExt)
			if opts.jsonMode {
				enc := json.NewEncoder(cmd.OutOrStdout())
				return enc.Encode(map[string]string{"config": configPath, "journal": j.Path()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config:  %s\njournal: %s\n", configPath, j.Path())
			return nil
		},
	}
}
