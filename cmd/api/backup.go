package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func backupCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect the record backup list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print every mirrored record as one JSON document per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.Redis.Enabled {
				return errors.New("redis backup is disabled in config")
			}
			docs, err := a.backup.Dump(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, doc := range docs {
				if _, err := fmt.Fprintf(out, "%s\n", doc); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return cmd
}
