package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/klip/internal/clippings"
)

func newUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <clippings file>",
		Short: "Parse a My Clippings export and add its highlights to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read clippings file: %w", err)
			}

			parsed := clippings.Parse(string(raw), clippings.Options{
				KnownIDs: st.KnownIDs(),
			})
			inserted, err := st.Ingest(parsed)
			if err != nil {
				return fmt.Errorf("store.Ingest() > %w", err)
			}

			fmt.Printf("Parsed %d new highlights, added %d to the store\n", len(parsed), inserted)
			return nil
		},
	}
}
