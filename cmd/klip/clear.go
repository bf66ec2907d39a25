package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCommand() *cobra.Command {
	var force bool

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every record from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the store without --force")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			if err := st.Clear(); err != nil {
				return fmt.Errorf("store.Clear() > %w", err)
			}

			fmt.Println("Cleared the store")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&force, "force", false, "Confirm clearing all data")

	return clearCmd
}
