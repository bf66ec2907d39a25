package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/klip/internal/store"
)

// RestoreModeFlag is a pflag.Value restricted to the supported restore
// modes.
type RestoreModeFlag string

// Set implements pflag.Value.
func (m *RestoreModeFlag) Set(v string) error {
	switch store.RestoreMode(v) {
	case store.RestoreModeMerge, store.RestoreModeReplace:
		*m = RestoreModeFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, store.RestoreModeMerge, store.RestoreModeReplace)
	}
	return nil
}

// String implements pflag.Value.
func (m *RestoreModeFlag) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

// Type implements pflag.Value.
func (m *RestoreModeFlag) Type() string {
	return "RestoreModeFlag"
}

var (
	_ pflag.Value = (*RestoreModeFlag)(nil)
)

func newBackupCommand() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and restore full-store snapshots",
	}

	backupCmd.AddCommand(newBackupCreateCommand())
	backupCmd.AddCommand(newBackupRestoreCommand())

	return backupCmd
}

func newBackupCreateCommand() *cobra.Command {
	var output string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write the whole store, deleted records included, to a snapshot file",
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

			if output == "" {
				output = fmt.Sprintf("klip_backup_%s.json", time.Now().UTC().Format("20060102T150405Z"))
			}

			snapshot := st.Snapshot()
			data, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write snapshot file: %w", err)
			}

			fmt.Printf("Backed up %d books and %d highlights to %s\n",
				len(snapshot.Books), len(snapshot.Highlights), output)
			return nil
		},
	}
	createCmd.Flags().StringVar(&output, "output", "", "Snapshot file path (defaults to a timestamped name)")

	return createCmd
}

func newBackupRestoreCommand() *cobra.Command {
	modeFlag := RestoreModeFlag(store.RestoreModeMerge)

	restoreCmd := &cobra.Command{
		Use:   "restore <snapshot file>",
		Short: "Load a snapshot file back into the store",
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

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read snapshot file: %w", err)
			}
			snapshot, err := store.DecodeSnapshot(data)
			if err != nil {
				return fmt.Errorf("store.DecodeSnapshot() > %w", err)
			}

			result, err := st.Restore(snapshot, store.RestoreMode(modeFlag))
			if err != nil {
				return fmt.Errorf("store.Restore() > %w", err)
			}

			fmt.Printf("Restored %d books and %d highlights (%d inserted)\n",
				result.Books, result.Highlights, result.Inserted)
			return nil
		},
	}
	restoreCmd.Flags().Var(&modeFlag, "mode", "How the snapshot is applied: merge or replace")

	return restoreCmd
}
