package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/at-ishikawa/klip/internal/config"
	"github.com/at-ishikawa/klip/internal/store"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openStore opens the configured persistence medium and the store on top of
// it. The returned close function is a no-op for the file driver.
func openStore(cfg *config.Config) (*store.Store, func() error, error) {
	switch cfg.Data.Driver {
	case config.DataDriverSQLite:
		medium, err := store.OpenSQLiteMedium(cfg.Data.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("store.OpenSQLiteMedium() > %w", err)
		}
		st, err := store.Open(medium)
		if err != nil {
			_ = medium.Close()
			return nil, nil, fmt.Errorf("store.Open() > %w", err)
		}
		return st, medium.Close, nil
	default:
		st, err := store.Open(store.NewFileMedium(cfg.Data.Path))
		if err != nil {
			return nil, nil, fmt.Errorf("store.Open() > %w", err)
		}
		return st, func() error { return nil }, nil
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
