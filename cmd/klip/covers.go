package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/klip/internal/covers"
)

func newCoversCommand() *cobra.Command {
	coversCmd := &cobra.Command{
		Use:   "covers",
		Short: "Fetch book cover images from Google Books",
	}

	coversCmd.AddCommand(newCoversFillCommand())
	coversCmd.AddCommand(newCoversDownloadCommand())

	return coversCmd
}

func newCoversFillCommand() *cobra.Command {
	var limit int

	fillCmd := &cobra.Command{
		Use:   "fill",
		Short: "Look up cover URLs for books that have none",
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

			client := covers.NewClient(cfg.Covers.GoogleBooksAPIKey)
			result, err := covers.FillMissing(cmd.Context(), st, client, limit)
			if err != nil {
				return fmt.Errorf("covers.FillMissing() > %w", err)
			}

			fmt.Printf("Checked %d books, found %d covers\n", result.Checked, result.Filled)
			return nil
		},
	}
	fillCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of books to look up (0 for all)")

	return fillCmd
}

func newCoversDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download known cover images into the covers directory",
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

			client := covers.NewClient(cfg.Covers.GoogleBooksAPIKey)
			downloaded := 0
			for _, book := range st.Data().Books {
				if book.CoverURL == "" {
					continue
				}
				path, err := client.Download(cmd.Context(), book.CoverURL, cfg.Covers.Directory, book.ID)
				if err != nil {
					fmt.Printf("Skipping %s: %v\n", book.Title, err)
					continue
				}
				fmt.Printf("Saved %s\n", path)
				downloaded++
			}

			fmt.Printf("Downloaded %d cover images\n", downloaded)
			return nil
		},
	}
}
