package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/klip/internal/export"
)

// FormatFlag is a pflag.Value restricted to the supported export formats.
type FormatFlag string

// Set implements pflag.Value.
func (f *FormatFlag) Set(v string) error {
	format, err := export.ParseFormat(v)
	if err != nil {
		return err
	}
	*f = FormatFlag(format)
	return nil
}

// String implements pflag.Value.
func (f *FormatFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FormatFlag) Type() string {
	return "FormatFlag"
}

var (
	_ pflag.Value = (*FormatFlag)(nil)
)

func newExportCommand() *cobra.Command {
	var (
		splitByBook bool
		bookID      string
		outputDir   string
	)
	formatFlag := FormatFlag(export.FormatText)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export highlights as txt, markdown, json, or pdf",
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

			if outputDir == "" {
				outputDir = cfg.Export.OutputDirectory
			}

			result, err := export.Export(st.Data(), export.Options{
				Format:      export.Format(formatFlag),
				SplitByBook: splitByBook,
				Lang:        cfg.Export.Language,
				BookID:      bookID,
			})
			if err != nil {
				return fmt.Errorf("export.Export() > %w", err)
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			target := filepath.Join(outputDir, result.Filename)
			if err := os.WriteFile(target, result.Bytes, 0644); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}

			fmt.Printf("Exported to %s (%s, %d bytes)\n", target, result.MimeType, len(result.Bytes))
			return nil
		},
	}
	flags := exportCmd.Flags()
	flags.Var(&formatFlag, "format", "Output format: txt, markdown, json, or pdf")
	flags.BoolVar(&splitByBook, "split", false, "Produce one file per book, bundled as a zip archive")
	flags.StringVar(&bookID, "book", "", "Only export highlights of this book id")
	flags.StringVar(&outputDir, "output", "", "Directory to write into (defaults to the configured one)")

	return exportCmd
}
