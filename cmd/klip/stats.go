package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/klip/internal/statistics"
	"github.com/at-ishikawa/klip/internal/store"
)

func newStatsCommand() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Reading statistics over the highlight collection",
	}

	statsCmd.AddCommand(newStatsOverviewCommand())
	statsCmd.AddCommand(newStatsRecentCommand())
	statsCmd.AddCommand(newStatsTemporalCommand())
	statsCmd.AddCommand(newStatsMatrixCommand())
	statsCmd.AddCommand(newStatsAuthorsCommand())
	statsCmd.AddCommand(newStatsAuthorBooksCommand())
	statsCmd.AddCommand(newStatsTitlesCommand())
	statsCmd.AddCommand(newStatsHeatmapCommand())
	statsCmd.AddCommand(newStatsActiveDaysCommand())

	return statsCmd
}

func withStoreState(run func(state store.State) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		return run(st.Data())
	}
}

func newStatsOverviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Headline figures: totals, active days, top books and authors",
		RunE: withStoreState(func(state store.State) error {
			overview := statistics.ComputeOverview(state)

			color.Cyan("Highlights: %d across %d books, on %d distinct days",
				overview.TotalHighlights, overview.BooksWithHighlights, overview.ActiveDays)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TOP BOOKS\tAUTHOR\tHIGHLIGHTS")
			for _, book := range overview.TopBooks {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", book.Title, book.Author, book.Count)
			}
			_, _ = fmt.Fprintln(w, "\t\t")
			_, _ = fmt.Fprintln(w, "TOP AUTHORS\t\tHIGHLIGHTS")
			for _, author := range overview.TopAuthors {
				_, _ = fmt.Fprintf(w, "%s\t\t%d\n", author.Author, author.Count)
			}
			_ = w.Flush()

			return nil
		}),
	}
}

func newStatsRecentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Recent activity: last 30 days, last 12 months, and yearly trend",
		RunE: withStoreState(func(state store.State) error {
			return printJSON(statistics.ComputeRecent(state, time.Now()))
		}),
	}
}

func newStatsTemporalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "temporal",
		Short: "When highlights happen: by hour, weekday, and month",
		RunE: withStoreState(func(state store.State) error {
			return printJSON(statistics.ComputeTemporalBreakdown(state))
		}),
	}
}

func newStatsMatrixCommand() *cobra.Command {
	var years int

	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "Year-by-month highlight counts",
		RunE: withStoreState(func(state store.State) error {
			return printJSON(statistics.ComputeMonthlyMatrix(state, years))
		}),
	}
	matrixCmd.Flags().IntVar(&years, "years", 0, "Number of recent years to include (0 for all)")

	return matrixCmd
}

func newStatsAuthorsCommand() *cobra.Command {
	var byHighlights bool

	authorsCmd := &cobra.Command{
		Use:   "authors",
		Short: "Authors ranked with highlight and book counts",
		RunE: withStoreState(func(state store.State) error {
			if byHighlights {
				return printJSON(statistics.ComputeAuthorsByHighlights(state))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "AUTHOR\tHIGHLIGHTS\tBOOKS")
			for _, author := range statistics.ComputeAuthorsWordcloud(state) {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", author.Author, author.Count, author.Books)
			}
			_ = w.Flush()
			return nil
		}),
	}
	authorsCmd.Flags().BoolVar(&byHighlights, "by-highlights", false, "Output the plain highlight-count ranking as JSON")

	return authorsCmd
}

func newStatsAuthorBooksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "author-books <author>",
		Short: "Books of one author ranked by highlight count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoreState(func(state store.State) error {
				return printJSON(statistics.ComputeAuthorBooks(state, args[0]))
			})(cmd, args)
		},
	}
}

func newStatsTitlesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "Book titles ranked by highlight count",
		RunE: withStoreState(func(state store.State) error {
			return printJSON(statistics.ComputeTitleWordcloud(state))
		}),
	}
}

func newStatsHeatmapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap",
		Short: "Daily highlight counts over the last 365 days",
		RunE: withStoreState(func(state store.State) error {
			return printJSON(statistics.ComputeHeatmapYear(state, time.Now()))
		}),
	}
}

func newStatsActiveDaysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "active-days",
		Short: "Every day with at least one highlight",
		RunE: withStoreState(func(state store.State) error {
			return printJSON(statistics.ComputeActiveDays(state))
		}),
	}
}
