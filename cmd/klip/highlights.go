package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/klip/internal/clippings"
	"github.com/at-ishikawa/klip/internal/query"
	"github.com/at-ishikawa/klip/internal/store"
)

// HighlightSortFlag is a pflag.Value restricted to the supported highlight
// orders.
type HighlightSortFlag string

// Set implements pflag.Value.
func (s *HighlightSortFlag) Set(v string) error {
	switch query.HighlightSort(v) {
	case query.HighlightSortDateDesc, query.HighlightSortDateAsc,
		query.HighlightSortAuthorAsc, query.HighlightSortAuthorDesc,
		query.HighlightSortBookAsc, query.HighlightSortBookDesc:
		*s = HighlightSortFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are date_desc, date_asc, author_asc, author_desc, book_asc or book_desc", v)
	}
	return nil
}

// String implements pflag.Value.
func (s *HighlightSortFlag) String() string {
	if s == nil {
		return ""
	}
	return string(*s)
}

// Type implements pflag.Value.
func (s *HighlightSortFlag) Type() string {
	return "HighlightSortFlag"
}

var (
	_ pflag.Value = (*HighlightSortFlag)(nil)
)

func newHighlightsCommand() *cobra.Command {
	highlightsCmd := &cobra.Command{
		Use:   "highlights",
		Short: "Browse and edit highlights",
	}

	highlightsCmd.AddCommand(newHighlightsListCommand())
	highlightsCmd.AddCommand(newHighlightsAddCommand())
	highlightsCmd.AddCommand(newHighlightsUpdateCommand())
	highlightsCmd.AddCommand(newHighlightsDeleteCommand())

	return highlightsCmd
}

func newHighlightsListCommand() *cobra.Command {
	var (
		bookID    string
		keyword   string
		author    string
		authorKey string
		day       string
		month     string
		year      string
		weekday   int
		hour      int
		monthNum  int
		skip      int
		limit     int
	)
	sortFlag := HighlightSortFlag(query.HighlightSortDateDesc)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List highlights with filters and pagination",
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

			filter := query.HighlightFilter{
				BookID:    bookID,
				Keyword:   keyword,
				Author:    author,
				AuthorKey: authorKey,
				Day:       day,
				Month:     month,
				Year:      year,
				Skip:      skip,
				Limit:     limit,
				Sort:      query.HighlightSort(sortFlag),
			}
			if cmd.Flags().Changed("weekday") {
				filter.Weekday = &weekday
			}
			if cmd.Flags().Changed("hour") {
				filter.Hour = &hour
			}
			if cmd.Flags().Changed("month-of-year") {
				filter.MonthNum = &monthNum
			}

			page := query.ListHighlights(st.Data(), filter)
			return printJSON(page)
		},
	}
	flags := listCmd.Flags()
	flags.StringVar(&bookID, "book", "", "Only highlights of this book id")
	flags.StringVar(&keyword, "keyword", "", "Match highlight content containing this text")
	flags.StringVar(&author, "author", "", "Match authors containing this text")
	flags.StringVar(&authorKey, "author-key", "", "Match the normalized author key exactly")
	flags.StringVar(&day, "day", "", "Only highlights added on this day (YYYY-MM-DD)")
	flags.StringVar(&month, "month", "", "Only highlights added in this month (YYYY-MM)")
	flags.StringVar(&year, "year", "", "Only highlights added in this year (YYYY)")
	flags.IntVar(&weekday, "weekday", 0, "Only highlights added on this weekday (0 = Sunday)")
	flags.IntVar(&hour, "hour", 0, "Only highlights added during this hour (0-23)")
	flags.IntVar(&monthNum, "month-of-year", 0, "Only highlights added in this month of any year (1-12)")
	flags.Var(&sortFlag, "sort", "Sort order for the output")
	flags.IntVar(&skip, "skip", 0, "Number of highlights to skip")
	flags.IntVar(&limit, "limit", query.DefaultLimit, "Maximum number of highlights to show")

	return listCmd
}

func newHighlightsAddCommand() *cobra.Command {
	var (
		author   string
		note     string
		location string
		date     string
	)

	addCmd := &cobra.Command{
		Use:   "add <book title> <content>",
		Short: "Add a highlight by hand",
		Args:  cobra.ExactArgs(2),
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

			title, content := args[0], args[1]
			clipIndex := nextClipIndex(st.Data())
			h := store.Highlight{
				ID:           clippings.HighlightID(title, content, clipIndex),
				BookID:       clippings.BookID(title),
				BookTitle:    title,
				Author:       author,
				Content:      content,
				NoteContent:  note,
				Location:     location,
				DateAddedRaw: date,
				DateAdded:    clippings.NormalizeDate(date),
				ClipIndex:    clipIndex,
			}
			if err := st.AddHighlight(h); err != nil {
				return fmt.Errorf("store.AddHighlight() > %w", err)
			}
			return printJSON(h)
		},
	}
	addCmd.Flags().StringVar(&author, "author", "", "Author of the book")
	addCmd.Flags().StringVar(&note, "note", "", "Note attached to the highlight")
	addCmd.Flags().StringVar(&location, "location", "", "Location within the book")
	addCmd.Flags().StringVar(&date, "date", "", "When the highlight was made, in any supported date form")

	return addCmd
}

// nextClipIndex returns one past the highest clip index in the store, so
// manual additions keep their place after every existing record.
func nextClipIndex(state store.State) int {
	next := 0
	for _, h := range state.Highlights {
		if h.ClipIndex >= next {
			next = h.ClipIndex + 1
		}
	}
	return next
}

func newHighlightsUpdateCommand() *cobra.Command {
	var (
		content  string
		note     string
		location string
		date     string
	)

	updateCmd := &cobra.Command{
		Use:   "update <highlight id>",
		Short: "Update a highlight's content, note, location, or date",
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

			patch := store.HighlightPatch{}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if cmd.Flags().Changed("note") {
				patch.NoteContent = &note
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &location
			}
			if cmd.Flags().Changed("date") {
				patch.DateAddedRaw = &date
				normalized := clippings.NormalizeDate(date)
				patch.DateAdded = &normalized
			}

			h, err := st.UpdateHighlight(args[0], patch)
			if err != nil {
				return fmt.Errorf("store.UpdateHighlight() > %w", err)
			}
			return printJSON(h)
		},
	}
	updateCmd.Flags().StringVar(&content, "content", "", "New highlight content")
	updateCmd.Flags().StringVar(&note, "note", "", "New note content")
	updateCmd.Flags().StringVar(&location, "location", "", "New location")
	updateCmd.Flags().StringVar(&date, "date", "", "New date, in any supported date form")

	return updateCmd
}

func newHighlightsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <highlight id>",
		Short: "Soft-delete a highlight",
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

			if err := st.DeleteHighlight(args[0]); err != nil {
				return fmt.Errorf("store.DeleteHighlight() > %w", err)
			}
			fmt.Printf("Deleted highlight %s\n", args[0])
			return nil
		},
	}
}
