package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/klip/internal/query"
	"github.com/at-ishikawa/klip/internal/store"
)

// BookSortFlag is a pflag.Value restricted to the supported book orders.
type BookSortFlag string

// Set implements pflag.Value.
func (s *BookSortFlag) Set(v string) error {
	switch query.BookSort(v) {
	case query.BookSortLatestDesc, query.BookSortLatestAsc,
		query.BookSortTitleAsc, query.BookSortTitleDesc,
		query.BookSortAuthorAsc, query.BookSortAuthorDesc,
		query.BookSortCountDesc:
		*s = BookSortFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are latest_desc, latest_asc, title_asc, title_desc, author_asc, author_desc or count_desc", v)
	}
	return nil
}

// String implements pflag.Value.
func (s *BookSortFlag) String() string {
	if s == nil {
		return ""
	}
	return string(*s)
}

// Type implements pflag.Value.
func (s *BookSortFlag) Type() string {
	return "BookSortFlag"
}

var (
	_ pflag.Value = (*BookSortFlag)(nil)
)

func newBooksCommand() *cobra.Command {
	booksCmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and edit book records",
	}

	booksCmd.AddCommand(newBooksListCommand())
	booksCmd.AddCommand(newBooksShowCommand())
	booksCmd.AddCommand(newBooksUpdateCommand())

	return booksCmd
}

func newBooksListCommand() *cobra.Command {
	var (
		queryText string
		author    string
		skip      int
		limit     int
	)
	sortFlag := BookSortFlag(query.BookSortLatestDesc)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List books with their highlight counts",
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

			page := query.ListBooks(st.Data(), query.BookFilter{
				Query:  queryText,
				Author: author,
				Skip:   skip,
				Limit:  limit,
				Sort:   query.BookSort(sortFlag),
			})
			if page.Total == 0 {
				fmt.Println("No books found. Use 'klip upload <file>' to add highlights.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tHIGHLIGHTS\tLAST")
			for _, book := range page.Items {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					book.ID, book.Title, book.Author, book.HighlightCount, book.LastHighlightAt)
			}
			_ = w.Flush()
			fmt.Printf("Showing %d of %d books\n", len(page.Items), page.Total)

			return nil
		},
	}
	flags := listCmd.Flags()
	flags.StringVar(&queryText, "query", "", "Match books whose title or author contains this text")
	flags.StringVar(&author, "author", "", "Match books whose author contains this text")
	flags.Var(&sortFlag, "sort", "Sort order for the output")
	flags.IntVar(&skip, "skip", 0, "Number of books to skip")
	flags.IntVar(&limit, "limit", query.DefaultLimit, "Maximum number of books to show")

	return listCmd
}

func newBooksShowCommand() *cobra.Command {
	var (
		skip  int
		limit int
	)

	showCmd := &cobra.Command{
		Use:   "show <book id>",
		Short: "Show one book with a page of its highlights",
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

			detail, err := query.GetBookDetail(st.Data(), args[0], skip, limit)
			if err != nil {
				return fmt.Errorf("query.GetBookDetail() > %w", err)
			}
			return printJSON(detail)
		},
	}
	showCmd.Flags().IntVar(&skip, "skip", 0, "Number of highlights to skip")
	showCmd.Flags().IntVar(&limit, "limit", query.DefaultLimit, "Maximum number of highlights to show")

	return showCmd
}

func newBooksUpdateCommand() *cobra.Command {
	var (
		title    string
		author   string
		coverURL string
	)

	updateCmd := &cobra.Command{
		Use:   "update <book id>",
		Short: "Update a book's title, author, or cover URL",
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

			patch := store.BookPatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("author") {
				patch.Author = &author
			}
			if cmd.Flags().Changed("cover-url") {
				patch.CoverURL = &coverURL
			}

			book, err := st.UpdateBook(args[0], patch)
			if err != nil {
				return fmt.Errorf("store.UpdateBook() > %w", err)
			}
			return printJSON(book)
		},
	}
	updateCmd.Flags().StringVar(&title, "title", "", "New display title")
	updateCmd.Flags().StringVar(&author, "author", "", "New author")
	updateCmd.Flags().StringVar(&coverURL, "cover-url", "", "New cover image URL")

	return updateCmd
}
