// Package covers looks up missing book cover images through the Google
// Books volumes API and fills them into the record store.
package covers

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/klip/internal/store"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// imageSizePreference is the lookup order within a volume's image links,
// largest first.
var imageSizePreference = []string{"extraLarge", "large", "medium", "small", "thumbnail", "smallThumbnail"}

type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			ImageLinks map[string]string `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Client queries the Google Books API.
type Client struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient builds a client; the API key may be empty (the volumes endpoint
// allows unauthenticated queries at a lower rate).
func NewClient(apiKey string) *Client {
	client := resty.New()
	client.SetBaseURL(defaultBaseURL)
	return &Client{httpClient: client, apiKey: apiKey}
}

// SetBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.httpClient.SetBaseURL(baseURL)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Lookup returns the best cover image URL for a title/author pair, or an
// empty string when the API has no match. Transient API failures are retried
// with backoff.
func (c *Client) Lookup(ctx context.Context, title, author string) (string, error) {
	q := title
	if author != "" {
		q = fmt.Sprintf("%s+inauthor:%s", title, author)
	}

	var body volumesResponse
	err := retry.Do(
		func() error {
			request := c.httpClient.R().
				SetContext(ctx).
				SetQueryParam("q", q).
				SetQueryParam("maxResults", "5").
				SetQueryParam("printType", "books").
				SetResult(&body)
			if c.apiKey != "" {
				request.SetQueryParam("key", c.apiKey)
			}
			res, err := request.Get("/volumes")
			if err != nil {
				return fmt.Errorf("request.Get(volumes) > %w", err)
			}
			if res.StatusCode() != http.StatusOK {
				err := fmt.Errorf("response error %d: %s", res.StatusCode(), res.Body())
				if !isRetryableStatus(res.StatusCode()) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
	)
	if err != nil {
		return "", err
	}

	if len(body.Items) == 0 {
		return "", nil
	}
	links := body.Items[0].VolumeInfo.ImageLinks
	for _, size := range imageSizePreference {
		if url, ok := links[size]; ok && url != "" {
			return url, nil
		}
	}
	return "", nil
}

// Download fetches a cover image into dir, naming the file after the book
// id and keeping a known image extension. Returns the relative path.
func (c *Client) Download(ctx context.Context, coverURL, dir, bookID string) (string, error) {
	ext := imageExtension(coverURL)
	filename := fmt.Sprintf("book_%s.%s", bookID, ext)
	target := filepath.Join(dir, filename)

	res, err := resty.New().R().
		SetContext(ctx).
		SetOutput(target).
		Get(coverURL)
	if err != nil {
		return "", fmt.Errorf("request.Get(%s) > %w", coverURL, err)
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("response error %d downloading cover", res.StatusCode())
	}
	return target, nil
}

func imageExtension(coverURL string) string {
	withoutQuery := coverURL
	if i := strings.IndexByte(withoutQuery, '?'); i >= 0 {
		withoutQuery = withoutQuery[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(withoutQuery), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp":
		return ext
	}
	return "jpg"
}

// FillResult reports one cover fill run.
type FillResult struct {
	Checked int
	Filled  int
}

// FillMissing looks up covers for books without one and stores what it
// finds. At most limit books are checked (0 means no limit); lookup
// failures for individual books are skipped, not fatal.
func FillMissing(ctx context.Context, st *store.Store, client *Client, limit int) (FillResult, error) {
	var missing []store.Book
	for _, book := range st.Data().Books {
		if book.CoverURL == "" {
			missing = append(missing, book)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].ID < missing[j].ID })
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}

	result := FillResult{}
	for _, book := range missing {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		title := book.Title
		if title == "" {
			title = book.OriginalTitle
		}
		author := book.Author
		if author == "Unknown" {
			author = ""
		}
		coverURL, err := client.Lookup(ctx, title, author)
		if err != nil || coverURL == "" {
			continue
		}
		if _, err := st.UpdateBook(book.ID, store.BookPatch{CoverURL: &coverURL}); err != nil {
			return result, fmt.Errorf("store.UpdateBook(%s) > %w", book.ID, err)
		}
		result.Filled++
	}
	return result, nil
}
