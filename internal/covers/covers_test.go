package covers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/klip/internal/store"
	"github.com/at-ishikawa/klip/internal/testutil"
)

func volumesBody(links map[string]string) string {
	body := `{"items":[{"volumeInfo":{"imageLinks":{`
	first := true
	for size, url := range links {
		if !first {
			body += ","
		}
		first = false
		body += fmt.Sprintf("%q:%q", size, url)
	}
	return body + `}}}]}`
}

func TestClient_Lookup(t *testing.T) {
	t.Run("prefers the largest image", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/volumes", r.URL.Path)
			assert.Equal(t, "Deep Work+inauthor:Cal Newport", r.URL.Query().Get("q"))
			assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
			assert.Equal(t, "books", r.URL.Query().Get("printType"))
			assert.Empty(t, r.URL.Query().Get("key"))

			fmt.Fprint(w, volumesBody(map[string]string{
				"thumbnail": "https://img.example/thumb.jpg",
				"large":     "https://img.example/large.jpg",
			}))
		}))
		defer server.Close()

		client := NewClient("")
		client.SetBaseURL(server.URL)

		got, err := client.Lookup(context.Background(), "Deep Work", "Cal Newport")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/large.jpg", got)
	})

	t.Run("sends the api key and a title-only query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Deep Work", r.URL.Query().Get("q"))
			assert.Equal(t, "secret", r.URL.Query().Get("key"))
			fmt.Fprint(w, volumesBody(map[string]string{"thumbnail": "https://img.example/thumb.jpg"}))
		}))
		defer server.Close()

		client := NewClient("secret")
		client.SetBaseURL(server.URL)

		got, err := client.Lookup(context.Background(), "Deep Work", "")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/thumb.jpg", got)
	})

	t.Run("no items means no cover, not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items":[]}`)
		}))
		defer server.Close()

		client := NewClient("")
		client.SetBaseURL(server.URL)

		got, err := client.Lookup(context.Background(), "Unknown Book", "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("retries server errors", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, volumesBody(map[string]string{"small": "https://img.example/small.jpg"}))
		}))
		defer server.Close()

		client := NewClient("")
		client.SetBaseURL(server.URL)

		got, err := client.Lookup(context.Background(), "Deep Work", "")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/small.jpg", got)
		assert.Equal(t, 3, attempts)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient("")
		client.SetBaseURL(server.URL)

		_, err := client.Lookup(context.Background(), "Deep Work", "")
		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func TestClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("not really a png"))
	}))
	defer server.Close()

	dir := t.TempDir()
	client := NewClient("")

	got, err := client.Download(context.Background(), server.URL+"/covers/image.png?zoom=1", dir, "fde481c5")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "book_fde481c5.png"), got)

	contents, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(contents))
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://img.example/cover.jpg", want: "jpg"},
		{url: "https://img.example/cover.PNG?zoom=5", want: "png"},
		{url: "https://img.example/cover.webp", want: "webp"},
		{url: "https://img.example/books/content?id=abc", want: "jpg"},
		{url: "https://img.example/cover.svg", want: "jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, imageExtension(tt.url))
		})
	}
}

func TestFillMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, volumesBody(map[string]string{"thumbnail": "https://img.example/found.jpg"}))
	}))
	defer server.Close()

	client := NewClient("")
	client.SetBaseURL(server.URL)

	t.Run("fills every book without a cover", func(t *testing.T) {
		st := testutil.PopulatedStore(t)

		result, err := FillMissing(context.Background(), st, client, 0)
		require.NoError(t, err)
		assert.Equal(t, FillResult{Checked: 4, Filled: 4}, result)

		for _, book := range st.Data().Books {
			assert.Equal(t, "https://img.example/found.jpg", book.CoverURL)
		}
	})

	t.Run("books with a cover are skipped", func(t *testing.T) {
		st := testutil.PopulatedStore(t)
		coverURL := "https://img.example/existing.jpg"
		_, err := st.UpdateBook("29452c48", store.BookPatch{CoverURL: &coverURL})
		require.NoError(t, err)

		result, err := FillMissing(context.Background(), st, client, 0)
		require.NoError(t, err)
		assert.Equal(t, FillResult{Checked: 3, Filled: 3}, result)
		assert.Equal(t, coverURL, st.Data().Books["29452c48"].CoverURL)
	})

	t.Run("limit caps the lookups", func(t *testing.T) {
		st := testutil.PopulatedStore(t)

		result, err := FillMissing(context.Background(), st, client, 2)
		require.NoError(t, err)
		assert.Equal(t, FillResult{Checked: 2, Filled: 2}, result)
	})
}
