package metastats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherSuccess(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(5*time.Second, "metastats-test")
	body, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html><body>ok</body></html>", string(body))
	assert.Equal(t, "metastats-test", gotUA)
}

func TestHTTPFetcherStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewHTTPFetcher(5*time.Second, "metastats-test")
	_, err := f.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPFetcherTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	f := NewHTTPFetcher(time.Second, "metastats-test")
	_, err := f.Fetch(context.Background(), url)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "HTTP request failed", fetchErr.Message)
}

func TestRunAgainstHTTPServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(indexPage([]string{"Quest Rogue"})))
	})
	mux.HandleFunc("/deck/1/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(deckPage("Fire Fly")))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s, _ := newTestScraper(t, NewHTTPFetcher(5*time.Second, "metastats-test"), 9)
	s.cfg.BaseURL = server.URL

	report, out, err := s.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Sections, 1)
	assert.Equal(t, "QuestRogue", report.Sections[0].Name)
	assert.Equal(t, "QuestRogue\n2_Fire Fly\n", readFile(t, out.Path()))
}
