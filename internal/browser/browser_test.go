package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/opinions/internal/logger"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":        Chrome,
		"chrome":  Chrome,
		"Firefox": Firefox,
		" edge ":  Edge,
		"http":    HTTP,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("safari")
	assert.True(t, errors.Is(err, ErrUnsupportedBrowser))
}

func TestNewFirefoxUnsupported(t *testing.T) {
	_, err := New(context.Background(), Options{Kind: Firefox}, logger.Discard())
	assert.ErrorIs(t, err, ErrUnsupportedBrowser)
}

func TestNewHTTP(t *testing.T) {
	l, err := New(context.Background(), Options{Kind: HTTP, PageLoadTimeout: time.Second}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &HTTPLoader{}, l)
	assert.NoError(t, l.Close())
}

func TestHTTPLoaderOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/page", http.StatusFound)
		case "/page":
			fmt.Fprint(w, `<html><body><article><h1>Hola</h1></article></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewHTTPLoader(2*time.Second, logger.Discard())
	ctx := context.Background()

	page, err := l.Open(ctx, srv.URL+"/old", "article")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/page", page.URL.String())
	assert.Equal(t, "Hola", page.Doc.Find("h1").Text())

	_, err = l.Open(ctx, srv.URL+"/page", "article h2 a")
	assert.ErrorIs(t, err, ErrElementNotFound)

	_, err = l.Open(ctx, srv.URL+"/missing", "")
	assert.Error(t, err)
}

func TestPageResolve(t *testing.T) {
	page, err := NewPage("https://elpais.com/opinion/2024-01-01/x.html", "<html></html>")
	require.NoError(t, err)

	assert.Equal(t, "https://elpais.com/opinion/2024-01-02/y.html", page.Resolve("/opinion/2024-01-02/y.html"))
	assert.Equal(t, "https://imagenes.elpais.com/a.jpg", page.Resolve("//imagenes.elpais.com/a.jpg"))
	assert.Equal(t, "", page.Resolve("   "))
	assert.Equal(t, "", page.Resolve("http://[::1"))
}
