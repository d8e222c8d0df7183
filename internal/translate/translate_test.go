package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/opinions/internal/cache"
	"github.com/deusflow/opinions/internal/logger"
	"github.com/deusflow/opinions/internal/ratelimit"
)

type fakeProvider struct {
	name  string
	out   string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Translate(_ context.Context, text, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.out == "" {
		return "", nil
	}
	return f.out, nil
}

func TestTranslateFallsBackInOrder(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("boom")}
	second := &fakeProvider{name: "second", out: "  The long summer "}
	third := &fakeProvider{name: "third", out: "unused"}

	c := NewClient([]Provider{first, second, third}, Options{}, logger.Discard())
	assert.Equal(t, []string{"first", "second", "third"}, c.Providers())

	res := c.Translate(context.Background(), "El largo verano", "es", "en")
	require.False(t, res.Failed())
	assert.Equal(t, "The long summer", res.Text)
	assert.Equal(t, "El largo verano", res.Original)
	assert.Equal(t, "second", res.Provider)
	assert.Equal(t, 0, third.calls)
}

func TestTranslateEmptyAnswerCountsAsFailure(t *testing.T) {
	empty := &fakeProvider{name: "empty"}
	good := &fakeProvider{name: "good", out: "Hello"}

	res := NewClient([]Provider{empty, good}, Options{}, logger.Discard()).
		Translate(context.Background(), "Hola", "es", "en")
	assert.Equal(t, "Hello", res.Text)
	assert.Equal(t, "good", res.Provider)
}

func TestTranslateAllFailReturnsOriginal(t *testing.T) {
	boom := errors.New("boom")
	c := NewClient([]Provider{
		&fakeProvider{name: "a", err: boom},
		&fakeProvider{name: "b", err: ErrMissingKey},
	}, Options{}, logger.Discard())

	res := c.Translate(context.Background(), "Hola mundo", "es", "en")
	require.True(t, res.Failed())
	assert.Equal(t, "Hola mundo", res.Text)
	assert.Empty(t, res.Provider)
	assert.ErrorIs(t, res.Err, errTranslationFailed)
	assert.ErrorIs(t, res.Err, boom)
	assert.ErrorIs(t, res.Err, ErrMissingKey)
}

func TestTranslateNoProviders(t *testing.T) {
	res := NewClient(nil, Options{}, logger.Discard()).Translate(context.Background(), "Hola", "es", "en")
	assert.ErrorIs(t, res.Err, ErrNoProviders)
	assert.Equal(t, "Hola", res.Text)
}

func TestTranslateBlankTextSkipsProviders(t *testing.T) {
	p := &fakeProvider{name: "p", out: "x"}
	res := NewClient([]Provider{p}, Options{}, logger.Discard()).Translate(context.Background(), "   ", "es", "en")
	assert.False(t, res.Failed())
	assert.Equal(t, "   ", res.Text)
	assert.Equal(t, 0, p.calls)
}

func TestTranslateUsesCache(t *testing.T) {
	p := &fakeProvider{name: "p", out: "Hello"}
	c := NewClient([]Provider{p}, Options{Cache: cache.New(), CacheTTL: time.Hour}, logger.Discard())

	first := c.Translate(context.Background(), "Hola", "es", "en")
	second := c.Translate(context.Background(), "Hola", "es", "en")

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, "Hello", second.Text)
	assert.Equal(t, 1, p.calls)

	// different direction is a different key
	c.Translate(context.Background(), "Hola", "es", "fr")
	assert.Equal(t, 2, p.calls)
}

func TestTranslateBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	bad := &fakeProvider{name: "bad", err: errors.New("down")}
	good := &fakeProvider{name: "good", out: "ok"}
	c := NewClient([]Provider{bad, good}, Options{BreakerThreshold: 2, BreakerTimeout: time.Hour}, logger.Discard())

	for i := 0; i < 4; i++ {
		res := c.Translate(context.Background(), "texto", "es", "en")
		assert.Equal(t, "good", res.Provider)
	}
	assert.Equal(t, 2, bad.calls)
	assert.Equal(t, 4, good.calls)
}

func TestTranslateBreakerOpenStateIsReported(t *testing.T) {
	bad := &fakeProvider{name: "bad", err: errors.New("down")}
	c := NewClient([]Provider{bad}, Options{BreakerThreshold: 1, BreakerTimeout: time.Hour}, logger.Discard())

	c.Translate(context.Background(), "uno", "es", "en")
	res := c.Translate(context.Background(), "dos", "es", "en")
	assert.ErrorIs(t, res.Err, gobreaker.ErrOpenState)
}

func TestTranslateRespectsBudget(t *testing.T) {
	limited := &fakeProvider{name: "limited", out: "from limited"}
	backup := &fakeProvider{name: "backup", out: "from backup"}
	budget := ratelimit.NewBudget(0, map[string]int{"limited": 1}, logger.Discard())
	c := NewClient([]Provider{limited, backup}, Options{Budget: budget}, logger.Discard())

	assert.Equal(t, "limited", c.Translate(context.Background(), "uno", "es", "en").Provider)
	assert.Equal(t, "backup", c.Translate(context.Background(), "dos", "es", "en").Provider)
	assert.Equal(t, 1, limited.calls)
	assert.Equal(t, [2]int{1, 1}, budget.Stats()["limited"])
}

func TestTranslateTruncatesLongInput(t *testing.T) {
	var got string
	p := providerFunc(func(text string) (string, error) {
		got = text
		return "ok", nil
	})
	long := make([]rune, maxTextRunes+50)
	for i := range long {
		long[i] = 'ñ'
	}
	NewClient([]Provider{p}, Options{}, logger.Discard()).Translate(context.Background(), string(long), "es", "en")
	assert.Len(t, []rune(got), maxTextRunes)
}

type providerFunc func(text string) (string, error)

func (providerFunc) Name() string { return "func" }

func (f providerFunc) Translate(_ context.Context, text, _, _ string) (string, error) {
	return f(text)
}

func TestRapidAPIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "example.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))

		var body rapidRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, rapidRequest{From: "es", To: "en", Text: "Buenos días"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"trans":"Good morning","source_language_code":"es"}`))
	}))
	defer srv.Close()

	p := NewRapidAPIProvider("example.p.rapidapi.com", "secret", 5*time.Second).WithEndpoint(srv.URL)
	out, err := p.Translate(context.Background(), "Buenos días", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "Good morning", out)
}

func TestRapidAPIProviderErrors(t *testing.T) {
	_, err := NewRapidAPIProvider("h", "", time.Second).Translate(context.Background(), "x", "es", "en")
	assert.ErrorIs(t, err, ErrMissingKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err = NewRapidAPIProvider("h", "k", time.Second).WithEndpoint(srv.URL).Translate(context.Background(), "x", "es", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGoogleFreeProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "es", q.Get("sl"))
		assert.Equal(t, "en", q.Get("tl"))
		assert.Equal(t, "Hola. Adiós.", q.Get("q"))
		_, _ = w.Write([]byte(`[[["Hello. ","Hola. ",null,null,10],["Goodbye.","Adiós.",null,null,10]],null,"es"]`))
	}))
	defer srv.Close()

	p := NewGoogleFreeProvider(5 * time.Second).WithEndpoint(srv.URL)
	out, err := p.Translate(context.Background(), "Hola. Adiós.", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "Hello. Goodbye.", out)
}

func TestParseGoogleTranslateResponse(t *testing.T) {
	_, err := parseGoogleTranslateResponse([]byte(`[]`))
	assert.Error(t, err)

	_, err = parseGoogleTranslateResponse([]byte(`["nope"]`))
	assert.Error(t, err)

	_, err = parseGoogleTranslateResponse([]byte(`not json`))
	assert.Error(t, err)
}

func TestPrompt(t *testing.T) {
	p := Prompt("La casa", "es", "en")
	assert.Contains(t, p, "Spanish")
	assert.Contains(t, p, "English")
	assert.Contains(t, p, "La casa")
	assert.Equal(t, "xx", LanguageName("xx"))
}
