package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maber00/pixelabril/internal/lang"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()
	cases := map[string]lang.Language{
		"CO": lang.Spanish,
		"mx": lang.Spanish,
		"BR": lang.Spanish,
		"ES": lang.Spanish,
		"CN": lang.Chinese,
		"SG": lang.Chinese,
		"US": lang.English,
		"FR": lang.English,
		"":   lang.English,
		" ":  lang.English,
	}
	for country, want := range cases {
		assert.Equal(t, want, c.Classify(country), "country %q", country)
	}
}

func TestClassifySpanishGroupWins(t *testing.T) {
	c := NewClassifier([]string{"SG"}, []string{"SG", "CN"})
	assert.Equal(t, lang.Spanish, c.Classify("SG"))
	assert.Equal(t, GroupSpanish, c.Group("SG"))
	assert.Equal(t, GroupChinese, c.Group("CN"))
	assert.Equal(t, "", c.Group("DE"))
}

func TestClassifyBrowserLocale(t *testing.T) {
	c := DefaultClassifier()
	assert.Equal(t, lang.Chinese, c.ClassifyBrowserLocale("zh-CN"))
	assert.Equal(t, lang.Chinese, c.ClassifyBrowserLocale("zh-Hant-TW"))
	assert.Equal(t, lang.Spanish, c.ClassifyBrowserLocale("es-MX"))
	assert.Equal(t, lang.English, c.ClassifyBrowserLocale("fr-FR"))
	assert.Equal(t, lang.English, c.ClassifyBrowserLocale("en"))
	assert.Equal(t, lang.Spanish, c.ClassifyBrowserLocale(""))
}

func TestPrimaryLocale(t *testing.T) {
	assert.Equal(t, "zh-CN", PrimaryLocale("zh-CN,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "es-MX", PrimaryLocale("en;q=0.5, es-MX"))
	assert.Equal(t, "", PrimaryLocale(""))
	assert.Equal(t, "", PrimaryLocale("*"))
	assert.Equal(t, "zh-TW", PrimaryLocale("*, zh-TW;q=0.5"))
}

func TestResolveCountry(t *testing.T) {
	var gotKey, gotIP string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("apiKey")
		gotIP = r.URL.Query().Get("ip")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"181.49.1.1","country_code2":"co","country_name":"Colombia"}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, "secret", time.Second)
	country, err := r.ResolveCountry(context.Background(), "181.49.1.1")
	require.NoError(t, err)
	assert.Equal(t, "CO", country)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "181.49.1.1", gotIP)
}

func TestResolveCountryOmitsPrivateIP(t *testing.T) {
	var hasIP bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasIP = r.URL.Query().Has("ip")
		_, _ = w.Write([]byte(`{"country_code2":"US"}`))
	}))
	defer srv.Close()

	country, err := NewResolver(srv.URL, "k", time.Second).ResolveCountry(context.Background(), "10.0.0.4")
	require.NoError(t, err)
	assert.Equal(t, "US", country)
	assert.False(t, hasIP)
}

func TestResolveCountryMissingCountry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ip":"1.1.1.1"}`))
	}))
	defer srv.Close()

	country, err := NewResolver(srv.URL, "k", time.Second).ResolveCountry(context.Background(), "1.1.1.1")
	require.NoError(t, err)
	assert.Equal(t, "", country)
}

func TestResolveCountryFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota", http.StatusTooManyRequests)
		}))
		defer srv.Close()
		_, err := NewResolver(srv.URL, "k", time.Second).ResolveCountry(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("decode", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()
		_, err := NewResolver(srv.URL, "k", time.Second).ResolveCountry(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		start := time.Now()
		_, err := NewResolver(srv.URL, "k", 50*time.Millisecond).ResolveCountry(context.Background(), "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := NewResolver("", "", 0).ResolveCountry(context.Background(), "1.1.1.1")
		assert.ErrorIs(t, err, ErrDisabled)
	})
}
