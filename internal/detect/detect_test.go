package detect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maber00/pixelabril/internal/geo"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/preference"
)

type fakeResolver struct {
	country string
	err     error
	calls   int
}

func (f *fakeResolver) ResolveCountry(context.Context, string) (string, error) {
	f.calls++
	return f.country, f.err
}

func newStore(now time.Time) *preference.Store {
	return preference.NewStore(preference.NewMemoryBackend(), preference.WithClock(func() time.Time { return now }))
}

func TestDetectPreferenceWins(t *testing.T) {
	ctx := context.Background()
	store := newStore(time.Now())
	require.NoError(t, store.SetPreference(ctx, lang.Chinese))
	require.NoError(t, store.SaveTodayDetection(ctx, lang.English, "US"))
	r := &fakeResolver{country: "CO"}

	got, src := New(r, nil, nil).Detect(ctx, store, Input{})
	assert.Equal(t, lang.Chinese, got)
	assert.Equal(t, SourcePreference, src)
	assert.Zero(t, r.calls)
}

func TestDetectTodayCacheSkipsLookup(t *testing.T) {
	ctx := context.Background()
	store := newStore(time.Now())
	require.NoError(t, store.SaveTodayDetection(ctx, lang.English, "US"))
	r := &fakeResolver{country: "CO"}

	got, src := New(r, nil, nil).Detect(ctx, store, Input{})
	assert.Equal(t, lang.English, got)
	assert.Equal(t, SourceCache, src)
	assert.Zero(t, r.calls)
}

func TestDetectStaleCacheTriggersLookup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := preference.NewStore(preference.NewMemoryBackend(), preference.WithClock(func() time.Time { return now }))
	require.NoError(t, store.SaveTodayDetection(ctx, lang.English, "US"))
	now = now.Add(24 * time.Hour)
	r := &fakeResolver{country: "TW"}

	got, src := New(r, nil, nil).Detect(ctx, store, Input{})
	assert.Equal(t, lang.Chinese, got)
	assert.Equal(t, SourceGeo, src)
	assert.Equal(t, 1, r.calls)
}

func TestDetectGeoSavesRecord(t *testing.T) {
	ctx := context.Background()
	store := newStore(time.Now())
	r := &fakeResolver{country: "MX"}
	d := New(r, geo.DefaultClassifier(), nil)

	got, src := d.Detect(ctx, store, Input{IP: "189.1.1.1", AcceptLanguage: "zh-CN"})
	assert.Equal(t, lang.Spanish, got)
	assert.Equal(t, SourceGeo, src)

	rec, ok := store.Detection(ctx)
	require.True(t, ok)
	assert.Equal(t, "MX", rec.Country)
	assert.Equal(t, store.Today(), rec.Date)

	_, src = d.Detect(ctx, store, Input{})
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, 1, r.calls)
}

func TestDetectMissingCountryIsEnglish(t *testing.T) {
	store := newStore(time.Now())
	got, src := New(&fakeResolver{}, nil, nil).Detect(context.Background(), store, Input{AcceptLanguage: "es-MX"})
	assert.Equal(t, lang.English, got)
	assert.Equal(t, SourceGeo, src)
}

func TestDetectFailureFallsBackToBrowser(t *testing.T) {
	cases := []struct {
		accept string
		want   lang.Language
	}{
		{"es-MX,es;q=0.9", lang.Spanish},
		{"zh-CN", lang.Chinese},
		{"de-DE", lang.English},
		{"", lang.Spanish},
	}
	for _, tc := range cases {
		store := newStore(time.Now())
		r := &fakeResolver{err: geo.ErrTimeout}
		got, src := New(r, nil, nil).Detect(context.Background(), store, Input{AcceptLanguage: tc.accept})
		assert.Equal(t, tc.want, got, "accept %q", tc.accept)
		assert.Equal(t, SourceBrowser, src)

		rec, ok := store.Detection(context.Background())
		require.True(t, ok)
		assert.Equal(t, tc.want, rec.Language)
		assert.Equal(t, "", rec.Country)
	}
}

func TestDetectWithoutResolver(t *testing.T) {
	got, src := New(nil, nil, nil).Detect(context.Background(), newStore(time.Now()), Input{AcceptLanguage: "en-US"})
	assert.Equal(t, lang.English, got)
	assert.Equal(t, SourceBrowser, src)
}

func TestDetectToleratesStoreFailures(t *testing.T) {
	store := preference.NewStore(brokenBackend{})
	got, src := New(&fakeResolver{country: "CN"}, nil, nil).Detect(context.Background(), store, Input{})
	assert.Equal(t, lang.Chinese, got)
	assert.Equal(t, SourceGeo, src)
}

type brokenBackend struct{}

var errBroken = errors.New("storage unavailable")

func (brokenBackend) Get(context.Context, string) (string, error) { return "", errBroken }
func (brokenBackend) Set(context.Context, string, string) error   { return errBroken }
func (brokenBackend) Delete(context.Context, ...string) error     { return errBroken }
