// Package detect decides which language a first-time visitor should see.
package detect

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/geo"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/preference"
)

const metricNamespace = "github.com/maber00/pixelabril/internal/detect"

// Source names the step that produced a detection result.
type Source string

const (
	SourcePreference Source = "preference"
	SourceCache      Source = "cache"
	SourceGeo        Source = "geo"
	SourceBrowser    Source = "browser"
)

// Input carries the request facts detection may use.
type Input struct {
	IP             string
	AcceptLanguage string
}

// Detector chains the saved preference, today's cached detection, the IP
// lookup and the browser locale.
type Detector struct {
	resolver   geo.CountryResolver
	classifier *geo.Classifier
	logger     *zap.Logger
	detections metric.Int64Counter
}

// New builds a Detector. A nil classifier uses the default country table.
func New(resolver geo.CountryResolver, classifier *geo.Classifier, logger *zap.Logger) *Detector {
	if classifier == nil {
		classifier = geo.DefaultClassifier()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Detector{resolver: resolver, classifier: classifier, logger: logger}
	counter, err := otel.GetMeterProvider().Meter(metricNamespace).Int64Counter(
		"pixel.language.detections",
		metric.WithDescription("Language detections by resolving step"),
	)
	if err != nil {
		logger.Warn("detect: unable to register detection metric", zap.Error(err))
	}
	d.detections = counter
	return d
}

// Detect resolves the visitor's language. The first step with an answer wins:
// saved preference, today's detection, the geolocated country, then the
// browser locale when the lookup failed outright. Fresh lookups are cached
// for the rest of the day.
func (d *Detector) Detect(ctx context.Context, store *preference.Store, in Input) (lang.Language, Source) {
	l, src := d.detect(ctx, store, in)
	if d.detections != nil {
		d.detections.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", string(src)),
			attribute.String("lang", l.String()),
		))
	}
	return l, src
}

func (d *Detector) detect(ctx context.Context, store *preference.Store, in Input) (lang.Language, Source) {
	if l, ok := store.Preference(ctx); ok {
		return l, SourcePreference
	}
	if l, ok := store.TodayDetection(ctx); ok {
		return l, SourceCache
	}

	country, err := d.lookup(ctx, in.IP)
	if err == nil {
		l := d.classifier.Classify(country)
		d.save(ctx, store, l, country)
		d.logger.Debug("language detected from ip",
			zap.String("lang", l.String()),
			zap.String("country", country),
		)
		return l, SourceGeo
	}

	locale := geo.PrimaryLocale(in.AcceptLanguage)
	l := d.classifier.ClassifyBrowserLocale(locale)
	d.logger.Warn("geo lookup failed, using browser locale",
		zap.Error(err),
		zap.String("locale", locale),
		zap.String("lang", l.String()),
	)
	d.save(ctx, store, l, "")
	return l, SourceBrowser
}

func (d *Detector) lookup(ctx context.Context, ip string) (string, error) {
	if d.resolver == nil {
		return "", geo.ErrDisabled
	}
	return d.resolver.ResolveCountry(ctx, ip)
}

func (d *Detector) save(ctx context.Context, store *preference.Store, l lang.Language, country string) {
	if err := store.SaveTodayDetection(ctx, l, country); err != nil {
		d.logger.Debug("detection not cached", zap.Error(err))
	}
}
