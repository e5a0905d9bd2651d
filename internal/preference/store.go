// Package preference persists a visitor's explicit language choice and the
// language detected for them today.
package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/lang"
)

// Storage keys shared with the client-side scripts.
const (
	PreferenceKey = "pixel_language_preference"
	DetectionKey  = "pixel_geo_detected"
)

const dayLayout = "2006-01-02"

// ErrInvalidLanguage is returned when persisting an unsupported language.
var ErrInvalidLanguage = errors.New("preference: unsupported language")

// Detection is the cached outcome of today's automatic detection.
type Detection struct {
	Language lang.Language `json:"language"`
	Country  string        `json:"country"`
	Date     string        `json:"date"`
}

// Store reads and writes the two records on top of a Backend. Read failures
// are logged and reported as absent.
type Store struct {
	backend Backend
	now     func() time.Time
	loc     *time.Location
	logger  *zap.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for the detection date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone defining a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger attaches a logger for storage failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		loc:     time.UTC,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar day in the store's time zone.
func (s *Store) Today() string {
	return s.now().In(s.loc).Format(dayLayout)
}

// Preference returns the saved explicit choice, if any.
func (s *Store) Preference(ctx context.Context) (lang.Language, bool) {
	raw, err := s.backend.Get(ctx, PreferenceKey)
	if err != nil {
		s.logReadError(PreferenceKey, err)
		return "", false
	}
	return lang.Parse(raw)
}

// SetPreference overwrites the explicit choice.
func (s *Store) SetPreference(ctx context.Context, l lang.Language) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, string(l))
	}
	if err := s.backend.Set(ctx, PreferenceKey, l.String()); err != nil {
		return fmt.Errorf("preference: save preference: %w", err)
	}
	return nil
}

// Detection returns the stored detection record regardless of its date.
func (s *Store) Detection(ctx context.Context) (Detection, bool) {
	raw, err := s.backend.Get(ctx, DetectionKey)
	if err != nil {
		s.logReadError(DetectionKey, err)
		return Detection{}, false
	}
	var d Detection
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		s.logger.Debug("preference: discard malformed detection", zap.Error(err))
		return Detection{}, false
	}
	if !d.Language.Valid() {
		return Detection{}, false
	}
	return d, true
}

// TodayDetection returns the detected language only when it was recorded today.
func (s *Store) TodayDetection(ctx context.Context) (lang.Language, bool) {
	d, ok := s.Detection(ctx)
	if !ok || d.Date != s.Today() {
		return "", false
	}
	return d.Language, true
}

// SaveTodayDetection records l and country with today's date.
func (s *Store) SaveTodayDetection(ctx context.Context, l lang.Language, country string) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, string(l))
	}
	payload, err := json.Marshal(Detection{Language: l, Country: country, Date: s.Today()})
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, DetectionKey, string(payload)); err != nil {
		return fmt.Errorf("preference: save detection: %w", err)
	}
	return nil
}

// Clear erases both records.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, PreferenceKey, DetectionKey); err != nil {
		return fmt.Errorf("preference: clear: %w", err)
	}
	return nil
}

func (s *Store) logReadError(key string, err error) {
	if errors.Is(err, ErrNotFound) {
		return
	}
	s.logger.Debug("preference: read failed", zap.String("key", key), zap.Error(err))
}

type ctxKey struct{}

// WithStore stores s on ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's store, or nil.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(ctxKey{}).(*Store)
	return s
}
