package inquiry

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/config"
	"github.com/maber00/pixelabril/internal/lang"
)

// Service handles inquiry submissions.
type Service struct {
	relay    Relay
	tr       Translator
	whatsapp config.WhatsAppConfig
	siteHost string
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone used for "today" and message timestamps.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the relay and site contact details. relay may be nil.
func NewService(relay Relay, tr Translator, site config.Site, opts ...ServiceOption) *Service {
	s := &Service{
		relay:    relay,
		tr:       tr,
		whatsapp: site.WhatsApp,
		now:      time.Now,
		loc:      time.UTC,
		logger:   zap.NewNop(),
	}
	if u, err := url.Parse(site.URL); err == nil {
		s.siteHost = u.Host
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sanitizes and validates in, relays it, and returns the WhatsApp
// link. A relay failure is logged and reported through EmailSent only.
func (s *Service) Submit(ctx context.Context, in Inquiry, l lang.Language) (Result, error) {
	in = in.Sanitize()
	now := s.now().In(s.loc)
	if err := Validate(in, l, s.tr, now.Format(dateLayout)); err != nil {
		return Result{}, err
	}

	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	logger := s.logger.With(zap.String("inquiryID", id), zap.String("form", in.FormKind()))

	sent := false
	if s.relay != nil {
		err := s.relay.Send(ctx, Submission{
			Inquiry:  in,
			Subject:  s.tr.TVars(l, "inquiry.subject", map[string]any{"name": in.Nombre}),
			Language: l,
		})
		switch {
		case err == nil:
			sent = true
		case errors.Is(err, ErrRelayDisabled):
			logger.Debug("inquiry relay disabled")
		default:
			logger.Warn("inquiry relay failed", zap.Error(err))
		}
	}

	msg := WhatsAppMessage(in, l, s.tr, now, s.siteHost)
	logger.Info("inquiry accepted", zap.Bool("emailSent", sent))
	return Result{
		ID:          id,
		EmailSent:   sent,
		WhatsAppURL: WhatsAppLink(s.whatsapp.BaseURL, s.whatsapp.Number, msg),
	}, nil
}

// ContactLink returns a WhatsApp link with one of the configured default
// messages ("general", "reserva", "contacto").
func (s *Service) ContactLink(kind string) string {
	msg := s.whatsapp.DefaultMessages[kind]
	if msg == "" {
		msg = s.whatsapp.DefaultMessages["general"]
	}
	return WhatsAppLink(s.whatsapp.BaseURL, s.whatsapp.Number, msg)
}
