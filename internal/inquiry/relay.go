package inquiry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maber00/pixelabril/internal/lang"
)

const defaultRelayTimeout = 10 * time.Second

// ErrRelayDisabled is returned when no endpoint is configured for a form.
var ErrRelayDisabled = errors.New("inquiry: relay disabled")

// Submission is what gets relayed by email.
type Submission struct {
	Inquiry  Inquiry
	Subject  string
	Language lang.Language
}

// Relay delivers a submission to the site owner.
type Relay interface {
	Send(ctx context.Context, s Submission) error
}

// FormspreeRelay posts submissions to Formspree form endpoints.
type FormspreeRelay struct {
	endpoints map[string]string
	http      *http.Client
}

// NewFormspreeRelay maps form kinds to endpoints. A zero timeout uses 10s.
func NewFormspreeRelay(endpoints map[string]string, timeout time.Duration) *FormspreeRelay {
	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}
	eps := make(map[string]string, len(endpoints))
	for k, v := range endpoints {
		if v = strings.TrimSpace(v); v != "" {
			eps[strings.ToLower(k)] = v
		}
	}
	return &FormspreeRelay{
		endpoints: eps,
		http:      &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient swaps the underlying HTTP client (primarily for tests).
func (f *FormspreeRelay) SetHTTPClient(c *http.Client) {
	if c != nil {
		f.http = c
	}
}

func (f *FormspreeRelay) endpoint(form string) string {
	if ep, ok := f.endpoints[form]; ok {
		return ep
	}
	return f.endpoints[FormReservation]
}

// Send posts the inquiry as a urlencoded form.
func (f *FormspreeRelay) Send(ctx context.Context, s Submission) error {
	if f == nil {
		return ErrRelayDisabled
	}
	ep := f.endpoint(s.Inquiry.FormKind())
	if ep == "" {
		return ErrRelayDisabled
	}

	form := url.Values{}
	for k, v := range s.Inquiry.Fields() {
		form.Set(k, v)
	}
	form.Set("_replyto", s.Inquiry.Email)
	form.Set("_subject", s.Subject)
	form.Set("_language", s.Language.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("inquiry: relay request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("inquiry: relay status %d: %s", resp.StatusCode, drainError(resp.Body))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	return nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
