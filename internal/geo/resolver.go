package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 5 * time.Second
	// DefaultEndpoint is the ipgeolocation.io lookup URL.
	DefaultEndpoint = "https://api.ipgeolocation.io/ipgeo"

	tracerName = "github.com/maber00/pixelabril/internal/geo"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("geo: lookup disabled")
	// ErrTimeout is returned when the lookup exceeds its deadline.
	ErrTimeout = errors.New("geo: lookup timed out")
)

// CountryResolver maps a client IP to an ISO country code.
type CountryResolver interface {
	ResolveCountry(ctx context.Context, ip string) (string, error)
}

// Resolver calls the IP geolocation API.
type Resolver struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	tracer   trace.Tracer
}

// NewResolver builds a resolver. When apiKey is empty every lookup reports ErrDisabled.
func NewResolver(endpoint, apiKey string, timeout time.Duration) *Resolver {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(apiKey),
		timeout:  timeout,
		http:     &http.Client{},
		tracer:   otel.Tracer(tracerName),
	}
}

// SetHTTPClient swaps the underlying HTTP client (primarily for tests).
func (r *Resolver) SetHTTPClient(c *http.Client) {
	if c != nil {
		r.http = c
	}
}

// Timeout returns the configured lookup deadline.
func (r *Resolver) Timeout() time.Duration { return r.timeout }

type lookupPayload struct {
	IP           string `json:"ip"`
	CountryCode2 string `json:"country_code2"`
	CountryName  string `json:"country_name"`
}

// ResolveCountry looks up the country for ip. A successful response without a
// country yields ("", nil). Timeouts, transport failures, non-2xx statuses and
// undecodable bodies are returned as errors; the caller treats them as an
// absent country.
func (r *Resolver) ResolveCountry(ctx context.Context, ip string) (string, error) {
	if r == nil || r.apiKey == "" {
		return "", ErrDisabled
	}
	ctx, span := r.tracer.Start(ctx, "geo.ResolveCountry")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	country, err := r.lookup(ctx, ip)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("geo.country", country))
	return country, nil
}

func (r *Resolver) lookup(ctx context.Context, ip string) (string, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return "", fmt.Errorf("geo: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", r.apiKey)
	if publicIP(ip) {
		q.Set("ip", ip)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("geo: remote status %d", resp.StatusCode)
	}

	var payload lookupPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err != nil {
		return "", fmt.Errorf("geo: decode response: %w", err)
	}
	return normalizeCountry(payload.CountryCode2), nil
}

// publicIP reports whether ip is worth sending upstream. Private and loopback
// addresses would resolve to the server's own location.
func publicIP(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	return !(addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() || addr.IsLinkLocalUnicast())
}
