package preference

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CookieOptions controls the attributes of cookies written by CookieBackend.
type CookieOptions struct {
	Path   string
	TTL    time.Duration
	Secure bool
}

// CookieBackend stores values as cookies on the current request/response pair.
// Writes are visible to later reads within the same request.
type CookieBackend struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions

	mu      sync.Mutex
	pending map[string]*string
}

// NewCookieBackend binds a backend to one request.
func NewCookieBackend(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieBackend {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieBackend{w: w, r: r, opts: opts, pending: map[string]*string{}}
}

func (c *CookieBackend) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	v, touched := c.pending[key]
	c.mu.Unlock()
	if touched {
		if v == nil {
			return "", ErrNotFound
		}
		return *v, nil
	}
	ck, err := c.r.Cookie(key)
	if err != nil || ck.Value == "" {
		return "", ErrNotFound
	}
	raw, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return "", err
	}
	return raw, nil
}

func (c *CookieBackend) Set(_ context.Context, key, value string) error {
	cookie := &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     c.opts.Path,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.opts.TTL > 0 {
		cookie.MaxAge = int(c.opts.TTL / time.Second)
		cookie.Expires = time.Now().Add(c.opts.TTL)
	}
	http.SetCookie(c.w, cookie)
	c.mu.Lock()
	c.pending[key] = &value
	c.mu.Unlock()
	return nil
}

func (c *CookieBackend) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		http.SetCookie(c.w, &http.Cookie{
			Name:     key,
			Value:    "",
			Path:     c.opts.Path,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   c.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.mu.Lock()
		c.pending[key] = nil
		c.mu.Unlock()
	}
	return nil
}
