package preference

import (
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// VisitorCookie names the cookie carrying the anonymous visitor ID.
const VisitorCookie = "pixel_visitor"

// Provider yields the Store bound to one request.
type Provider interface {
	Store(w http.ResponseWriter, r *http.Request) *Store
}

// CookieProvider keeps records in cookies on the visitor's browser.
type CookieProvider struct {
	Cookie       CookieOptions
	StoreOptions []Option
}

func (p CookieProvider) Store(w http.ResponseWriter, r *http.Request) *Store {
	return NewStore(NewCookieBackend(w, r, p.Cookie), p.StoreOptions...)
}

// DefaultMaxVisitors caps MemoryProvider when MaxVisitors is unset.
const DefaultMaxVisitors = 10000

// MemoryProvider keeps records in process memory, one backend per visitor.
// Records do not survive a restart. Once MaxVisitors backends exist the
// oldest visitor is forgotten.
type MemoryProvider struct {
	Cookie       CookieOptions
	StoreOptions []Option
	MaxVisitors  int

	mu       sync.Mutex
	visitors map[string]*MemoryBackend
	order    []string
}

func (p *MemoryProvider) Store(w http.ResponseWriter, r *http.Request) *Store {
	id := VisitorID(w, r, p.Cookie)
	p.mu.Lock()
	if p.visitors == nil {
		p.visitors = map[string]*MemoryBackend{}
	}
	b, ok := p.visitors[id]
	if !ok {
		limit := p.MaxVisitors
		if limit <= 0 {
			limit = DefaultMaxVisitors
		}
		for len(p.order) >= limit {
			delete(p.visitors, p.order[0])
			p.order = p.order[1:]
		}
		b = NewMemoryBackend()
		p.visitors[id] = b
		p.order = append(p.order, id)
	}
	p.mu.Unlock()
	return NewStore(b, p.StoreOptions...)
}

// RedisProvider keeps records in a Redis hash per visitor.
type RedisProvider struct {
	Client       redis.Cmdable
	Prefix       string
	TTL          time.Duration
	Cookie       CookieOptions
	StoreOptions []Option
}

func (p RedisProvider) Store(w http.ResponseWriter, r *http.Request) *Store {
	id := VisitorID(w, r, p.Cookie)
	return NewStore(NewRedisBackend(p.Client, p.Prefix, id, p.TTL), p.StoreOptions...)
}

// VisitorID returns the visitor ID from the request cookie, issuing a new
// ULID cookie when none or an invalid one is present.
func VisitorID(w http.ResponseWriter, r *http.Request, opts CookieOptions) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := ulid.ParseStrict(c.Value); err == nil {
			return id.String()
		}
	}
	id := ulid.Make().String()
	path := opts.Path
	if path == "" {
		path = "/"
	}
	cookie := &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     path,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.TTL > 0 {
		cookie.MaxAge = int(opts.TTL / time.Second)
	}
	http.SetCookie(w, cookie)
	// later reads in this request see the same visitor
	r.AddCookie(&http.Cookie{Name: VisitorCookie, Value: id})
	return id
}

// HasPreferenceCookie reports whether the request carries the preference
// cookie, whatever its value.
func HasPreferenceCookie(r *http.Request) bool {
	_, err := r.Cookie(PreferenceKey)
	return err == nil
}
