package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/maber00/pixelabril/internal/catalog"
	"github.com/maber00/pixelabril/internal/config"
	"github.com/maber00/pixelabril/internal/detect"
	"github.com/maber00/pixelabril/internal/geo"
	"github.com/maber00/pixelabril/internal/handlers"
	"github.com/maber00/pixelabril/internal/i18n"
	"github.com/maber00/pixelabril/internal/inquiry"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/observability"
	"github.com/maber00/pixelabril/internal/preference"
)

type staticResolver struct{ country string }

func (s staticResolver) ResolveCountry(context.Context, string) (string, error) {
	return s.country, nil
}

type recordingRelay struct {
	mu   sync.Mutex
	sent []inquiry.Submission
}

func (r *recordingRelay) Send(_ context.Context, s inquiry.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
	return nil
}

// newTestRouter builds the application router with templates and locales
// from the repository and a resolver that always answers country.
func newTestRouter(t *testing.T, country string) (http.Handler, *recordingRelay) {
	t.Helper()
	bundle, err := i18n.Load("../../locales", lang.Default, nil)
	if err != nil {
		t.Fatalf("load i18n: %v", err)
	}
	site := config.DefaultSite()
	cat := catalog.New(site, bundle)
	rend, err := newRenderer("../../templates", true, bundle, cat)
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	relay := &recordingRelay{}
	a := &app{
		logger:       observability.NoopLogger(),
		publicDir:    "../../public",
		maxRedirects: 2,
		bundle:       bundle,
		catalog:      cat,
		pages:        handlers.NewPages(site, cat, bundle),
		renderer:     rend,
		inquiries:    inquiry.NewService(relay, bundle, site),
		prefs:        preference.CookieProvider{},
		detector:     detect.New(staticResolver{country: country}, geo.DefaultClassifier(), nil),
	}
	return a.routes(), relay
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealthzOK(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("expected body 'ok', got %q", got)
	}
}

func TestHomeRendersSpanishForSpanishCountry(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`<html lang="es-CO">`, `hreflang="zh"`, `hreflang="x-default"`, "Estudio Jade", "$2.650.000", "application/ld+json"} {
		if !strings.Contains(body, want) {
			t.Errorf("home body missing %q", want)
		}
	}
	if c := cookieNamed(rec, preference.DetectionKey); c == nil {
		t.Fatalf("expected the detection record cookie")
	}
	if got := rec.Header().Get("Content-Language"); got != "es" {
		t.Fatalf("expected Content-Language es, got %q", got)
	}
}

func TestHomeRedirectsChineseVisitor(t *testing.T) {
	srv, _ := newTestRouter(t, "TW")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/zh" {
		t.Fatalf("expected Location /zh, got %q", loc)
	}

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/zh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on /zh, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<html lang="zh-CN">`) {
		t.Fatalf("expected chinese layout")
	}
}

func TestStudioPageEnglish(t *testing.T) {
	srv, _ := newTestRouter(t, "US")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/en/estudios/jade", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Jade Studio", "$602 USD", "1 of 4", `href="https://pixelliving.co/en/estudios/jade"`} {
		if !strings.Contains(body, want) {
			t.Errorf("studio body missing %q", want)
		}
	}
}

func TestUnknownStudioIsNotFound(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/estudios/penthouse", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Página no encontrada") {
		t.Fatalf("expected localized not found page")
	}

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	if rec.Code != http.StatusNotFound || !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected JSON 404, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestLanguageAPISetsPreference(t *testing.T) {
	srv, _ := newTestRouter(t, "CN")
	req := httptest.NewRequest(http.MethodPost, "/api/language", strings.NewReader(`{"lang":"en","path":"/zh/estudios/jade"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	var resp languageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Lang != "en" || resp.Redirect != "/en/estudios/jade" {
		t.Fatalf("unexpected response %+v", resp)
	}
	pref := cookieNamed(rec, preference.PreferenceKey)
	if pref == nil || pref.Value != "en" {
		t.Fatalf("expected preference cookie, got %+v", pref)
	}

	// an explicit choice disables detection on later visits to "/"
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(pref)
	rec = do(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected no redirect with preference, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/language", nil)
	req.AddCookie(pref)
	rec = do(srv, req)
	var state languageState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Preference != "en" || state.Default != "es" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestLanguageAPIRejectsUnsupported(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	form := url.Values{"lang": {"fr"}}
	req := httptest.NewRequest(http.MethodPost, "/api/language", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"invalid_language"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestLanguageAPIClear(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	rec := do(srv, httptest.NewRequest(http.MethodDelete, "/api/language", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	for _, name := range []string{preference.PreferenceKey, preference.DetectionKey} {
		c := cookieNamed(rec, name)
		if c == nil || c.MaxAge >= 0 {
			t.Fatalf("expected expired %s cookie, got %+v", name, c)
		}
	}
}

func TestInquiryFormSubmission(t *testing.T) {
	srv, relay := newTestRouter(t, "CO")
	form := url.Values{
		"nombre":       {"Ana María"},
		"email":        {"ana@example.com"},
		"telefono":     {"3001234567"},
		"expectativas": {"Busco un lugar tranquilo para trabajar."},
		"lang":         {"en"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/inquiries", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(srv, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body=%s", rec.Code, rec.Body.String())
	}
	var res inquiry.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.ID) != 26 || !res.EmailSent || !strings.HasPrefix(res.WhatsAppURL, "https://wa.me/") {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(relay.sent) != 1 || relay.sent[0].Inquiry.Mensaje != "Busco un lugar tranquilo para trabajar." {
		t.Fatalf("expected relayed inquiry with aliased message, got %+v", relay.sent)
	}
	if relay.sent[0].Language != lang.English {
		t.Fatalf("expected english submission, got %s", relay.sent[0].Language)
	}
}

func TestInquiryValidationErrors(t *testing.T) {
	srv, relay := newTestRouter(t, "CO")
	req := httptest.NewRequest(http.MethodPost, "/api/inquiries", strings.NewReader(`{"nombre":"Ana","email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://pixelliving.co/en/estudios/jade")
	rec := do(srv, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d; body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "validation_failed" {
		t.Fatalf("unexpected error code %q", body.Error)
	}
	if got := body.Fields["email"]; got != "Enter a valid email address (e.g. john@gmail.com)" {
		t.Fatalf("expected english email message, got %q", got)
	}
	if len(relay.sent) != 0 {
		t.Fatalf("invalid inquiry must not be relayed")
	}
}

func TestStudioGalleryAPI(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/api/studios/ambar/gallery", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var g catalog.Gallery
	if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.StudioID != "ambar" || len(g.Images) != 4 || g.PerView.Desktop != 8 {
		t.Fatalf("unexpected gallery %+v", g)
	}

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/api/studios/nope/gallery", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestInquiryLanguageFromAcceptLanguage(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	req := httptest.NewRequest(http.MethodPost, "/api/inquiries", strings.NewReader(`{"nombre":"Li","email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.5")
	rec := do(srv, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d; body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body.Fields["email"]; got != "请输入有效的电子邮箱（例如 li@gmail.com）" {
		t.Fatalf("expected chinese email message, got %q", got)
	}
}

func TestStudioGalleryNavigation(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/api/studios/ambar/gallery?image=3&offset=0&dir=1&width=400", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var g catalog.Gallery
	if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Position == nil || g.Position.Image != 0 || g.Position.Offset != 0 {
		t.Fatalf("expected wrap to first image with pinned strip, got %+v", g.Position)
	}
	if g.MaxOffset != (catalog.PerViewConfig{}) {
		t.Fatalf("four images never scroll, got %+v", g.MaxOffset)
	}

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/api/studios/ambar/gallery?dir=2", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range dir, got %d", rec.Code)
	}
}

func TestTrailingSlashLanguageRoot(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	for _, path := range []string{"/en/", "/zh/"} {
		rec := do(srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusMovedPermanently {
			t.Fatalf("%s: expected 301, got %d", path, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != strings.TrimSuffix(path, "/") {
			t.Fatalf("%s: unexpected location %q", path, loc)
		}
	}

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/en/?ref=ig", nil))
	if loc := rec.Header().Get("Location"); loc != "/en?ref=ig" {
		t.Fatalf("expected query preserved, got %q", loc)
	}

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/en", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Language") != "en" {
		t.Fatalf("expected english root, got %d %q", rec.Code, rec.Header().Get("Content-Language"))
	}
}

func TestAssetsServedWithETag(t *testing.T) {
	srv, _ := newTestRouter(t, "CO")
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}
	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	if rec := do(srv, req); rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rec.Code)
	}
}
