package main

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/catalog"
	"github.com/maber00/pixelabril/internal/httpx"
	"github.com/maber00/pixelabril/internal/inquiry"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/observability"
	"github.com/maber00/pixelabril/internal/preference"
)

const maxBodyBytes = 64 << 10

type languageRequest struct {
	Lang string `json:"lang"`
	Path string `json:"path"`
}

type languageResponse struct {
	Lang     string `json:"lang"`
	Redirect string `json:"redirect"`
}

type languageState struct {
	Preference string                `json:"preference,omitempty"`
	Detection  *preference.Detection `json:"detection,omitempty"`
	Default    string                `json:"default"`
}

// inquiryRequest accepts the form fields plus the legacy "expectativas" alias
// for the message and the page language.
type inquiryRequest struct {
	inquiry.Inquiry
	Expectativas string `json:"expectativas"`
	Lang         string `json:"lang"`
}

func (a *app) getLanguage(w http.ResponseWriter, r *http.Request) {
	store := a.prefs.Store(w, r)
	ctx := r.Context()
	state := languageState{Default: lang.Default.String()}
	if l, ok := store.Preference(ctx); ok {
		state.Preference = l.String()
	}
	if d, ok := store.Detection(ctx); ok {
		state.Detection = &d
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (a *app) setLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeRequest(w, r, &req, func(form url.Values) {
		req.Lang = form.Get("lang")
		req.Path = form.Get("path")
	}); err != nil {
		httpx.Fail(w, r, httpx.BadRequest(err.Error()))
		return
	}
	l, ok := lang.Parse(req.Lang)
	if !ok {
		httpx.Fail(w, r, httpx.UnsupportedLanguage())
		return
	}
	path := req.Path
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		path = "/"
	}

	store := a.prefs.Store(w, r)
	if err := store.SetPreference(r.Context(), l); err != nil {
		observability.FromContext(r.Context()).Error("failed to store language preference", zap.Error(err))
		httpx.Fail(w, r, httpx.Unavailable("preference_unavailable", "could not store preference"))
		return
	}
	httpx.JSON(w, http.StatusOK, languageResponse{Lang: l.String(), Redirect: lang.Localize(path, l)})
}

func (a *app) clearLanguage(w http.ResponseWriter, r *http.Request) {
	if err := a.prefs.Store(w, r).Clear(r.Context()); err != nil {
		observability.FromContext(r.Context()).Error("failed to clear language records", zap.Error(err))
		httpx.Fail(w, r, httpx.Unavailable("preference_unavailable", "could not clear preference"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) createInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquiryRequest
	if err := decodeRequest(w, r, &req, func(form url.Values) {
		req.Form = form.Get("form")
		req.Nombre = form.Get("nombre")
		req.Email = form.Get("email")
		req.Telefono = form.Get("telefono")
		req.Fecha = form.Get("fecha")
		req.Estadia = form.Get("estadia")
		req.Personas = form.Get("personas")
		req.Mensaje = form.Get("mensaje")
		req.Estudio = form.Get("estudio")
		req.Expectativas = form.Get("expectativas")
		req.Lang = form.Get("lang")
	}); err != nil {
		httpx.Fail(w, r, httpx.BadRequest(err.Error()))
		return
	}
	in := req.Inquiry
	if in.Mensaje == "" {
		in.Mensaje = req.Expectativas
	}

	l := a.requestLanguage(r, req.Lang)
	res, err := a.inquiries.Submit(r.Context(), in, l)
	if err != nil {
		var vErr *inquiry.ValidationError
		if errors.As(err, &vErr) {
			httpx.Fail(w, r, httpx.ValidationFailed(vErr.Fields()))
			return
		}
		observability.FromContext(r.Context()).Error("inquiry submission failed", zap.Error(err))
		httpx.Fail(w, r, httpx.Internal("could not submit inquiry"))
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (a *app) studioGallery(w http.ResponseWriter, r *http.Request) {
	g, ok := a.catalog.Gallery(chi.URLParam(r, "id"))
	if !ok {
		httpx.Fail(w, r, httpx.NotFound("studio"))
		return
	}
	q := r.URL.Query()
	if q.Has("dir") {
		dir, err := strconv.Atoi(q.Get("dir"))
		if err != nil || dir < -1 || dir > 1 {
			httpx.Fail(w, r, httpx.BadRequest("dir must be -1, 0 or 1"))
			return
		}
		from := catalog.Position{Image: queryInt(q, "image"), Offset: queryInt(q, "offset")}
		pos := a.catalog.Navigate(g, from, dir, queryInt(q, "width"))
		g.Position = &pos
	}
	httpx.JSON(w, http.StatusOK, g)
}

// queryInt reads a non-negative integer parameter, 0 when absent or invalid.
func queryInt(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// requestLanguage picks the explicit language field, then the language of the
// referring page, then the best match for Accept-Language.
func (a *app) requestLanguage(r *http.Request, explicit string) lang.Language {
	if l, ok := lang.Parse(explicit); ok {
		return l
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
		return lang.FromPath(ref.Path)
	}
	return a.bundle.Resolve(r.Header.Get("Accept-Language"))
}

// decodeRequest reads a JSON body into v, or hands urlencoded/multipart form
// values to fromForm.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any, fromForm func(url.Values)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(v); err != nil {
			return errors.New("malformed JSON body")
		}
		return nil
	}
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return errors.New("malformed form body")
		}
	} else if err := r.ParseForm(); err != nil {
		return errors.New("malformed form body")
	}
	fromForm(r.Form)
	return nil
}
