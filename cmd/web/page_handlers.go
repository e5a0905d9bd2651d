package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maber00/pixelabril/internal/httpx"
	mw "github.com/maber00/pixelabril/internal/middleware"
)

func (a *app) home(w http.ResponseWriter, r *http.Request) {
	a.renderer.render(w, r, http.StatusOK, "home", a.pages.Home(mw.Lang(r)))
}

func (a *app) studio(w http.ResponseWriter, r *http.Request) {
	data, ok := a.pages.Studio(mw.Lang(r), chi.URLParam(r, "id"))
	if !ok {
		a.notFound(w, r)
		return
	}
	a.renderer.render(w, r, http.StatusOK, "studio", data)
}

func (a *app) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		httpx.Fail(w, r, httpx.NotFound("resource"))
		return
	}
	a.renderer.render(w, r, http.StatusNotFound, "notfound", a.pages.NotFound(r.URL.Path))
}
