package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/maber00/pixelabril/internal/catalog"
	"github.com/maber00/pixelabril/internal/i18n"
	"github.com/maber00/pixelabril/internal/lang"
	"github.com/maber00/pixelabril/internal/observability"
)

var markdownPolicy = newMarkdownPolicy()

func newMarkdownPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// renderer parses the layout once per page so every page may define its own
// "content" block. In dev mode templates are reparsed on each request.
type renderer struct {
	dir     string
	devMode bool
	funcs   template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

func newRenderer(dir string, devMode bool, bundle *i18n.Bundle, cat *catalog.Catalog) (*renderer, error) {
	r := &renderer{dir: dir, devMode: devMode, funcs: templateFuncs(bundle, cat)}
	pages, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func templateFuncs(bundle *i18n.Bundle, cat *catalog.Catalog) template.FuncMap {
	return template.FuncMap{
		"t": func(l lang.Language, key string) string { return bundle.T(l, key) },
		"tv": func(l lang.Language, key string, vars map[string]any) string {
			return bundle.TVars(l, key, vars)
		},
		"tarr": func(l lang.Language, key string) []string { return bundle.Array(l, key) },
		"dict": dict,
		"inc":  func(i int) int { return i + 1 },
		"price": func(l lang.Language, cop int64) string {
			return cat.LocalizedPrice(cop, l)
		},
		"localize": func(path string, l lang.Language) string { return lang.Localize(path, l) },
		"md":       markdown,
	}
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

// markdown renders src and strips anything the UGC policy rejects.
func markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(markdownPolicy.SanitizeBytes(buf.Bytes()))
}

func (r *renderer) parse() (map[string]*template.Template, error) {
	var shared []string
	var pages []string
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) == "pages" {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page templates found under %s", r.dir)
	}
	root, err := template.New("_root").Funcs(r.funcs).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		clone, err := root.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(p); err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(filepath.Base(p), ".tmpl")] = clone
	}
	return out, nil
}

func (r *renderer) lookup(page string) (*template.Template, error) {
	if r.devMode {
		pages, err := r.parse()
		if err != nil {
			return nil, fmt.Errorf("template parse error: %w", err)
		}
		r.mu.Lock()
		r.pages = pages
		r.mu.Unlock()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("template %q not found", page)
	}
	return t, nil
}

// render executes the base layout for page into a buffer so template errors
// never produce half-written responses.
func (r *renderer) render(w http.ResponseWriter, req *http.Request, status int, page string, data any) {
	logger := observability.FromContext(req.Context())
	t, err := r.lookup(page)
	if err != nil {
		logger.Error("template lookup failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("template exec failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
