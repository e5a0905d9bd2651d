package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/maber00/pixelabril/internal/lang"
)

// Bundle holds one nested dictionary per language.
type Bundle struct {
	dict     map[lang.Language]map[string]any
	fallback lang.Language
	matcher  language.Matcher
	logger   *zap.Logger

	warned sync.Map
}

// Load reads <dir>/<lang>.json for every supported language.
func Load(dir string, fallback lang.Language, logger *zap.Logger) (*Bundle, error) {
	return LoadFS(os.DirFS(dir), fallback, logger)
}

// LoadFS reads <lang>.json files from fsys. The fallback language file is
// required; the others may be absent.
func LoadFS(fsys fs.FS, fallback lang.Language, logger *zap.Logger) (*Bundle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bundle{
		dict:     map[lang.Language]map[string]any{},
		fallback: fallback,
		logger:   logger,
	}
	for _, l := range lang.Supported {
		raw, err := fs.ReadFile(fsys, l.String()+".json")
		if err != nil {
			// allow missing file for non-default locales
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			logger.Warn("locale file missing", zap.String("lang", l.String()), zap.Error(err))
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}

	tags := []language.Tag{language.Make(fallback.String())}
	for _, l := range lang.Supported {
		if l != fallback {
			tags = append(tags, language.Make(l.String()))
		}
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Fallback returns the configured default language.
func (b *Bundle) Fallback() lang.Language { return b.fallback }

// Loaded lists the languages with a dictionary, in display order.
func (b *Bundle) Loaded() []lang.Language {
	out := make([]lang.Language, 0, len(b.dict))
	for _, l := range lang.Supported {
		if _, ok := b.dict[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// lookup walks the dotted key through the nested dictionary of l.
func (b *Bundle) lookup(l lang.Language, key string) (any, bool) {
	var node any = b.dict[l]
	if node == nil || key == "" {
		return nil, false
	}
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// T returns the string at key for l. A missing key, or one that does not end
// on a string, yields the key itself. Other languages are never consulted.
func (b *Bundle) T(l lang.Language, key string) string {
	v, ok := b.lookup(l, key)
	if s, isString := v.(string); ok && isString {
		return s
	}
	b.warnMissing(l, key)
	return key
}

// TVars translates key and substitutes {{name}} placeholders from vars.
// Placeholders without a value are left untouched.
func (b *Bundle) TVars(l lang.Language, key string, vars map[string]any) string {
	text := b.T(l, key)
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{{"+name+"}}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Section returns the subtree at key, or an empty map.
func (b *Bundle) Section(l lang.Language, key string) map[string]any {
	v, ok := b.lookup(l, key)
	if m, isMap := v.(map[string]any); ok && isMap {
		return m
	}
	b.warnMissing(l, key)
	return map[string]any{}
}

// Has reports whether key resolves to a string for l.
func (b *Bundle) Has(l lang.Language, key string) bool {
	v, ok := b.lookup(l, key)
	_, isString := v.(string)
	return ok && isString
}

// Array returns the string list at key, or nil.
func (b *Bundle) Array(l lang.Language, key string) []string {
	v, ok := b.lookup(l, key)
	items, isList := v.([]any)
	if !ok || !isList {
		b.warnMissing(l, key)
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Resolve chooses the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLanguage string) lang.Language {
	if strings.TrimSpace(acceptLanguage) == "" {
		return b.fallback
	}
	tag, _ := language.MatchStrings(b.matcher, acceptLanguage)
	base, _ := tag.Base()
	if l, ok := lang.Parse(base.String()); ok {
		return l
	}
	return b.fallback
}

func (b *Bundle) warnMissing(l lang.Language, key string) {
	if _, seen := b.warned.LoadOrStore(l.String()+"|"+key, struct{}{}); seen {
		return
	}
	b.logger.Warn("translation key not found", zap.String("lang", l.String()), zap.String("key", key))
}
