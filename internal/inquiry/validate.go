package inquiry

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maber00/pixelabril/internal/lang"
)

const (
	minNameLength    = 2
	maxNameLength    = 50
	minMessageLength = 10
	maxMessageLength = 500
	dateLayout       = "2006-01-02"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑüÜ\s]+$`)
)

// Translator resolves localized validation messages.
type Translator interface {
	T(l lang.Language, key string) string
	TVars(l lang.Language, key string, vars map[string]any) string
}

// ValidationError lists the rejected fields with a localized message each.
type ValidationError struct {
	fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for k := range e.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "inquiry: invalid fields [" + strings.Join(names, ", ") + "]"
}

// Fields returns a copy of field name to message.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Validate checks a sanitized inquiry. Name and email are required; phone,
// date and message are checked only when present. today is the current
// calendar day formatted as 2006-01-02.
func Validate(in Inquiry, l lang.Language, tr Translator, today string) error {
	fields := map[string]string{}

	switch n := utf8.RuneCountInString(in.Nombre); {
	case n == 0:
		fields["nombre"] = tr.T(l, "validation.required")
	case n < minNameLength:
		fields["nombre"] = tr.TVars(l, "validation.min_length", map[string]any{"min": minNameLength})
	case n > maxNameLength:
		fields["nombre"] = tr.TVars(l, "validation.max_length", map[string]any{"max": maxNameLength})
	case !namePattern.MatchString(in.Nombre):
		fields["nombre"] = tr.T(l, "validation.name")
	}

	switch {
	case in.Email == "":
		fields["email"] = tr.T(l, "validation.required")
	case !emailPattern.MatchString(in.Email):
		fields["email"] = tr.T(l, "validation.email")
	}

	if in.Telefono != "" && !phonePattern.MatchString(strings.ReplaceAll(in.Telefono, " ", "")) {
		fields["telefono"] = tr.T(l, "validation.phone")
	}

	if in.Mensaje != "" {
		switch n := utf8.RuneCountInString(in.Mensaje); {
		case n < minMessageLength:
			fields["mensaje"] = tr.TVars(l, "validation.min_length", map[string]any{"min": minMessageLength})
		case n > maxMessageLength:
			fields["mensaje"] = tr.TVars(l, "validation.max_length", map[string]any{"max": maxMessageLength})
		}
	}

	if in.Fecha != "" {
		d, err := time.Parse(dateLayout, in.Fecha)
		if err != nil || d.Format(dateLayout) < today {
			fields["fecha"] = tr.T(l, "validation.date")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}
