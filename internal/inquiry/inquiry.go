// Package inquiry validates booking requests, relays them by email and builds
// the matching WhatsApp deep link.
package inquiry

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Form kinds accepted by the relay.
const (
	FormReservation = "reservas"
	FormContact     = "contacto"
	FormStudio      = "estudio"
)

// Inquiry is a booking or contact request as submitted by the site forms.
type Inquiry struct {
	Form     string `json:"form"`
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
	Fecha    string `json:"fecha"`
	Estadia  string `json:"estadia"`
	Personas string `json:"personas"`
	Mensaje  string `json:"mensaje"`
	Estudio  string `json:"estudio"`
}

// Result is returned to the client after a submission.
type Result struct {
	ID          string `json:"id"`
	EmailSent   bool   `json:"emailSent"`
	WhatsAppURL string `json:"whatsappUrl"`
}

var strict = bluemonday.StrictPolicy()

// Sanitize strips markup and surrounding whitespace from every field. The
// result is plain text: entities produced by the policy are decoded again.
func (in Inquiry) Sanitize() Inquiry {
	clean := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(strict.Sanitize(strings.TrimSpace(s))))
	}
	return Inquiry{
		Form:     strings.ToLower(clean(in.Form)),
		Nombre:   clean(in.Nombre),
		Email:    clean(in.Email),
		Telefono: clean(in.Telefono),
		Fecha:    clean(in.Fecha),
		Estadia:  clean(in.Estadia),
		Personas: clean(in.Personas),
		Mensaje:  clean(in.Mensaje),
		Estudio:  clean(in.Estudio),
	}
}

// FormKind returns the relay form the inquiry belongs to.
func (in Inquiry) FormKind() string {
	switch in.Form {
	case FormReservation, FormContact, FormStudio:
		return in.Form
	}
	if in.Estudio != "" {
		return FormStudio
	}
	return FormReservation
}

// Fields returns the non-empty fields keyed by their form names.
func (in Inquiry) Fields() map[string]string {
	all := map[string]string{
		"nombre":   in.Nombre,
		"email":    in.Email,
		"telefono": in.Telefono,
		"fecha":    in.Fecha,
		"estadia":  in.Estadia,
		"personas": in.Personas,
		"mensaje":  in.Mensaje,
		"estudio":  in.Estudio,
	}
	out := make(map[string]string, len(all))
	for k, v := range all {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
