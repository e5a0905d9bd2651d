package inquiry

import (
	"net/url"
	"strings"
	"time"

	"github.com/maber00/pixelabril/internal/lang"
)

const defaultWhatsAppBase = "https://wa.me/"

// WhatsAppLink returns the deep link opening a chat with number prefilled with text.
func WhatsAppLink(baseURL, number, text string) string {
	if baseURL == "" {
		baseURL = defaultWhatsAppBase
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	link := baseURL + strings.TrimPrefix(strings.TrimSpace(number), "+")
	if text == "" {
		return link
	}
	// encode spaces as %20 to match what browsers send
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// WhatsAppMessage formats the chat message summarising an inquiry.
func WhatsAppMessage(in Inquiry, l lang.Language, tr Translator, at time.Time, site string) string {
	w := func(key string) string { return tr.T(l, "inquiry.whatsapp."+key) }
	or := func(v, key string) string {
		if v == "" {
			return w(key)
		}
		return v
	}
	studio := in.Estudio
	if studio == "" {
		studio = tr.T(l, "inquiry.general")
	}
	personas := in.Personas
	if personas == "" {
		personas = "1"
	}

	var b strings.Builder
	b.WriteString("🏠 *" + w("header") + "*\n")
	b.WriteString("📍 " + studio + "\n\n")
	b.WriteString("👤 *" + w("personal") + ":*\n")
	b.WriteString("- " + w("name") + ": " + in.Nombre + "\n")
	b.WriteString("- " + w("email") + ": " + or(in.Email, "not_provided") + "\n")
	b.WriteString("- " + w("phone") + ": " + or(in.Telefono, "not_provided") + "\n\n")
	b.WriteString("📅 *" + w("details") + ":*\n")
	b.WriteString("- " + w("date") + ": " + or(in.Fecha, "to_define") + "\n")
	b.WriteString("- " + w("stay") + ": " + or(in.Estadia, "to_define") + "\n")
	b.WriteString("- " + w("guests") + ": " + personas + "\n\n")
	b.WriteString("💬 *" + w("message") + ":*\n")
	b.WriteString(or(in.Mensaje, "no_message") + "\n\n")
	b.WriteString("---\n")
	b.WriteString("📧 " + w("email_copy") + "\n")
	b.WriteString("⏰ " + at.Format("2006-01-02 15:04") + "\n")
	if site != "" {
		b.WriteString("🌐 " + site)
	}
	return strings.TrimRight(b.String(), "\n")
}
