package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Site holds the editorial configuration of the landing site, read from site.yaml.
type Site struct {
	Name          string            `yaml:"name"`
	URL           string            `yaml:"url"`
	Email         string            `yaml:"email"`
	Phone         string            `yaml:"phone"`
	Address       string            `yaml:"address"`
	Instagram     string            `yaml:"instagram"`
	WhatsApp      WhatsAppConfig    `yaml:"whatsapp"`
	Formspree     FormspreeConfig   `yaml:"formspree"`
	CountryGroups CountryGroups     `yaml:"country_groups"`
	ExchangeRate  int64             `yaml:"exchange_rate"`
	Gallery       GalleryConfig     `yaml:"gallery"`
	Studios       []StudioConfig    `yaml:"studios"`
	Extra         map[string]string `yaml:"extra,omitempty"`
}

// WhatsAppConfig configures the messaging deep link.
type WhatsAppConfig struct {
	Number          string            `yaml:"number"`
	BaseURL         string            `yaml:"base_url"`
	DefaultMessages map[string]string `yaml:"default_messages"`
}

// FormspreeConfig maps form kinds to relay endpoints.
type FormspreeConfig struct {
	Endpoints map[string]string `yaml:"endpoints"`
}

// CountryGroups partitions ISO country codes by the language they map to.
type CountryGroups struct {
	Spanish []string `yaml:"spanish"`
	Chinese []string `yaml:"chinese"`
}

// GalleryConfig holds the thumbnails shown per viewport class.
type GalleryConfig struct {
	Mobile  int `yaml:"mobile"`
	Tablet  int `yaml:"tablet"`
	Desktop int `yaml:"desktop"`
}

// StudioConfig describes one rentable studio.
type StudioConfig struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	MainImage string   `yaml:"main_image"`
	Images    []string `yaml:"images"`
	Color     string   `yaml:"color"`
	PriceCOP  int64    `yaml:"price_cop"`
}

// DefaultSite returns the compiled-in site configuration.
func DefaultSite() Site {
	return Site{
		Name:      "Pixel Living",
		URL:       "https://pixelliving.co",
		Email:     "info@pixelliving.co",
		Phone:     "+57 319 5895858",
		Address:   "Bogotá, Colombia",
		Instagram: "https://instagram.com/pixelliving.co",
		WhatsApp: WhatsAppConfig{
			Number:  "573195895858",
			BaseURL: "https://wa.me/",
			DefaultMessages: map[string]string{
				"general":  "¡Hola! Me interesa Pixel Living. ¿Podrían darme más información?",
				"reserva":  "¡Hola! Me gustaría conocer la disponibilidad de apartaestudios en Pixel Living.",
				"contacto": "¡Hola! Tengo una consulta sobre Pixel Living.",
			},
		},
		Formspree: FormspreeConfig{
			Endpoints: map[string]string{
				"reservas": "https://formspree.io/f/xeokkypj",
				"contacto": "https://formspree.io/f/xeokkypj",
				"estudio":  "https://formspree.io/f/xeokkypj",
			},
		},
		CountryGroups: CountryGroups{
			Spanish: []string{"AR", "BO", "BR", "CL", "CO", "CR", "CU", "DO", "EC", "SV", "GT", "HN", "MX", "NI", "PA", "PY", "PE", "PR", "UY", "VE", "ES"},
			Chinese: []string{"CN", "TW", "HK", "MO", "SG"},
		},
		ExchangeRate: 4400,
		Gallery:      GalleryConfig{Mobile: 4, Tablet: 6, Desktop: 8},
		Studios: []StudioConfig{
			{ID: "jade", Name: "Estudio Jade", MainImage: "/images/estudios/f1.jpg", Images: studioImages("jade"), Color: "bg-green-500", PriceCOP: 2650000},
			{ID: "zian", Name: "Estudio Zian", MainImage: "/images/estudios/f2.jpg", Images: studioImages("zian"), Color: "bg-blue-500", PriceCOP: 2850000},
			{ID: "indigo", Name: "Estudio Índigo", MainImage: "/images/estudios/f3.jpg", Images: studioImages("indigo"), Color: "bg-indigo-500", PriceCOP: 2950000},
			{ID: "ambar", Name: "Estudio Ámbar", MainImage: "/images/estudios/f4.jpg", Images: studioImages("ambar"), Color: "bg-amber-500", PriceCOP: 3100000},
		},
	}
}

func studioImages(id string) []string {
	out := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		out = append(out, fmt.Sprintf("/images/estudios/%s/%s-%d.jpg", id, id, i))
	}
	return out
}

// LoadSite reads the site file at path on top of DefaultSite. A missing file
// yields the defaults.
func LoadSite(path string) (Site, error) {
	site := DefaultSite()
	if strings.TrimSpace(path) == "" {
		return site, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return site, nil
	}
	if err != nil {
		return Site{}, fmt.Errorf("config: read site file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return Site{}, fmt.Errorf("config: parse site file %s: %w", path, err)
	}
	if err := validateSite(site); err != nil {
		return Site{}, err
	}
	return site, nil
}

func validateSite(site Site) error {
	var invalid []string
	if strings.TrimSpace(site.WhatsApp.Number) == "" {
		invalid = append(invalid, "Site.WhatsApp.Number")
	}
	if site.ExchangeRate <= 0 {
		invalid = append(invalid, "Site.ExchangeRate")
	}
	if site.Gallery.Mobile <= 0 || site.Gallery.Tablet <= 0 || site.Gallery.Desktop <= 0 {
		invalid = append(invalid, "Site.Gallery")
	}
	seen := map[string]struct{}{}
	for _, code := range site.CountryGroups.Spanish {
		seen[strings.ToUpper(code)] = struct{}{}
	}
	for _, code := range site.CountryGroups.Chinese {
		if _, dup := seen[strings.ToUpper(code)]; dup {
			invalid = append(invalid, "Site.CountryGroups["+strings.ToUpper(code)+"]")
		}
	}
	for i, s := range site.Studios {
		if strings.TrimSpace(s.ID) == "" {
			invalid = append(invalid, fmt.Sprintf("Site.Studios[%d].ID", i))
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}
