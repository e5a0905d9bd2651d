package seo

import (
	"encoding/json"
	"fmt"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Business carries the contact data of the lodging business.
type Business struct {
	Name        string
	URL         string
	Description string
	Image       string
	Email       string
	Phone       string
	Locality    string
	Country     string
	SameAs      []string
	LowPrice    int64
	HighPrice   int64
	Currency    string
}

// LodgingBusiness returns the schema.org LodgingBusiness payload of the site.
func LodgingBusiness(b Business) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LodgingBusiness",
		"name":     b.Name,
	}
	if b.URL != "" {
		m["url"] = b.URL
	}
	if b.Description != "" {
		m["description"] = b.Description
	}
	if b.Image != "" {
		m["image"] = b.Image
	}
	if b.Email != "" {
		m["email"] = b.Email
	}
	if b.Phone != "" {
		m["telephone"] = b.Phone
	}
	if b.Locality != "" || b.Country != "" {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": b.Locality,
			"addressCountry":  b.Country,
		}
	}
	if len(b.SameAs) > 0 {
		m["sameAs"] = b.SameAs
	}
	if b.LowPrice > 0 {
		m["priceRange"] = fmt.Sprintf("%d-%d %s", b.LowPrice, b.HighPrice, b.Currency)
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Apartment returns the schema for one studio with its monthly offer.
func Apartment(name, description, url, imageURL string, price int64, currency string) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Apartment",
		"name":        name,
		"description": description,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if price > 0 {
		m["offers"] = map[string]any{
			"@type":         "Offer",
			"price":         price,
			"priceCurrency": currency,
			"unitText":      "MONTH",
		}
	}
	return m
}
