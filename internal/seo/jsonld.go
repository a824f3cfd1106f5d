package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v for a <script type="application/ld+json"> block. It returns an empty
// string on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Hours is one opening hours specification.
type Hours struct {
	Days  []string
	Opens string
	Close string
}

// Business describes the salon for structured data.
type Business struct {
	Name        string
	LegalName   string
	URL         string
	Logo        string
	Image       string
	Description string
	Telephone   string
	Email       string
	SameAs      []string
	Locality    string
	Region      string
	Country     string
	Latitude    float64
	Longitude   float64
	PriceRange  string
	Hours       []Hours
	Languages   []string
}

// DefaultBusiness returns the salon's published details rooted at baseURL.
func DefaultBusiness(baseURL, instagramURL, whatsappURL string) Business {
	return Business{
		Name:       "Talia Colors",
		LegalName:  "Talia Colors Hair Studio",
		URL:        baseURL,
		Logo:       baseURL + "/assets/img/logo.png",
		Image:      baseURL + "/assets/img/og-image.jpg",
		Telephone:  "+55 48 99169-053",
		Email:      "contato@taliacolors.com",
		SameAs:     nonEmpty(instagramURL, whatsappURL),
		Locality:   "Florianópolis",
		Region:     "SC",
		Country:    "BR",
		Latitude:   -27.5954,
		Longitude:  -48.5480,
		PriceRange: "R$ 120-400",
		Hours: []Hours{
			{Days: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, Opens: "09:00", Close: "18:00"},
			{Days: []string{"Saturday"}, Opens: "09:00", Close: "16:00"},
		},
		Languages: []string{"Portuguese", "Spanish", "English"},
	}
}

func geo(b Business) map[string]any {
	return map[string]any{
		"@type":     "GeoCoordinates",
		"latitude":  b.Latitude,
		"longitude": b.Longitude,
	}
}

// HairSalon returns the LocalBusiness schema for the salon.
func HairSalon(b Business) map[string]any {
	hours := make([]map[string]any, 0, len(b.Hours))
	for _, h := range b.Hours {
		var days any = h.Days
		if len(h.Days) == 1 {
			days = h.Days[0]
		}
		hours = append(hours, map[string]any{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": days,
			"opens":     h.Opens,
			"closes":    h.Close,
		})
	}
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "HairSalon",
		"@id":         b.URL,
		"name":        b.Name,
		"description": b.Description,
		"url":         b.URL,
		"logo":        b.Logo,
		"image":       b.Image,
		"telephone":   b.Telephone,
		"email":       b.Email,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": b.Locality,
			"addressRegion":   b.Region,
			"addressCountry":  b.Country,
		},
		"geo":                       geo(b),
		"openingHoursSpecification": hours,
		"priceRange":                b.PriceRange,
	}
	if len(b.SameAs) > 0 {
		m["sameAs"] = b.SameAs
	}
	return m
}

// Organization returns the Organization schema.
func Organization(b Business) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Organization",
		"@id":         b.URL + "/#organization",
		"name":        b.Name,
		"legalName":   b.LegalName,
		"url":         b.URL,
		"logo":        b.Logo,
		"description": b.Description,
		"contactPoint": map[string]any{
			"@type":             "ContactPoint",
			"telephone":         b.Telephone,
			"contactType":       "customer service",
			"availableLanguage": b.Languages,
		},
	}
	if len(b.SameAs) > 0 {
		m["sameAs"] = b.SameAs
	}
	return m
}

// WebSite returns the WebSite schema listing the site languages.
func WebSite(b Business, locales []string) map[string]any {
	langs := make([]map[string]any, 0, len(locales))
	for _, l := range locales {
		langs = append(langs, map[string]any{
			"@type":         "Language",
			"name":          languageName(l),
			"alternateName": l,
		})
	}
	return map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"@id":         b.URL + "/#website",
		"url":         b.URL,
		"name":        b.Name,
		"description": b.Description,
		"publisher":   map[string]any{"@id": b.URL + "/#organization"},
		"inLanguage":  langs,
	}
}

// Service is one bookable service with a price range in BRL.
type Service struct {
	Slug        string
	Name        string
	Description string
	Price       string
}

// ServiceList returns an ItemList of the salon's services.
func ServiceList(b Business, name string, services []Service) map[string]any {
	items := make([]map[string]any, 0, len(services))
	for _, s := range services {
		items = append(items, map[string]any{
			"@type":       "Service",
			"@id":         b.URL + "/services/" + s.Slug,
			"name":        s.Name,
			"description": s.Description,
			"provider":    map[string]any{"@type": "HairSalon", "name": b.Name},
			"offers": map[string]any{
				"@type":         "Offer",
				"priceCurrency": "BRL",
				"price":         s.Price,
			},
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"name":            name,
		"itemListElement": items,
	}
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

func languageName(code string) string {
	switch code {
	case "pt":
		return "Portuguese"
	case "es":
		return "Spanish"
	case "en":
		return "English"
	}
	return code
}

func nonEmpty(values ...string) []string {
	out := []string{}
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
