package seo

// ManifestIcon is one web app manifest icon.
type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest is the web app manifest document.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Orientation     string         `json:"orientation"`
	Scope           string         `json:"scope"`
	Lang            string         `json:"lang"`
	Categories      []string       `json:"categories"`
	Icons           []ManifestIcon `json:"icons"`
}

// WebManifest returns the site manifest with the given localized name and description.
func WebManifest(name, shortName, description, lang string) Manifest {
	return Manifest{
		Name:            name,
		ShortName:       shortName,
		Description:     description,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#8b5cf6",
		Orientation:     "portrait",
		Scope:           "/",
		Lang:            lang,
		Categories:      []string{"beauty", "lifestyle", "photography"},
		Icons: []ManifestIcon{
			{Src: "/assets/img/favicon.ico", Sizes: "32x32", Type: "image/x-icon"},
			{Src: "/assets/img/icon-192.png", Sizes: "192x192", Type: "image/png", Purpose: "maskable"},
			{Src: "/assets/img/icon-512.png", Sizes: "512x512", Type: "image/png"},
		},
	}
}
