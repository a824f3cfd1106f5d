package handlers

import "fmt"

// GalleryItem is one before/after transformation on the home page.
type GalleryItem struct {
	Image      string
	TitleKey   string
	ServiceKey string
}

// HomeData is the view model for the home page.
type HomeData struct {
	Gallery      []GalleryItem
	TrustKeys    []string
	PhotoTipKeys []string
}

const (
	galleryCount  = 6
	trustCount    = 4
	photoTipCount = 4
)

// BuildHomeData constructs the static sections of the landing page.
func BuildHomeData() HomeData {
	var h HomeData
	for i := 0; i < galleryCount; i++ {
		h.Gallery = append(h.Gallery, GalleryItem{
			Image:      fmt.Sprintf("/assets/img/gallery/transformation-%d.webp", i+1),
			TitleKey:   fmt.Sprintf("gallery.transformations.%d.title", i),
			ServiceKey: fmt.Sprintf("gallery.transformations.%d.service", i),
		})
	}
	for i := 0; i < trustCount; i++ {
		h.TrustKeys = append(h.TrustKeys, fmt.Sprintf("trustSection.benefits.%d.text", i))
	}
	for i := 0; i < photoTipCount; i++ {
		h.PhotoTipKeys = append(h.PhotoTipKeys, fmt.Sprintf("photoUpload.tips.items.%d", i))
	}
	return h
}
