package catalog

// Viewport breakpoints, in CSS pixels.
const (
	tabletMinWidth  = 768
	desktopMinWidth = 1024
)

// Gallery is the lightbox payload for one studio.
type Gallery struct {
	StudioID string        `json:"studioId"`
	Name     string        `json:"name"`
	Images   []string      `json:"images"`
	PerView  PerViewConfig `json:"perView"`
	// MaxOffset is the last first-visible thumbnail index per viewport class.
	MaxOffset PerViewConfig `json:"maxOffset"`
	Position  *Position     `json:"position,omitempty"`
}

// Position is the lightbox state: the open image and the first visible
// thumbnail of the strip.
type Position struct {
	Image  int `json:"image"`
	Offset int `json:"offset"`
}

// PerViewConfig lists the thumbnails visible per viewport class.
type PerViewConfig struct {
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
	Desktop int `json:"desktop"`
}

// Gallery returns the ordered image list of a studio: main image first.
func (c *Catalog) Gallery(id string) (Gallery, bool) {
	s, ok := c.Studio(id)
	if !ok {
		return Gallery{}, false
	}
	images := make([]string, 0, len(s.Images)+1)
	if s.MainImage != "" {
		images = append(images, s.MainImage)
	}
	images = append(images, s.Images...)
	pv := c.perView()
	return Gallery{
		StudioID: s.ID,
		Name:     s.Name,
		Images:   images,
		PerView:  pv,
		MaxOffset: PerViewConfig{
			Mobile:  maxOffset(len(images), pv.Mobile),
			Tablet:  maxOffset(len(images), pv.Tablet),
			Desktop: maxOffset(len(images), pv.Desktop),
		},
	}, true
}

// Navigate moves the open image of g by dir and scrolls the thumbnail strip of
// a viewport width px wide by the same step.
func (c *Catalog) Navigate(g Gallery, from Position, dir, width int) Position {
	total := len(g.Images)
	return Position{
		Image:  StepImage(from.Image, dir, total),
		Offset: c.ClampCarousel(from.Offset, dir, total, width),
	}
}

func maxOffset(total, perView int) int {
	if total <= perView {
		return 0
	}
	return total - perView
}

func (c *Catalog) perView() PerViewConfig {
	pv := PerViewConfig{Mobile: c.gallery.Mobile, Tablet: c.gallery.Tablet, Desktop: c.gallery.Desktop}
	if pv.Mobile <= 0 {
		pv.Mobile = 4
	}
	if pv.Tablet <= 0 {
		pv.Tablet = 6
	}
	if pv.Desktop <= 0 {
		pv.Desktop = 8
	}
	return pv
}

// ThumbnailsPerView returns how many thumbnails fit a viewport of width px.
func (c *Catalog) ThumbnailsPerView(width int) int {
	pv := c.perView()
	switch {
	case width < tabletMinWidth:
		return pv.Mobile
	case width < desktopMinWidth:
		return pv.Tablet
	}
	return pv.Desktop
}

// ClampCarousel moves the thumbnail strip by dir and keeps the first visible
// index within [0, total-perView].
func (c *Catalog) ClampCarousel(index, dir, total, width int) int {
	maxIndex := maxOffset(total, c.ThumbnailsPerView(width))
	index += dir
	if index > maxIndex {
		index = maxIndex
	}
	if index < 0 {
		index = 0
	}
	return index
}

// StepImage advances the current image index by dir, wrapping at both ends.
func StepImage(index, dir, total int) int {
	if total <= 0 {
		return 0
	}
	index = (index + dir) % total
	if index < 0 {
		index += total
	}
	return index
}
