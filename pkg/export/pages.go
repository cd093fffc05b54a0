package export

import "fmt"

// A4 portrait page size in millimetres.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// PageTile places one page over a captured image of the rendered plan.
// OffsetMM is the vertical position of the image top relative to the page
// top; it is zero for the first page and negative afterwards.
type PageTile struct {
	Page     int     `json:"page"`
	OffsetMM float64 `json:"offset_mm"`
}

// Layout describes how an image is tiled across A4 pages.
type Layout struct {
	ImageWidthMM  float64    `json:"image_width_mm"`
	ImageHeightMM float64    `json:"image_height_mm"`
	Pages         []PageTile `json:"pages"`
}

// PageLayout scales an image of the given pixel size to the page width and
// slices it into consecutive A4 pages.
func PageLayout(imgWidthPx, imgHeightPx int) (Layout, error) {
	if imgWidthPx <= 0 || imgHeightPx <= 0 {
		return Layout{}, fmt.Errorf("invalid image size %dx%d", imgWidthPx, imgHeightPx)
	}
	h := float64(imgHeightPx) * PageWidthMM / float64(imgWidthPx)
	l := Layout{ImageWidthMM: PageWidthMM, ImageHeightMM: h, Pages: []PageTile{{Page: 1}}}
	left := h - PageHeightMM
	for left > 1e-9 {
		l.Pages = append(l.Pages, PageTile{Page: len(l.Pages) + 1, OffsetMM: left - h})
		left -= PageHeightMM
	}
	return l, nil
}
