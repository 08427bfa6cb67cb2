package export

// A4 at 96 dpi
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
	A4WidthPx      = 794
	A4HeightPx     = 1123
	// 10mm
	MarginInches = 0.3937
)

// Profile is the page setup handed to a rasterizer
type Profile struct {
	PaperWidth  float64
	PaperHeight float64
	Margin      float64

	ViewportWidth  int64
	ViewportHeight int64
	DeviceScale    float64

	// PageBreaks keeps the document's break hints when true.
	PageBreaks bool
}

// PrimaryProfile is used for structured print documents.
func PrimaryProfile(scale float64) Profile {
	return Profile{
		PaperWidth:     A4WidthInches,
		PaperHeight:    A4HeightInches,
		Margin:         MarginInches,
		ViewportWidth:  A4WidthPx,
		ViewportHeight: A4HeightPx,
		DeviceScale:    scale,
		PageBreaks:     true,
	}
}

// LegacyProfile is used for captured interactive pages.
func LegacyProfile(scale float64) Profile {
	p := PrimaryProfile(scale)
	p.PageBreaks = false
	return p
}
