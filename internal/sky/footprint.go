package sky

import (
	"fmt"
	"strings"
)

type Footprint struct {
	Name   string     `json:"name"`
	ID     int        `json:"id"`
	STCS   string     `json:"stcs"`
	RADeg  string     `json:"ra_deg"`
	DecDeg string     `json:"dec_deg"`
	Data   []Metadata `json:"data"`
}

type FootprintSet struct {
	Name       string
	CooFrame   CooFrame
	Color      string
	LineWidth  int
	Footprints []Footprint
}

func NewFootprintSet(name, cooframe, color string, lineWidth int) *FootprintSet {
	return &FootprintSet{
		Name:      name,
		CooFrame:  frameOrDefault(cooframe),
		Color:     colorOrDefault(color),
		LineWidth: lineWidthOrDefault(lineWidth),
	}
}

var stcsFrames = strings.NewReplacer("ICRS", "", "J2000", "", "FK5", "")

// NormalizeSTCS upper-cases an STC-S region and rewrites its frame to J2000,
// the only frame the frontend parses.
func NormalizeSTCS(stcs string) string {
	s := stcsFrames.Replace(strings.ToUpper(stcs))
	s = strings.ReplaceAll(s, "POLYGON", "POLYGON J2000")
	s = strings.ReplaceAll(s, "CIRCLE", "CIRCLE J2000")
	return s
}

// AddFootprint appends a footprint. Empty ra/dec default to the first
// coordinate pair of the region.
func (f *FootprintSet) AddFootprint(name, stcs, id, ra, dec string, details []Metadata) error {
	n, err := parseID(id, len(f.Footprints))
	if err != nil {
		return err
	}

	norm := NormalizeSTCS(stcs)
	fields := strings.Fields(norm)
	if ra == "" || dec == "" {
		if len(fields) < 4 {
			return fmt.Errorf("%w: %q", ErrInvalidSTCS, stcs)
		}
		if ra == "" {
			ra = fields[2]
		}
		if dec == "" {
			dec = fields[3]
		}
	}
	if details == nil {
		details = []Metadata{}
	}

	f.Footprints = append(f.Footprints, Footprint{
		Name:   name,
		ID:     n,
		STCS:   norm,
		RADeg:  ra,
		DecDeg: dec,
		Data:   details,
	})
	return nil
}

func (f *FootprintSet) OverlaySet() OverlaySet {
	footprints := f.Footprints
	if footprints == nil {
		footprints = []Footprint{}
	}
	return OverlaySet{
		Type:          "FootprintListOverlay",
		OverlayName:   f.Name,
		CooFrame:      f.CooFrame,
		Color:         f.Color,
		LineWidth:     f.LineWidth,
		SkyObjectList: footprints,
	}
}

// Content is the command payload for overlayFootprints.
func (f *FootprintSet) Content() map[string]any {
	return map[string]any{"overlaySet": f.OverlaySet()}
}
