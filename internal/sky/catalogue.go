package sky

import (
	"fmt"
	"strconv"
)

type Source struct {
	Name string     `json:"name"`
	ID   int        `json:"id"`
	RA   string     `json:"ra"`
	Dec  string     `json:"dec"`
	Data []Metadata `json:"data"`
}

type Catalogue struct {
	Name      string
	CooFrame  CooFrame
	Color     string
	LineWidth int
	Sources   []Source
}

// NewCatalogue applies the frontend defaults for empty color, non-positive
// line width and unknown frames.
func NewCatalogue(name, cooframe, color string, lineWidth int) *Catalogue {
	return &Catalogue{
		Name:      name,
		CooFrame:  frameOrDefault(cooframe),
		Color:     colorOrDefault(color),
		LineWidth: lineWidthOrDefault(lineWidth),
	}
}

// AddSource appends a source. An empty id is replaced by the source's
// position in the list.
func (c *Catalogue) AddSource(name, ra, dec, id string, details []Metadata) error {
	n, err := parseID(id, len(c.Sources))
	if err != nil {
		return err
	}
	if details == nil {
		details = []Metadata{}
	}
	c.Sources = append(c.Sources, Source{Name: name, ID: n, RA: ra, Dec: dec, Data: details})
	return nil
}

func (c *Catalogue) OverlaySet() OverlaySet {
	sources := c.Sources
	if sources == nil {
		sources = []Source{}
	}
	return OverlaySet{
		Type:          "SourceListOverlay",
		OverlayName:   c.Name,
		CooFrame:      c.CooFrame,
		Color:         c.Color,
		LineWidth:     c.LineWidth,
		SkyObjectList: sources,
	}
}

// Content is the command payload for overlayCatalogue.
func (c *Catalogue) Content() map[string]any {
	return map[string]any{"overlaySet": c.OverlaySet()}
}

func parseID(id string, next int) (int, error) {
	if id == "" {
		return next, nil
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}
