package sky

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	ucdMainRA  = "pos.eq.ra;meta.main"
	ucdMainDec = "pos.eq.dec;meta.main"
	ucdMainID  = "meta.id;meta.main"

	tableLineWidth = 5
)

var ErrRaggedTable = errors.New("row length does not match columns")

// Column describes one table column. UCD is optional.
type Column struct {
	Name string `json:"name"`
	UCD  string `json:"ucd,omitempty"`
}

// Table is an in-memory tabular dataset with every cell already rendered
// as text.
type Table struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (t Table) validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d", ErrRaggedTable, i)
		}
	}
	return nil
}

// CatalogueFromTable builds a catalogue from t. When raCol, decCol and idCol
// are all empty they are detected from the main position and id UCDs. The
// id column provides the source name; source ids are row indices.
func CatalogueFromTable(name, cooframe, color string, lineWidth int, t Table, raCol, decCol, idCol string) (*Catalogue, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if raCol == "" && decCol == "" && idCol == "" {
		for _, c := range t.Columns {
			switch {
			case strings.Contains(c.UCD, ucdMainRA):
				raCol = c.Name
			case strings.Contains(c.UCD, ucdMainDec):
				decCol = c.Name
			case strings.Contains(c.UCD, ucdMainID):
				idCol = c.Name
			}
		}
	}
	if lineWidth <= 0 {
		lineWidth = tableLineWidth
	}

	cat := NewCatalogue(name, cooframe, color, lineWidth)
	for j, row := range t.Rows {
		var srcName, ra, dec string
		details := []Metadata{}
		for k, value := range row {
			col := t.Columns[k]
			switch col.Name {
			case raCol:
				ra = value
			case decCol:
				dec = value
			case idCol:
				srcName = value
			default:
				typ := TypeString
				if col.UCD != "" {
					typ = UCDType(col.UCD)
				}
				details = append(details, Metadata{Name: col.Name, Value: value, Type: typ})
			}
		}
		if err := cat.AddSource(srcName, ra, dec, strconv.Itoa(j), details); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// FootprintsFromTable builds a J2000 footprint set from t using the
// descriptor's column mapping. Footprint ids are row indices unless the
// descriptor names an id column.
func FootprintsFromTable(desc FootprintSetDescriptor, t Table) (*FootprintSet, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	set := NewFootprintSet(desc.DatasetName, string(FrameJ2000), desc.Color, desc.LineWidth)
	for j, row := range t.Rows {
		id := strconv.Itoa(j)
		var name, stcs, ra, dec string
		var details []Metadata
		for k, value := range row {
			col := t.Columns[k].Name
			switch col {
			case desc.IDCol:
				id = value
				if desc.IDCol == desc.NameCol {
					name = value
				}
			case desc.NameCol:
				name = value
			case desc.STCSCol:
				stcs = value
			case desc.RACenterCol:
				ra = value
			case desc.DecCenterCol:
				dec = value
			default:
				if m, ok := metadataFor(desc.Metadata, col, value); ok {
					details = append(details, m)
				}
			}
		}
		if err := set.AddFootprint(name, stcs, id, ra, dec, details); err != nil {
			return nil, fmt.Errorf("row %d: %w", j, err)
		}
	}
	return set, nil
}
