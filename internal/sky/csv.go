package sky

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
)

// LoadCatalogueCSV reads a delimited file with a header row into a
// catalogue, mapping columns as the descriptor says.
func LoadCatalogueCSV(r io.Reader, delimiter rune, desc CatalogueDescriptor, cooframe string) (*Catalogue, error) {
	cat := NewCatalogue(desc.DatasetName, cooframe, desc.Color, desc.LineWidth)

	rows, header, err := readTable(r, delimiter)
	if err != nil {
		return nil, err
	}
	log.Printf("columns identified: %v", header)

	for line, row := range rows {
		var id, name, ra, dec string
		var details []Metadata
		for i, value := range row {
			if i >= len(header) {
				break
			}
			col := header[i]
			switch col {
			case desc.IDCol:
				id = value
				if desc.IDCol == desc.NameCol {
					name = value
				}
			case desc.NameCol:
				name = value
			case desc.RACol:
				ra = value
			case desc.DecCol:
				dec = value
			default:
				if m, ok := metadataFor(desc.Metadata, col, value); ok {
					details = append(details, m)
				}
			}
		}
		if err := cat.AddSource(name, ra, dec, id, details); err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
	}
	log.Printf("processed %d lines", len(rows)+1)
	return cat, nil
}

// LoadFootprintsCSV reads a delimited file with a header row into a
// footprint set. The set is always J2000.
func LoadFootprintsCSV(r io.Reader, delimiter rune, desc FootprintSetDescriptor) (*FootprintSet, error) {
	set := NewFootprintSet(desc.DatasetName, string(FrameJ2000), desc.Color, desc.LineWidth)

	rows, header, err := readTable(r, delimiter)
	if err != nil {
		return nil, err
	}
	log.Printf("columns identified: %v", header)

	for line, row := range rows {
		var id, name, stcs, ra, dec string
		var details []Metadata
		for i, value := range row {
			if i >= len(header) {
				break
			}
			col := header[i]
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
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
	}
	log.Printf("processed %d lines", len(rows)+1)
	return set, nil
}

func readTable(r io.Reader, delimiter rune) ([][]string, []string, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header failed: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv failed: %w", err)
	}
	return rows, header, nil
}
