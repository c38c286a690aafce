package widget

import (
	"fmt"

	"github.com/HsiangNianian/esaskywidget/internal/sky"
)

// JSON shapes accepted by Call for the overlay commands.

type metadataParams struct {
	Name  string           `json:"name"`
	Value flexString       `json:"value"`
	Type  sky.MetadataType `json:"type"`
}

func toMetadata(in []metadataParams) []sky.Metadata {
	out := make([]sky.Metadata, 0, len(in))
	for _, m := range in {
		typ := m.Type
		if typ == "" {
			typ = sky.TypeString
		}
		out = append(out, sky.Metadata{Name: m.Name, Value: string(m.Value), Type: typ})
	}
	return out
}

type sourceParams struct {
	Name string           `json:"name"`
	ID   flexString       `json:"id"`
	RA   flexString       `json:"ra"`
	Dec  flexString       `json:"dec"`
	Data []metadataParams `json:"data"`
}

type catalogueParams struct {
	Name      string         `json:"name"`
	CooFrame  string         `json:"cooframe"`
	Color     string         `json:"color"`
	LineWidth int            `json:"line_width"`
	Sources   []sourceParams `json:"sources"`
}

func (c catalogueParams) catalogue() (*sky.Catalogue, error) {
	cat := sky.NewCatalogue(c.Name, c.CooFrame, c.Color, c.LineWidth)
	for i, s := range c.Sources {
		if err := cat.AddSource(s.Name, string(s.RA), string(s.Dec), string(s.ID), toMetadata(s.Data)); err != nil {
			return nil, fmt.Errorf("%w: source %d: %v", ErrBadParam, i, err)
		}
	}
	return cat, nil
}

type footprintParams struct {
	Name   string           `json:"name"`
	STCS   string           `json:"stcs"`
	ID     flexString       `json:"id"`
	RADeg  flexString       `json:"ra_deg"`
	DecDeg flexString       `json:"dec_deg"`
	Data   []metadataParams `json:"data"`
}

type footprintSetParams struct {
	Name       string            `json:"name"`
	CooFrame   string            `json:"cooframe"`
	Color      string            `json:"color"`
	LineWidth  int               `json:"line_width"`
	Footprints []footprintParams `json:"footprints"`
}

func (f footprintSetParams) footprintSet() (*sky.FootprintSet, error) {
	set := sky.NewFootprintSet(f.Name, f.CooFrame, f.Color, f.LineWidth)
	for i, fp := range f.Footprints {
		if err := set.AddFootprint(fp.Name, fp.STCS, string(fp.ID), string(fp.RADeg), string(fp.DecDeg), toMetadata(fp.Data)); err != nil {
			return nil, fmt.Errorf("%w: footprint %d: %v", ErrBadParam, i, err)
		}
	}
	return set, nil
}

type columnParams struct {
	Label       string           `json:"label"`
	Type        sky.MetadataType `json:"type"`
	MaxDecimals int              `json:"max_decimals"`
}

func toDescriptors(in []columnParams) []sky.MetadataDescriptor {
	var out []sky.MetadataDescriptor
	for _, c := range in {
		typ := c.Type
		if typ == "" {
			typ = sky.TypeString
		}
		out = append(out, sky.NewMetadataDescriptor(c.Label, typ, c.MaxDecimals))
	}
	return out
}

type catalogueDescriptorParams struct {
	DatasetName string         `json:"dataset_name"`
	Color       string         `json:"color"`
	LineWidth   int            `json:"line_width"`
	IDCol       string         `json:"id_col"`
	NameCol     string         `json:"name_col"`
	RACol       string         `json:"ra_col"`
	DecCol      string         `json:"dec_col"`
	Metadata    []columnParams `json:"metadata"`
}

func (d catalogueDescriptorParams) descriptor() sky.CatalogueDescriptor {
	return sky.CatalogueDescriptor{
		DatasetName: d.DatasetName,
		Color:       d.Color,
		LineWidth:   d.LineWidth,
		IDCol:       d.IDCol,
		NameCol:     d.NameCol,
		RACol:       d.RACol,
		DecCol:      d.DecCol,
		Metadata:    toDescriptors(d.Metadata),
	}
}

type footprintDescriptorParams struct {
	DatasetName  string         `json:"dataset_name"`
	Color        string         `json:"color"`
	LineWidth    int            `json:"line_width"`
	IDCol        string         `json:"id_col"`
	NameCol      string         `json:"name_col"`
	STCSCol      string         `json:"stcs_col"`
	RACenterCol  string         `json:"ra_center_col"`
	DecCenterCol string         `json:"dec_center_col"`
	Metadata     []columnParams `json:"metadata"`
}

func (d footprintDescriptorParams) descriptor() sky.FootprintSetDescriptor {
	return sky.FootprintSetDescriptor{
		DatasetName:  d.DatasetName,
		Color:        d.Color,
		LineWidth:    d.LineWidth,
		IDCol:        d.IDCol,
		NameCol:      d.NameCol,
		STCSCol:      d.STCSCol,
		RACenterCol:  d.RACenterCol,
		DecCenterCol: d.DecCenterCol,
		Metadata:     toDescriptors(d.Metadata),
	}
}
