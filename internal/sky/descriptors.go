package sky

const defaultMaxDecimals = 4

type MetadataDescriptor struct {
	TapName          string       `json:"tapName"`
	Label            string       `json:"label"`
	Visible          bool         `json:"visible"`
	Type             MetadataType `json:"type"`
	Index            int          `json:"index"`
	MaxDecimalDigits int          `json:"maxDecimalDigits"`
}

func NewMetadataDescriptor(label string, colType MetadataType, maxDecimals int) MetadataDescriptor {
	if maxDecimals <= 0 {
		maxDecimals = defaultMaxDecimals
	}
	return MetadataDescriptor{
		TapName:          label,
		Label:            label,
		Visible:          true,
		Type:             colType,
		MaxDecimalDigits: maxDecimals,
	}
}

// CatalogueDescriptor maps the columns of a tabular file onto catalogue
// sources.
type CatalogueDescriptor struct {
	DatasetName string
	Color       string
	LineWidth   int
	IDCol       string
	NameCol     string
	RACol       string
	DecCol      string
	Metadata    []MetadataDescriptor
}

func (d *CatalogueDescriptor) AddMetadata(m MetadataDescriptor) {
	d.Metadata = append(d.Metadata, m)
}

// Content is the descriptor as the frontend's mission descriptor.
func (d *CatalogueDescriptor) Content() map[string]any {
	metadata := d.Metadata
	if metadata == nil {
		metadata = []MetadataDescriptor{}
	}
	return map[string]any{
		"mission":                d.DatasetName,
		"tapTable":               "",
		"countColumn":            "",
		"guiShortName":           d.DatasetName,
		"guiLongName":            d.DatasetName,
		"histoColor":             d.Color,
		"countFovLimit":          360,
		"fovLimit":               90.0,
		"archiveURL":             "",
		"archiveProductURI":      "",
		"adsPublicationsMaxRows": 0,
		"tabCount":               0,
		"sourceLimit":            100000,
		"sourceLimitDescription": "",
		"posTapColumn":           "pos",
		"polygonRaTapColumn":     d.RACol,
		"polygonDecTapColumn":    d.DecCol,
		"polygonNameTapColumn":   d.NameCol,
		"orderBy":                "",
		"metadata":               metadata,
	}
}

type FootprintSetDescriptor struct {
	DatasetName  string
	Color        string
	LineWidth    int
	IDCol        string
	NameCol      string
	STCSCol      string
	RACenterCol  string
	DecCenterCol string
	Metadata     []MetadataDescriptor
}

func (d *FootprintSetDescriptor) AddMetadata(m MetadataDescriptor) {
	d.Metadata = append(d.Metadata, m)
}

// metadataFor builds the details entry for an unmapped column. Without
// declared metadata every column is kept as STRING; with declared metadata
// only declared labels are kept.
func metadataFor(declared []MetadataDescriptor, column, value string) (Metadata, bool) {
	if len(declared) == 0 {
		return Metadata{Name: column, Value: value, Type: TypeString}, true
	}
	for _, m := range declared {
		if m.TapName == column {
			return Metadata{Name: m.TapName, Value: value, Type: m.Type}, true
		}
	}
	return Metadata{}, false
}
