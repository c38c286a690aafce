// Package sky holds the overlay models the frontend draws: catalogues,
// footprint sets, HiPS descriptions and MOC maps.
package sky

import (
	"errors"
	"log"
	"strings"
)

type CooFrame string

const (
	FrameJ2000    CooFrame = "J2000"
	FrameGalactic CooFrame = "Galactic"
)

type ImgFormat string

const (
	FormatJPEG ImgFormat = "jpeg"
	FormatPNG  ImgFormat = "png"
)

type MetadataType string

const (
	TypeString MetadataType = "STRING"
	TypeDouble MetadataType = "DOUBLE"
	TypeRA     MetadataType = "RA"
	TypeDec    MetadataType = "DEC"
)

const (
	defaultColor     = "#aa2345"
	defaultLineWidth = 10
)

var (
	ErrInvalidCooFrame = errors.New("coordinate frame not recognized")
	ErrInvalidID       = errors.New("id must be an integer")
	ErrInvalidSTCS     = errors.New("stcs has no coordinates")
)

// ParseCooFrame accepts "J2000" and "Galactic", case insensitively.
func ParseCooFrame(s string) (CooFrame, error) {
	switch strings.ToLower(s) {
	case "j2000":
		return FrameJ2000, nil
	case "galactic":
		return FrameGalactic, nil
	default:
		return "", ErrInvalidCooFrame
	}
}

// frameOrDefault falls back to J2000 for unknown frames, as the frontend
// does.
func frameOrDefault(s string) CooFrame {
	frame, err := ParseCooFrame(s)
	if err != nil {
		log.Printf("coordinates frame %q not recognized, possible options are J2000 and Galactic, applied J2000", s)
		return FrameJ2000
	}
	return frame
}

func ParseImgFormat(s string) (ImgFormat, bool) {
	switch ImgFormat(strings.ToLower(s)) {
	case FormatJPEG:
		return FormatJPEG, true
	case FormatPNG:
		return FormatPNG, true
	default:
		return "", false
	}
}

// Metadata is one extra column shown in the frontend's details panel.
type Metadata struct {
	Name  string       `json:"name"`
	Value string       `json:"value"`
	Type  MetadataType `json:"type"`
}

// UCDType maps a UCD to the frontend column type.
func UCDType(ucd string) MetadataType {
	if ucd == "meta.number" {
		return TypeDouble
	}
	return TypeString
}

// OverlaySet is the wire form shared by catalogues and footprint sets.
type OverlaySet struct {
	Type          string   `json:"type"`
	OverlayName   string   `json:"overlayName"`
	CooFrame      CooFrame `json:"cooframe"`
	Color         string   `json:"color"`
	LineWidth     int      `json:"lineWidth"`
	SkyObjectList any      `json:"skyObjectList"`
}

func colorOrDefault(color string) string {
	if color == "" {
		return defaultColor
	}
	return color
}

func lineWidthOrDefault(w int) int {
	if w <= 0 {
		return defaultLineWidth
	}
	return w
}
