package sky

import "log"

type HiPS struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CooFrame  CooFrame  `json:"cooframe"`
	MaxOrder  string    `json:"maxnorder"`
	ImgFormat ImgFormat `json:"imgformat"`
}

// NewHiPS falls back to J2000 and png for values the frontend would not
// understand.
func NewHiPS(name, url, cooframe, maxOrder, imgFormat string) *HiPS {
	format, ok := ParseImgFormat(imgFormat)
	if !ok {
		log.Printf("image format %q is not recognized, possible options are jpeg, png, applied png", imgFormat)
		format = FormatPNG
	}
	return &HiPS{
		Name:      name,
		URL:       url,
		CooFrame:  frameOrDefault(cooframe),
		MaxOrder:  maxOrder,
		ImgFormat: format,
	}
}

// Content is the payload for changeHipsWithParams and addHipsWithParams.
func (h *HiPS) Content() map[string]any {
	return map[string]any{"hips": h}
}
