package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/HsiangNianian/esaskywidget/internal/hips"
	"github.com/HsiangNianian/esaskywidget/internal/sky"
)

// browseColumns are the fields kept from the global HiPS list.
var browseColumns = []string{
	"ID",
	"obs_title",
	"moc_order",
	"moc_sky_fraction",
	"em_min",
	"em_max",
	"hips_service_url",
}

func (w *Widget) OpenSkyPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "openSkyPanel", nil)
}

func (w *Widget) CloseSkyPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "closeSkyPanel", nil)
}

// SkyRowCount returns the number of rows in the sky panel.
func (w *Widget) SkyRowCount(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getNumberOfSkyRows", nil)
}

// RemoveHiPS removes the sky panel row at index; -1 removes every row but
// the first.
func (w *Widget) RemoveHiPS(ctx context.Context, index int) (any, error) {
	return w.sendReceive(ctx, "removeHips", map[string]any{"index": index})
}

// SetHiPSSliderValue fades between sky rows; valid values are 0 to rows-1.
func (w *Widget) SetHiPSSliderValue(ctx context.Context, value float64) error {
	return w.sendIgnore(ctx, "setHipsSliderValue", map[string]any{"value": value})
}

// SelectHiPS switches the active sky row to name. With an empty url the
// name must be one ESASky already knows; otherwise the survey is described
// from the properties file found at url.
func (w *Widget) SelectHiPS(ctx context.Context, name, url string) (any, error) {
	if url == "" || url == "default" {
		return w.sendReceive(ctx, "changeHips", map[string]any{"hipsName": name})
	}
	h, err := w.ParseHiPSURL(ctx, name, url)
	if err != nil {
		return nil, err
	}
	return nil, w.sendIgnore(ctx, "changeHipsWithParams", h.Content())
}

// AddHiPS adds a new sky row, by known name or from the survey at url.
func (w *Widget) AddHiPS(ctx context.Context, name, url string) (any, error) {
	if url == "" || url == "default" {
		return w.sendReceive(ctx, "addHips", map[string]any{"hipsName": name})
	}
	h, err := w.ParseHiPSURL(ctx, name, url)
	if err != nil {
		return nil, err
	}
	return nil, w.sendIgnore(ctx, "addHipsWithParams", h.Content())
}

// AddLocalHiPS exposes a local survey directory through the tile proxy and
// returns the URL the frontend will load it from.
func (w *Widget) AddLocalHiPS(ctx context.Context, dir string) (string, error) {
	if w.opts.Proxy == nil {
		return "", ErrNoProxy
	}
	return w.opts.Proxy.Register(ctx, dir)
}

// ParseHiPSURL reads the survey's properties file. Local directories are
// registered with the tile proxy first.
func (w *Widget) ParseHiPSURL(ctx context.Context, name, url string) (*sky.HiPS, error) {
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	props, err := hips.ReadProperties(ctx, w.client, url)
	if err != nil {
		return nil, err
	}
	if !hips.IsRemote(url) {
		if url, err = w.AddLocalHiPS(ctx, url); err != nil {
			return nil, err
		}
	}
	h, err := props.Survey(name, url)
	if err != nil {
		return nil, err
	}
	log.Printf("hips parsed: url=%s/index.html format=%s", h.URL, h.ImgFormat)
	return h, nil
}

// PublicHiPS fetches ESASky's public HiPS list grouped by wavelength. With a
// wavelength only that group is returned.
func (w *Widget) PublicHiPS(ctx context.Context, wavelength string) (map[string]any, error) {
	body, err := w.fetch(ctx, w.opts.HiPSSourcesURL)
	if err != nil {
		return nil, err
	}
	hipsMap, err := parseHiPSSources(body)
	if err != nil {
		return nil, err
	}
	if wavelength == "" {
		return hipsMap, nil
	}

	group, ok := hipsMap[strings.ToUpper(wavelength)]
	if !ok {
		keys := make([]string, 0, len(hipsMap))
		for k := range hipsMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("no wavelength %q in ESASky, available wavelengths are %v", wavelength, keys)
	}
	m, _ := group.(map[string]any)
	return m, nil
}

type hipsSources struct {
	Total       *int `json:"total"`
	MenuEntries []struct {
		Wavelength string           `json:"wavelength"`
		Total      int              `json:"total"`
		HiPS       []map[string]any `json:"hips"`
	} `json:"menuEntries"`
}

func parseHiPSSources(body []byte) (map[string]any, error) {
	var src hipsSources
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("parse hips sources failed: %w", err)
	}
	out := map[string]any{}
	if src.Total == nil {
		return out, nil
	}
	for i := 0; i < *src.Total && i < len(src.MenuEntries); i++ {
		entry := src.MenuEntries[i]
		group := map[string]any{}
		for j := 0; j < entry.Total && j < len(entry.HiPS); j++ {
			h := entry.HiPS[j]
			if name, ok := h["surveyName"].(string); ok {
				group[name] = h
			}
		}
		out[entry.Wavelength] = group
	}
	return out, nil
}

// BrowseHiPS fetches the global HiPS list, trimmed to a few descriptive
// columns.
func (w *Widget) BrowseHiPS(ctx context.Context) ([]map[string]any, error) {
	body, err := w.fetch(ctx, w.opts.HiPSListURL)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("parse hips list failed: %w", err)
	}
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		row := make(map[string]any, len(browseColumns))
		for _, col := range browseColumns {
			row[col] = r[col]
		}
		out = append(out, row)
	}
	return out, nil
}

func (w *Widget) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s failed: status=%d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
