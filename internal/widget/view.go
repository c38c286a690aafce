package widget

import (
	"context"
	"fmt"
)

// ShowCooGrid toggles the coordinate grid overlay.
func (w *Widget) ShowCooGrid(ctx context.Context, show bool) error {
	return w.sendIgnore(ctx, "showCoordinateGrid", map[string]any{"show": show})
}

// GetCenter returns the coordinate of the view centre in cooFrame, which is
// J2000 (the default) or GALACTIC.
func (w *Widget) GetCenter(ctx context.Context, cooFrame string) (any, error) {
	if cooFrame == "" {
		cooFrame = "J2000"
	}
	if cooFrame != "J2000" && cooFrame != "GALACTIC" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCooFrame, cooFrame)
	}
	return w.sendReceive(ctx, "getCenter", map[string]any{"cooFrame": cooFrame})
}

// GoTo centres the view on ra/dec, given in sexagesimal or decimal form in
// the current frame.
func (w *Widget) GoTo(ctx context.Context, ra, dec string) error {
	return w.sendIgnore(ctx, "goToRaDec", map[string]any{"ra": ra, "dec": dec})
}

// GoToTarget centres the view on a name resolved by SIMBAD.
func (w *Widget) GoToTarget(ctx context.Context, target string) error {
	if err := w.sendIgnore(ctx, "goToTargetName", map[string]any{"targetName": target}); err != nil {
		return err
	}
	return sleep(ctx, w.opts.TargetSettle)
}

func (w *Widget) SetFoV(ctx context.Context, fovDeg float64) error {
	return w.sendIgnore(ctx, "setFov", map[string]any{"fov": fovDeg})
}

// SetHiPSColorPalette changes the palette of the active sky.
func (w *Widget) SetHiPSColorPalette(ctx context.Context, palette string) error {
	return w.sendIgnore(ctx, "setHipsColorPalette", map[string]any{"colorPalette": palette})
}

func (w *Widget) PlotObservations(ctx context.Context, missionID string) (any, error) {
	return w.sendReceive(ctx, "plotObservations", map[string]any{"missionId": missionID})
}

func (w *Widget) PlotCatalogues(ctx context.Context, missionID string) (any, error) {
	return w.sendReceive(ctx, "plotCatalogues", map[string]any{"missionId": missionID})
}

func (w *Widget) PlotSpectra(ctx context.Context, missionID string) (any, error) {
	return w.sendReceive(ctx, "plotSpectra", map[string]any{"missionId": missionID})
}

// Cone is a cone search area; all values are decimal degrees.
type Cone struct {
	RA     string `json:"ra"`
	Dec    string `json:"dec"`
	Radius string `json:"radius"`
}

func coneContent(missionID string, c Cone) map[string]any {
	return map[string]any{"missionId": missionID, "ra": c.RA, "dec": c.Dec, "radius": c.Radius}
}

// ConeSearchObservations plots the mission's observations inside c.
func (w *Widget) ConeSearchObservations(ctx context.Context, missionID string, c Cone) (any, error) {
	return w.sendReceive(ctx, "plotObservations", coneContent(missionID, c))
}

func (w *Widget) ConeSearchCatalogues(ctx context.Context, missionID string, c Cone) (any, error) {
	return w.sendReceive(ctx, "plotCatalogues", coneContent(missionID, c))
}

func (w *Widget) ConeSearchSpectra(ctx context.Context, missionID string, c Cone) (any, error) {
	return w.sendReceive(ctx, "plotSpectra", coneContent(missionID, c))
}

// ObservationsCount returns the number of observations per mission in the
// current view.
func (w *Widget) ObservationsCount(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getObservationsCount", nil)
}

func (w *Widget) CataloguesCount(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getCataloguesCount", nil)
}

func (w *Widget) PublicationsCount(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getPublicationsCount", nil)
}

func (w *Widget) SpectraCount(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getSpectraCount", nil)
}

// ResultPanelData returns the content of the active result panel tab.
func (w *Widget) ResultPanelData(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getResultPanelData", nil)
}

// CloseResultPanelTab closes the tab at index; -1 closes the open one.
func (w *Widget) CloseResultPanelTab(ctx context.Context, index int) error {
	return w.sendIgnore(ctx, "closeResultPanelTab", map[string]any{"index": index})
}

func (w *Widget) CloseAllResultPanelTabs(ctx context.Context) error {
	return w.sendIgnore(ctx, "closeAllResultPanelTabs", nil)
}

// AvailableHiPS asks the frontend for its HiPS list, optionally narrowed to
// one wavelength.
func (w *Widget) AvailableHiPS(ctx context.Context, wavelength string) (any, error) {
	return w.sendReceive(ctx, "getAvailableHiPS", map[string]any{"wavelength": wavelength})
}

func (w *Widget) CloseJWSTPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "closeJwstPanel", nil)
}

func (w *Widget) OpenJWSTPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "openJwstPanel", nil)
}

// ClearJWST removes every row of the JWST planning panel.
func (w *Widget) ClearJWST(ctx context.Context) error {
	return w.sendIgnore(ctx, "clearJwstAll", nil)
}

// JWSTInstrument selects an instrument for the planning tool. When RA, Dec
// and Rotation are all set the instrument is placed there, otherwise at the
// view centre.
type JWSTInstrument struct {
	Instrument         string `json:"instrument"`
	Detector           string `json:"detector"`
	ShowAllInstruments bool   `json:"showAllInstruments"`
	RA                 string `json:"ra,omitempty"`
	Dec                string `json:"dec,omitempty"`
	Rotation           string `json:"rotation,omitempty"`
}

func (w *Widget) AddJWST(ctx context.Context, in JWSTInstrument) (any, error) {
	content := map[string]any{
		"instrument":         in.Instrument,
		"detector":           in.Detector,
		"showAllInstruments": in.ShowAllInstruments,
	}
	if in.RA == "" || in.Dec == "" || in.Rotation == "" {
		return w.sendReceive(ctx, "addJwst", content)
	}
	content["ra"] = in.RA
	content["dec"] = in.Dec
	content["rotation"] = in.Rotation
	return w.sendReceive(ctx, "addJwstWithCoordinates", content)
}
