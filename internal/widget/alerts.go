package widget

import "context"

// GWIds returns the ids of every gravitational wave event ESASky knows.
func (w *Widget) GWIds(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getGWIds", nil)
}

func (w *Widget) GWData(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getAllGWData", nil)
}

func (w *Widget) NeutrinoData(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getNeutrinoEventData", nil)
}

// ShowGWEvent opens the event with the given GraceDB id.
func (w *Widget) ShowGWEvent(ctx context.Context, id string) error {
	return w.sendIgnore(ctx, "showGWEvent", map[string]any{"id": id})
}

func (w *Widget) OpenNeutrinoPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "openNeutrinoPanel", nil)
}

func (w *Widget) OpenGWPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "openGWPanel", nil)
}

func (w *Widget) CloseAlertPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "closeAlertPanel", nil)
}

func (w *Widget) OpenSearchPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "showSearchTool", nil)
}

func (w *Widget) CloseSearchPanel(ctx context.Context) error {
	return w.sendIgnore(ctx, "closeSearchTool", nil)
}

// ConeSearch sets a cone search area.
func (w *Widget) ConeSearch(ctx context.Context, c Cone) error {
	return w.sendIgnore(ctx, "setConeSearchArea", map[string]any{"ra": c.RA, "dec": c.Dec, "radius": c.Radius})
}

// PolygonSearch sets a polygon search area from an STC-S string.
func (w *Widget) PolygonSearch(ctx context.Context, stcs string) error {
	return w.sendIgnore(ctx, "setPolygonSearchArea", map[string]any{"stcs": stcs})
}

func (w *Widget) ClearSearch(ctx context.Context) error {
	return w.sendIgnore(ctx, "clearSearchArea", nil)
}
