package widget

import "context"

// TapServices lists the external TAP services predefined in ESASky.
func (w *Widget) TapServices(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getAvailableTapServices", nil)
}

// TapMissions lists every mission and data product of the predefined TAP
// services.
func (w *Widget) TapMissions(ctx context.Context) (any, error) {
	return w.sendReceive(ctx, "getAllAvailableTapMissions", nil)
}

// TapADQL returns the query that would run against service.
func (w *Widget) TapADQL(ctx context.Context, service string) (any, error) {
	return w.sendReceive(ctx, "getTapADQL", map[string]any{"tapService": service})
}

func (w *Widget) TapServiceCount(ctx context.Context, service string) (any, error) {
	return w.sendReceive(ctx, "getTapServiceCount", map[string]any{"tapService": service})
}

func (w *Widget) PlotTapService(ctx context.Context, service string) (any, error) {
	return w.sendReceive(ctx, "plotTapService", map[string]any{"tapService": service})
}

// CustomTap describes a query against an arbitrary TAP service.
type CustomTap struct {
	Name   string `json:"name"`
	TapURL string `json:"tapUrl"`
	ADQL   string `json:"adql"`
	// DataOnlyInView restricts the query to the current view. Nil means
	// true.
	DataOnlyInView *bool  `json:"dataOnlyInView,omitempty"`
	Color          string `json:"color"`
	// Limit caps the rows shown; zero lets the frontend pick.
	Limit int `json:"limit"`
}

// PlotCustomTap queries the TAP service described by q and plots the rows.
func (w *Widget) PlotCustomTap(ctx context.Context, q CustomTap) error {
	inView := true
	if q.DataOnlyInView != nil {
		inView = *q.DataOnlyInView
	}
	limit := q.Limit
	if limit == 0 {
		limit = -1
	}
	return w.sendIgnore(ctx, "plotTapServiceWithDetails", map[string]any{
		"name":           q.Name,
		"tapUrl":         q.TapURL,
		"dataOnlyInView": inView,
		"adql":           q.ADQL,
		"color":          q.Color,
		"limit":          limit,
	})
}
