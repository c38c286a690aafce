package widget

import (
	"context"
	"fmt"
	"os"

	"github.com/HsiangNianian/esaskywidget/internal/sky"
)

// OverlayCatalogue draws cat. With showData the frontend also opens the
// details panel.
func (w *Widget) OverlayCatalogue(ctx context.Context, cat *sky.Catalogue, showData bool) error {
	event := "overlayCatalogue"
	if showData {
		event = "overlayCatalogueWithDetails"
	}
	return w.sendIgnore(ctx, event, cat.Content())
}

// ClearCatalogue removes every source of the named catalogue but keeps the
// overlay.
func (w *Widget) ClearCatalogue(ctx context.Context, name string) error {
	return w.sendIgnore(ctx, "clearCatalogue", map[string]any{"overlayName": name})
}

func (w *Widget) DeleteCatalogue(ctx context.Context, name string) error {
	return w.sendIgnore(ctx, "deleteCatalogue", map[string]any{"overlayName": name})
}

func (w *Widget) OverlayFootprints(ctx context.Context, set *sky.FootprintSet, showData bool) error {
	event := "overlayFootprints"
	if showData {
		event = "overlayFootprintsWithDetails"
	}
	return w.sendIgnore(ctx, event, set.Content())
}

func (w *Widget) ClearFootprints(ctx context.Context, name string) error {
	return w.sendIgnore(ctx, "clearFootprintsOverlay", map[string]any{"overlayName": name})
}

func (w *Widget) DeleteFootprints(ctx context.Context, name string) error {
	return w.sendIgnore(ctx, "deleteFootprintsOverlay", map[string]any{"overlayName": name})
}

// OverlayCatalogueCSV loads a delimited file and overlays it with details.
func (w *Widget) OverlayCatalogueCSV(ctx context.Context, path string, delimiter rune, desc sky.CatalogueDescriptor, cooframe string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalogue csv failed: %w", err)
	}
	defer f.Close()

	cat, err := sky.LoadCatalogueCSV(f, delimiter, desc, cooframe)
	if err != nil {
		return fmt.Errorf("load catalogue csv %s: %w", path, err)
	}
	return w.OverlayCatalogue(ctx, cat, true)
}

// OverlayFootprintsCSV loads a delimited file of STC-S regions and overlays
// it with details.
func (w *Widget) OverlayFootprintsCSV(ctx context.Context, path string, delimiter rune, desc sky.FootprintSetDescriptor) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open footprints csv failed: %w", err)
	}
	defer f.Close()

	set, err := sky.LoadFootprintsCSV(f, delimiter, desc)
	if err != nil {
		return fmt.Errorf("load footprints csv %s: %w", path, err)
	}
	return w.OverlayFootprints(ctx, set, true)
}

// CatalogueTable names the columns of an in-memory table overlay. Empty
// column names are detected from UCDs.
type CatalogueTable struct {
	Name      string    `json:"name"`
	CooFrame  string    `json:"cooframe"`
	Color     string    `json:"color"`
	LineWidth int       `json:"lineWidth"`
	Table     sky.Table `json:"table"`
	RACol     string    `json:"raCol"`
	DecCol    string    `json:"decCol"`
	IDCol     string    `json:"idCol"`
}

func (w *Widget) OverlayCatalogueTable(ctx context.Context, t CatalogueTable) error {
	cat, err := sky.CatalogueFromTable(t.Name, t.CooFrame, t.Color, t.LineWidth, t.Table, t.RACol, t.DecCol, t.IDCol)
	if err != nil {
		return err
	}
	return w.OverlayCatalogue(ctx, cat, false)
}

func (w *Widget) OverlayFootprintsTable(ctx context.Context, desc sky.FootprintSetDescriptor, t sky.Table) error {
	set, err := sky.FootprintsFromTable(desc, t)
	if err != nil {
		return err
	}
	return w.OverlayFootprints(ctx, set, true)
}

// MOC is an addMOC request. Data is either an order to cells map or a MOC
// string (ASCII "order/cells" form or already serialised JSON).
type MOC struct {
	Name    string              `json:"name"`
	Orders  map[string][]string `json:"orders,omitempty"`
	Data    string              `json:"data,omitempty"`
	Options sky.MOCOptions      `json:"options"`
}

// OverlayMOC draws a HEALPix multi-order coverage map.
func (w *Widget) OverlayMOC(ctx context.Context, m MOC) error {
	var (
		data string
		err  error
	)
	if m.Orders != nil {
		data, err = sky.MOCFromOrders(m.Orders)
	} else {
		data, err = sky.MOCFromASCII(m.Data)
	}
	if err != nil {
		return err
	}
	if m.Name == "" {
		m.Name = "MOC"
	}
	if m.Options.Opacity <= 0 {
		m.Options.Opacity = 0.2
	}
	if m.Options.Mode == "" {
		m.Options.Mode = sky.MOCHealpix
	}
	return w.sendIgnore(ctx, "addMOC", map[string]any{
		"options": m.Options,
		"mocData": data,
		"name":    m.Name,
	})
}

func (w *Widget) RemoveMOC(ctx context.Context, name string) error {
	if name == "" {
		name = "MOC"
	}
	return w.sendIgnore(ctx, "removeMOC", map[string]any{"name": name})
}
