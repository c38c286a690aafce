package widget

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HsiangNianian/esaskywidget/internal/comm"
	"github.com/HsiangNianian/esaskywidget/internal/correlator"
	"github.com/HsiangNianian/esaskywidget/internal/protocol"
	"github.com/HsiangNianian/esaskywidget/internal/sky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replyFunc func(lb *comm.Loopback, s comm.Sent)

// answer replies to every correlated frame with values.
func answer(values any) replyFunc {
	return func(lb *comm.Loopback, s comm.Sent) {
		lb.Deliver(map[string]any{
			protocol.KeyMsgID:  s.Msg.Content.MsgID,
			protocol.KeyValues: values,
		})
	}
}

func newTestWidget(t *testing.T, reply replyFunc, opts Options) (*Widget, *comm.Loopback) {
	t.Helper()
	lb := comm.NewLoopback()
	lb.OnSend(func(s comm.Sent) {
		if s.Msg.Content.Event == protocol.HandshakeEvent {
			lb.Deliver(map[string]any{protocol.KeyInit: true})
			return
		}
		if reply != nil {
			reply(lb, s)
		}
	})
	corr := correlator.New(lb, correlator.Options{
		RequestTimeout:   time.Second,
		HandshakeTimeout: 200 * time.Millisecond,
	})

	if opts.MessageTimeout == 0 {
		opts.MessageTimeout = time.Second
	}
	if opts.TargetSettle == 0 {
		opts.TargetSettle = -1
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = t.TempDir()
	}
	w, err := New(corr, opts)
	require.NoError(t, err)
	return w, lb
}

func lastContent(t *testing.T, lb *comm.Loopback, event string) map[string]any {
	t.Helper()
	s, ok := lb.Last(event)
	require.True(t, ok, "no %s frame sent", event)
	return s.Msg.Content.Content
}

func TestNewValidatesLanguage(t *testing.T) {
	corr := correlator.New(comm.NewLoopback(), correlator.Options{})

	_, err := New(corr, Options{Lang: "fr"})
	assert.ErrorIs(t, err, ErrInvalidLang)

	w, err := New(corr, Options{Lang: "ZH"})
	require.NoError(t, err)
	assert.Equal(t, "zh", w.Lang())
	assert.Equal(t, "800px", w.ViewHeight())
}

func TestSetViewHeight(t *testing.T) {
	w, _ := newTestWidget(t, nil, Options{ViewHeight: "600px"})
	assert.Equal(t, "600px", w.ViewHeight())
	w.SetViewHeight("800")
	assert.Equal(t, "800px", w.ViewHeight())
}

func TestFireAndForgetCommands(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		event   string
		run     func(w *Widget) error
		content map[string]any
	}{
		{"showCoordinateGrid", func(w *Widget) error { return w.ShowCooGrid(ctx, true) }, map[string]any{"show": true}},
		{"goToRaDec", func(w *Widget) error { return w.GoTo(ctx, "10.68", "41.27") }, map[string]any{"ra": "10.68", "dec": "41.27"}},
		{"goToTargetName", func(w *Widget) error { return w.GoToTarget(ctx, "M51") }, map[string]any{"targetName": "M51"}},
		{"setFov", func(w *Widget) error { return w.SetFoV(ctx, 2.5) }, map[string]any{"fov": 2.5}},
		{"setHipsColorPalette", func(w *Widget) error { return w.SetHiPSColorPalette(ctx, "PLANCK") }, map[string]any{"colorPalette": "PLANCK"}},
		{"closeResultPanelTab", func(w *Widget) error { return w.CloseResultPanelTab(ctx, -1) }, map[string]any{"index": -1}},
		{"closeAllResultPanelTabs", func(w *Widget) error { return w.CloseAllResultPanelTabs(ctx) }, map[string]any{}},
		{"openJwstPanel", func(w *Widget) error { return w.OpenJWSTPanel(ctx) }, map[string]any{}},
		{"closeJwstPanel", func(w *Widget) error { return w.CloseJWSTPanel(ctx) }, map[string]any{}},
		{"clearJwstAll", func(w *Widget) error { return w.ClearJWST(ctx) }, map[string]any{}},
		{"clearCatalogue", func(w *Widget) error { return w.ClearCatalogue(ctx, "cat") }, map[string]any{"overlayName": "cat"}},
		{"deleteCatalogue", func(w *Widget) error { return w.DeleteCatalogue(ctx, "cat") }, map[string]any{"overlayName": "cat"}},
		{"clearFootprintsOverlay", func(w *Widget) error { return w.ClearFootprints(ctx, "fp") }, map[string]any{"overlayName": "fp"}},
		{"deleteFootprintsOverlay", func(w *Widget) error { return w.DeleteFootprints(ctx, "fp") }, map[string]any{"overlayName": "fp"}},
		{"removeMOC", func(w *Widget) error { return w.RemoveMOC(ctx, "") }, map[string]any{"name": "MOC"}},
		{"openSkyPanel", func(w *Widget) error { return w.OpenSkyPanel(ctx) }, map[string]any{}},
		{"closeSkyPanel", func(w *Widget) error { return w.CloseSkyPanel(ctx) }, map[string]any{}},
		{"setHipsSliderValue", func(w *Widget) error { return w.SetHiPSSliderValue(ctx, 1.5) }, map[string]any{"value": 1.5}},
		{"plotTapServiceWithDetails", func(w *Widget) error {
			return w.PlotCustomTap(ctx, CustomTap{Name: "gaia", TapURL: "https://tap", ADQL: "SELECT 1"})
		}, map[string]any{"name": "gaia", "tapUrl": "https://tap", "adql": "SELECT 1", "dataOnlyInView": true, "color": "", "limit": -1}},
		{"restoreState", func(w *Widget) error { return w.RestoreSession(ctx, map[string]any{"fov": 3}) }, map[string]any{"state": map[string]any{"fov": 3}}},
		{"showGWEvent", func(w *Widget) error { return w.ShowGWEvent(ctx, "S190425z") }, map[string]any{"id": "S190425z"}},
		{"openNeutrinoPanel", func(w *Widget) error { return w.OpenNeutrinoPanel(ctx) }, map[string]any{}},
		{"openGWPanel", func(w *Widget) error { return w.OpenGWPanel(ctx) }, map[string]any{}},
		{"closeAlertPanel", func(w *Widget) error { return w.CloseAlertPanel(ctx) }, map[string]any{}},
		{"showSearchTool", func(w *Widget) error { return w.OpenSearchPanel(ctx) }, map[string]any{}},
		{"closeSearchTool", func(w *Widget) error { return w.CloseSearchPanel(ctx) }, map[string]any{}},
		{"setConeSearchArea", func(w *Widget) error { return w.ConeSearch(ctx, Cone{RA: "1", Dec: "2", Radius: "0.5"}) }, map[string]any{"ra": "1", "dec": "2", "radius": "0.5"}},
		{"setPolygonSearchArea", func(w *Widget) error { return w.PolygonSearch(ctx, "POLYGON 1 2 3 4") }, map[string]any{"stcs": "POLYGON 1 2 3 4"}},
		{"clearSearchArea", func(w *Widget) error { return w.ClearSearch(ctx) }, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			w, lb := newTestWidget(t, nil, Options{})
			require.NoError(t, tt.run(w))
			assert.Equal(t, tt.content, lastContent(t, lb, tt.event))
			assert.Equal(t, 1, lb.Count(tt.event))
			assert.Equal(t, 1, lb.Count(protocol.HandshakeEvent))
		})
	}
}

func TestRequestCommands(t *testing.T) {
	ctx := context.Background()
	cone := Cone{RA: "10", Dec: "20", Radius: "0.1"}
	tests := []struct {
		name    string
		event   string
		run     func(w *Widget) (any, error)
		content map[string]any
	}{
		{"center", "getCenter", func(w *Widget) (any, error) { return w.GetCenter(ctx, "") }, map[string]any{"cooFrame": "J2000"}},
		{"center galactic", "getCenter", func(w *Widget) (any, error) { return w.GetCenter(ctx, "GALACTIC") }, map[string]any{"cooFrame": "GALACTIC"}},
		{"plot obs", "plotObservations", func(w *Widget) (any, error) { return w.PlotObservations(ctx, "XMM") }, map[string]any{"missionId": "XMM"}},
		{"plot cat", "plotCatalogues", func(w *Widget) (any, error) { return w.PlotCatalogues(ctx, "Gaia DR3") }, map[string]any{"missionId": "Gaia DR3"}},
		{"plot spec", "plotSpectra", func(w *Widget) (any, error) { return w.PlotSpectra(ctx, "IUE") }, map[string]any{"missionId": "IUE"}},
		{"cone obs", "plotObservations", func(w *Widget) (any, error) { return w.ConeSearchObservations(ctx, "HST", cone) },
			map[string]any{"missionId": "HST", "ra": "10", "dec": "20", "radius": "0.1"}},
		{"cone cat", "plotCatalogues", func(w *Widget) (any, error) { return w.ConeSearchCatalogues(ctx, "HST", cone) },
			map[string]any{"missionId": "HST", "ra": "10", "dec": "20", "radius": "0.1"}},
		{"cone spec", "plotSpectra", func(w *Widget) (any, error) { return w.ConeSearchSpectra(ctx, "HST", cone) },
			map[string]any{"missionId": "HST", "ra": "10", "dec": "20", "radius": "0.1"}},
		{"obs count", "getObservationsCount", func(w *Widget) (any, error) { return w.ObservationsCount(ctx) }, map[string]any{}},
		{"cat count", "getCataloguesCount", func(w *Widget) (any, error) { return w.CataloguesCount(ctx) }, map[string]any{}},
		{"pub count", "getPublicationsCount", func(w *Widget) (any, error) { return w.PublicationsCount(ctx) }, map[string]any{}},
		{"spec count", "getSpectraCount", func(w *Widget) (any, error) { return w.SpectraCount(ctx) }, map[string]any{}},
		{"result data", "getResultPanelData", func(w *Widget) (any, error) { return w.ResultPanelData(ctx) }, map[string]any{}},
		{"available hips", "getAvailableHiPS", func(w *Widget) (any, error) { return w.AvailableHiPS(ctx, "X-RAY") }, map[string]any{"wavelength": "X-RAY"}},
		{"jwst", "addJwst", func(w *Widget) (any, error) {
			return w.AddJWST(ctx, JWSTInstrument{Instrument: "NIRSpec", Detector: "NRS1"})
		}, map[string]any{"instrument": "NIRSpec", "detector": "NRS1", "showAllInstruments": false}},
		{"jwst placed", "addJwstWithCoordinates", func(w *Widget) (any, error) {
			return w.AddJWST(ctx, JWSTInstrument{Instrument: "MIRI", Detector: "IMA", ShowAllInstruments: true, RA: "1", Dec: "2", Rotation: "45"})
		}, map[string]any{"instrument": "MIRI", "detector": "IMA", "showAllInstruments": true, "ra": "1", "dec": "2", "rotation": "45"}},
		{"sky rows", "getNumberOfSkyRows", func(w *Widget) (any, error) { return w.SkyRowCount(ctx) }, map[string]any{}},
		{"remove hips", "removeHips", func(w *Widget) (any, error) { return w.RemoveHiPS(ctx, -1) }, map[string]any{"index": -1}},
		{"select hips", "changeHips", func(w *Widget) (any, error) { return w.SelectHiPS(ctx, "DSS2 color", "") }, map[string]any{"hipsName": "DSS2 color"}},
		{"add hips", "addHips", func(w *Widget) (any, error) { return w.AddHiPS(ctx, "2MASS", "default") }, map[string]any{"hipsName": "2MASS"}},
		{"tap services", "getAvailableTapServices", func(w *Widget) (any, error) { return w.TapServices(ctx) }, map[string]any{}},
		{"tap missions", "getAllAvailableTapMissions", func(w *Widget) (any, error) { return w.TapMissions(ctx) }, map[string]any{}},
		{"tap adql", "getTapADQL", func(w *Widget) (any, error) { return w.TapADQL(ctx, "vizier") }, map[string]any{"tapService": "vizier"}},
		{"tap count", "getTapServiceCount", func(w *Widget) (any, error) { return w.TapServiceCount(ctx, "vizier") }, map[string]any{"tapService": "vizier"}},
		{"plot tap", "plotTapService", func(w *Widget) (any, error) { return w.PlotTapService(ctx, "vizier") }, map[string]any{"tapService": "vizier"}},
		{"gw ids", "getGWIds", func(w *Widget) (any, error) { return w.GWIds(ctx) }, map[string]any{}},
		{"gw data", "getAllGWData", func(w *Widget) (any, error) { return w.GWData(ctx) }, map[string]any{}},
		{"neutrino data", "getNeutrinoEventData", func(w *Widget) (any, error) { return w.NeutrinoData(ctx) }, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, lb := newTestWidget(t, answer([]any{"ok"}), Options{})
			got, err := tt.run(w)
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, tt.content, lastContent(t, lb, tt.event))
		})
	}
}

func TestGetCenterRejectsUnknownFrame(t *testing.T) {
	w, lb := newTestWidget(t, answer(nil), Options{})
	_, err := w.GetCenter(context.Background(), "FK5")
	assert.ErrorIs(t, err, ErrInvalidCooFrame)
	assert.Empty(t, lb.Sent())
}

func TestRequestTimesOut(t *testing.T) {
	w, _ := newTestWidget(t, nil, Options{MessageTimeout: 50 * time.Millisecond})
	_, err := w.PlotObservations(context.Background(), "XMM")
	assert.ErrorIs(t, err, correlator.ErrTimedOut)
}

func TestChannelNotReady(t *testing.T) {
	w, lb := newTestWidget(t, nil, Options{})
	lb.SetReady(false)
	assert.ErrorIs(t, w.SetFoV(context.Background(), 1), correlator.ErrChannelNotInitialized)
}

func TestOverlayCatalogueAndFootprints(t *testing.T) {
	ctx := context.Background()
	w, lb := newTestWidget(t, nil, Options{})

	cat := sky.NewCatalogue("stars", "J2000", "red", 3)
	require.NoError(t, cat.AddSource("vega", "279.2", "38.8", "", nil))
	require.NoError(t, w.OverlayCatalogue(ctx, cat, false))
	require.NoError(t, w.OverlayCatalogue(ctx, cat, true))
	assert.Equal(t, 1, lb.Count("overlayCatalogue"))

	set, ok := lastContent(t, lb, "overlayCatalogueWithDetails")["overlaySet"].(sky.OverlaySet)
	require.True(t, ok)
	assert.Equal(t, "SourceListOverlay", set.Type)
	assert.Equal(t, "stars", set.OverlayName)
	assert.Len(t, set.SkyObjectList, 1)

	fps := sky.NewFootprintSet("fp", "J2000", "", 0)
	require.NoError(t, fps.AddFootprint("a", "POLYGON 1 2 3 4", "", "", "", nil))
	require.NoError(t, w.OverlayFootprints(ctx, fps, false))
	set, ok = lastContent(t, lb, "overlayFootprints")["overlaySet"].(sky.OverlaySet)
	require.True(t, ok)
	assert.Equal(t, "FootprintListOverlay", set.Type)
}

func TestOverlayFromCSVFiles(t *testing.T) {
	ctx := context.Background()
	w, lb := newTestWidget(t, nil, Options{})
	dir := t.TempDir()

	catPath := filepath.Join(dir, "cat.csv")
	require.NoError(t, os.WriteFile(catPath, []byte("id,ra,dec\n1,10,20\n2,11,21\n"), 0o600))
	require.NoError(t, w.OverlayCatalogueCSV(ctx, catPath, ',', sky.CatalogueDescriptor{
		DatasetName: "mine", IDCol: "id", NameCol: "id", RACol: "ra", DecCol: "dec",
	}, "J2000"))
	set := lastContent(t, lb, "overlayCatalogueWithDetails")["overlaySet"].(sky.OverlaySet)
	assert.Len(t, set.SkyObjectList, 2)

	fpPath := filepath.Join(dir, "fp.csv")
	require.NoError(t, os.WriteFile(fpPath, []byte("name;region\nx;CIRCLE 1 2 0.1\n"), 0o600))
	require.NoError(t, w.OverlayFootprintsCSV(ctx, fpPath, ';', sky.FootprintSetDescriptor{
		DatasetName: "regions", NameCol: "name", STCSCol: "region",
	}))
	set = lastContent(t, lb, "overlayFootprintsWithDetails")["overlaySet"].(sky.OverlaySet)
	assert.Len(t, set.SkyObjectList, 1)

	assert.Error(t, w.OverlayCatalogueCSV(ctx, filepath.Join(dir, "missing.csv"), ',', sky.CatalogueDescriptor{}, "J2000"))
}

func TestOverlayTables(t *testing.T) {
	ctx := context.Background()
	w, lb := newTestWidget(t, nil, Options{})

	table := sky.Table{
		Columns: []sky.Column{{Name: "id", UCD: "meta.id;meta.main"}, {Name: "ra", UCD: "pos.eq.ra;meta.main"}, {Name: "dec", UCD: "pos.eq.dec;meta.main"}},
		Rows:    [][]string{{"M1", "83.6", "22.0"}},
	}
	require.NoError(t, w.OverlayCatalogueTable(ctx, CatalogueTable{Name: "messier", CooFrame: "J2000", Table: table}))
	set := lastContent(t, lb, "overlayCatalogue")["overlaySet"].(sky.OverlaySet)
	assert.Equal(t, 5, set.LineWidth)

	regions := sky.Table{Columns: []sky.Column{{Name: "s"}}, Rows: [][]string{{"POLYGON 1 2 3 4"}}}
	require.NoError(t, w.OverlayFootprintsTable(ctx, sky.FootprintSetDescriptor{STCSCol: "s"}, regions))
	assert.Equal(t, 1, lb.Count("overlayFootprintsWithDetails"))
}

func TestOverlayMOC(t *testing.T) {
	ctx := context.Background()
	w, lb := newTestWidget(t, nil, Options{})

	require.NoError(t, w.OverlayMOC(ctx, MOC{Orders: map[string][]string{"3": {"1-3"}}, Options: sky.MOCOptions{Color: "red"}}))
	content := lastContent(t, lb, "addMOC")
	assert.Equal(t, `{"3":[1,2,3]}`, content["mocData"])
	assert.Equal(t, "MOC", content["name"])
	assert.Equal(t, sky.MOCOptions{Color: "red", Opacity: 0.2, Mode: sky.MOCHealpix}, content["options"])

	require.NoError(t, w.OverlayMOC(ctx, MOC{Name: "ascii", Data: "4/10-11"}))
	assert.Equal(t, `{"4":[10,11]}`, lastContent(t, lb, "addMOC")["mocData"])

	assert.Error(t, w.OverlayMOC(ctx, MOC{Data: "4/x"}))
}

func TestSaveAndRestoreSession(t *testing.T) {
	ctx := context.Background()
	w, lb := newTestWidget(t, answer([]any{map[string]any{"session": map[string]any{"fov": 60.0}}}), Options{})
	path := filepath.Join(t.TempDir(), "session.json")

	state, err := w.SaveSession(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"fov": 60.0}, state)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fov": 60}`, string(b))

	require.NoError(t, w.RestoreSessionFile(ctx, path))
	assert.Equal(t, map[string]any{"state": map[string]any{"fov": 60.0}}, lastContent(t, lb, "restoreState"))

	assert.Error(t, w.RestoreSessionFile(ctx, filepath.Join(t.TempDir(), "nope.json")))
}

func TestSaveSessionWithoutFile(t *testing.T) {
	w, _ := newTestWidget(t, answer(map[string]any{"hips": []any{}}), Options{})
	state, err := w.SaveSession(context.Background(), "")
	require.NoError(t, err)

	b, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hips": []}`, string(b))
}
