package widget

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/HsiangNianian/esaskywidget/internal/sky"
)

var ErrUnknownMethod = errors.New("unknown method")

// Reply is the outcome of a Call: the command's result and any human
// readable output the frontend attached to its replies.
type Reply struct {
	Result any    `json:"result,omitempty"`
	Output string `json:"output,omitempty"`
}

type command func(ctx context.Context, w *Widget, p Params) (any, error)

// legacyNames maps the camelCase names of the first API generation onto the
// current ones.
var legacyNames = map[string]string{
	"showCoordinateGrid":                "show_coo_grid",
	"getCenter":                         "get_center",
	"plotObservations":                  "plot_obs",
	"plotCatalogues":                    "plot_cat",
	"plotSpectra":                       "plot_spec",
	"coneSearchObservations":            "cs_obs",
	"coneSearchCatalogues":              "cs_cat",
	"coneSearchSpectra":                 "cs_spec",
	"getObservationsCount":              "get_obs_count",
	"getCataloguesCount":                "get_cat_count",
	"getPublicationsCount":              "get_pub_count",
	"getSpectraCount":                   "get_spec_count",
	"getResultPanelData":                "get_result_data",
	"closeResultPanelTab":               "close_result_tab",
	"closeAllResultPanelTabs":           "close_result",
	"getAvailableHiPS":                  "get_available_public_hips",
	"getAvailableHiPSAPI":               "get_available_hips",
	"goToRADec":                         "go_to",
	"setGoToRADec":                      "go_to",
	"goToTargetName":                    "go_to_target",
	"setFoV":                            "set_fov",
	"setHiPSColorPalette":               "set_hips_color",
	"closeJwstPanel":                    "close_jwst",
	"openJwstPanel":                     "open_jwst",
	"clearJwstAll":                      "clear_jwst",
	"addJwst":                           "add_jwst",
	"addJwstWithCoordinates":            "add_jwst",
	"overlayCatalogue":                  "overlay_cat",
	"overlayCatalogueWithDetails":       "overlay_cat",
	"clearCatalogue":                    "clear_cat",
	"deleteCatalogue":                   "delete_cat",
	"overlayFootprints":                 "overlay_footprints",
	"overlayFootprintsWithDetails":      "overlay_footprints",
	"clearFootprintsOverlay":            "clear_footprints",
	"deleteFootprintsOverlay":           "delete_footprints",
	"overlayFootprintsFromCSV":          "overlay_footprints_csv",
	"overlayFootprintsFromAstropyTable": "overlay_footprints_table",
	"overlayCatalogueFromAstropyTable":  "overlay_cat_table",
	"overlayCatalogueFromCSV":           "overlay_cat_csv",
	"overlayMOC":                        "overlay_moc",
	"removeMOC":                         "remove_moc",
	"openSkyPanel":                      "open_sky_panel",
	"closeSkyPanel":                     "close_sky_panel",
	"getNumberOfSkyRows":                "get_sky_row_count",
	"removeHiPS":                        "remove_hips",
	"setHiPSSliderValue":                "set_hips_slider",
	"addLocalHiPS":                      "add_hips_local",
	"setHiPS":                           "select_hips",
	"addHiPS":                           "add_hips",
	"browseHips":                        "browse_hips",
	"getAvailableTapServices":           "get_tap_services",
	"getAllAvailableTapMissions":        "get_tap_missions",
	"getTapADQL":                        "get_tap_query",
	"getTapServiceCount":                "get_tap_count",
	"plotTapService":                    "plot_tap",
	"plotTapServiceWithDetails":         "plot_custom_tap",
	"saveSession":                       "save_session",
	"restoreSessionFromFile":            "restore_session_file",
	"restoreSessionFromDict":            "restore_session_obj",
	"getGWIds":                          "get_gw_ids",
	"getGWData":                         "get_gw_data",
	"getNeutrinoEventData":              "get_neutorino_data",
	"showGWEvent":                       "show_gw_event",
	"openNeutrinoPanel":                 "open_neutorino_panel",
	"openGWPanel":                       "open_gw_panel",
	"closeAlertPanel":                   "close_event_panel",
	"showSearchToolPanel":               "open_search_panel",
	"closeSearchToolPanel":              "close_search_panel",
	"setConeSearchArea":                 "cone_search",
	"setPolygonSearchArea":              "poly_search",
	"clearSearchArea":                   "clear_search",
}

var commands = map[string]command{
	"show_coo_grid": func(ctx context.Context, w *Widget, p Params) (any, error) {
		show, err := p.Bool("show", true)
		if err != nil {
			return nil, err
		}
		return nil, w.ShowCooGrid(ctx, show)
	},
	"get_center": queryStr("cooframe", "J2000", (*Widget).GetCenter),
	"plot_obs":   queryStr("mission_id", "", (*Widget).PlotObservations),
	"plot_cat":   queryStr("mission_id", "", (*Widget).PlotCatalogues),
	"plot_spec":  queryStr("mission_id", "", (*Widget).PlotSpectra),
	"cs_obs":     coneQuery((*Widget).ConeSearchObservations),
	"cs_cat":     coneQuery((*Widget).ConeSearchCatalogues),
	"cs_spec":    coneQuery((*Widget).ConeSearchSpectra),

	"get_obs_count":   query((*Widget).ObservationsCount),
	"get_cat_count":   query((*Widget).CataloguesCount),
	"get_pub_count":   query((*Widget).PublicationsCount),
	"get_spec_count":  query((*Widget).SpectraCount),
	"get_result_data": query((*Widget).ResultPanelData),
	"close_result_tab": func(ctx context.Context, w *Widget, p Params) (any, error) {
		index, err := p.Int("index", -1)
		if err != nil {
			return nil, err
		}
		return nil, w.CloseResultPanelTab(ctx, index)
	},
	"close_result": action((*Widget).CloseAllResultPanelTabs),
	"get_available_public_hips": func(ctx context.Context, w *Widget, p Params) (any, error) {
		wavelength, err := p.String("wavelength", "")
		if err != nil {
			return nil, err
		}
		return w.PublicHiPS(ctx, wavelength)
	},
	"get_available_hips": queryStr("wavelength", "", (*Widget).AvailableHiPS),

	"go_to": func(ctx context.Context, w *Widget, p Params) (any, error) {
		ra, err := p.String("ra", "")
		if err != nil {
			return nil, err
		}
		dec, err := p.String("dec", "")
		if err != nil {
			return nil, err
		}
		return nil, w.GoTo(ctx, ra, dec)
	},
	"go_to_target": actionStr("target_name", "", (*Widget).GoToTarget),
	"set_fov": func(ctx context.Context, w *Widget, p Params) (any, error) {
		fov, err := p.Float("fov_deg", 0)
		if err != nil {
			return nil, err
		}
		return nil, w.SetFoV(ctx, fov)
	},
	"set_hips_color": actionStr("color_palette", "", (*Widget).SetHiPSColorPalette),

	"close_jwst": action((*Widget).CloseJWSTPanel),
	"open_jwst":  action((*Widget).OpenJWSTPanel),
	"clear_jwst": action((*Widget).ClearJWST),
	"add_jwst": func(ctx context.Context, w *Widget, p Params) (any, error) {
		var in JWSTInstrument
		var err error
		if in.Instrument, err = p.String("instrument", ""); err != nil {
			return nil, err
		}
		if in.Detector, err = p.String("detector", ""); err != nil {
			return nil, err
		}
		if in.ShowAllInstruments, err = p.Bool("show_all_instr", false); err != nil {
			return nil, err
		}
		if in.RA, err = p.String("ra", ""); err != nil {
			return nil, err
		}
		if in.Dec, err = p.String("dec", ""); err != nil {
			return nil, err
		}
		if in.Rotation, err = p.String("rotation", ""); err != nil {
			return nil, err
		}
		return w.AddJWST(ctx, in)
	},

	"overlay_cat": func(ctx context.Context, w *Widget, p Params) (any, error) {
		var cp catalogueParams
		if err := p.Decode("catalogue", &cp); err != nil {
			return nil, err
		}
		cat, err := cp.catalogue()
		if err != nil {
			return nil, err
		}
		show, err := p.Bool("show_data", false)
		if err != nil {
			return nil, err
		}
		return nil, w.OverlayCatalogue(ctx, cat, show)
	},
	"clear_cat":  actionStr("name", "", (*Widget).ClearCatalogue),
	"delete_cat": actionStr("name", "", (*Widget).DeleteCatalogue),
	"overlay_footprints": func(ctx context.Context, w *Widget, p Params) (any, error) {
		var fp footprintSetParams
		if err := p.Decode("footprints", &fp); err != nil {
			return nil, err
		}
		set, err := fp.footprintSet()
		if err != nil {
			return nil, err
		}
		show, err := p.Bool("show_data", false)
		if err != nil {
			return nil, err
		}
		return nil, w.OverlayFootprints(ctx, set, show)
	},
	"clear_footprints":  actionStr("overlay_name", "", (*Widget).ClearFootprints),
	"delete_footprints": actionStr("overlay_name", "", (*Widget).DeleteFootprints),
	"overlay_cat_csv": func(ctx context.Context, w *Widget, p Params) (any, error) {
		path, delim, err := csvSource(p, "file_path")
		if err != nil {
			return nil, err
		}
		var dp catalogueDescriptorParams
		if err := p.Decode("descriptor", &dp); err != nil {
			return nil, err
		}
		cooframe, err := p.String("cooframe", string(sky.FrameJ2000))
		if err != nil {
			return nil, err
		}
		return nil, w.OverlayCatalogueCSV(ctx, path, delim, dp.descriptor(), cooframe)
	},
	"overlay_footprints_csv": func(ctx context.Context, w *Widget, p Params) (any, error) {
		path, delim, err := csvSource(p, "path")
		if err != nil {
			return nil, err
		}
		var dp footprintDescriptorParams
		if err := p.Decode("descriptor", &dp); err != nil {
			return nil, err
		}
		return nil, w.OverlayFootprintsCSV(ctx, path, delim, dp.descriptor())
	},
	"overlay_cat_table": func(ctx context.Context, w *Widget, p Params) (any, error) {
		var t CatalogueTable
		var err error
		if err = p.Decode("table", &t.Table); err != nil {
			return nil, err
		}
		for key, dst := range map[string]*string{
			"name": &t.Name, "frame": &t.CooFrame, "color": &t.Color,
			"ra_col": &t.RACol, "dec_col": &t.DecCol, "id_col": &t.IDCol,
		} {
			if *dst, err = p.String(key, ""); err != nil {
				return nil, err
			}
		}
		if t.LineWidth, err = p.Int("line_width", 0); err != nil {
			return nil, err
		}
		return nil, w.OverlayCatalogueTable(ctx, t)
	},
	"overlay_footprints_table": func(ctx context.Context, w *Widget, p Params) (any, error) {
		var dp footprintDescriptorParams
		if err := p.Decode("descriptor", &dp); err != nil {
			return nil, err
		}
		var t sky.Table
		if err := p.Decode("table", &t); err != nil {
			return nil, err
		}
		return nil, w.OverlayFootprintsTable(ctx, dp.descriptor(), t)
	},
	"overlay_moc": func(ctx context.Context, w *Widget, p Params) (any, error) {
		var m MOC
		var err error
		switch v := p["moc"].(type) {
		case string:
			m.Data = v
		case map[string]any:
			if err := p.Decode("moc", &m.Orders); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: moc must be a string or an object", ErrBadParam)
		}
		if m.Name, err = p.String("name", "MOC"); err != nil {
			return nil, err
		}
		if m.Options.Color, err = p.String("color", ""); err != nil {
			return nil, err
		}
		if m.Options.Opacity, err = p.Float("opacity", 0.2); err != nil {
			return nil, err
		}
		mode, err := p.String("mode", string(sky.MOCHealpix))
		if err != nil {
			return nil, err
		}
		m.Options.Mode = sky.MOCMode(mode)
		return nil, w.OverlayMOC(ctx, m)
	},
	"remove_moc": actionStr("name", "MOC", (*Widget).RemoveMOC),

	"open_sky_panel":    action((*Widget).OpenSkyPanel),
	"close_sky_panel":   action((*Widget).CloseSkyPanel),
	"get_sky_row_count": query((*Widget).SkyRowCount),
	"remove_hips": func(ctx context.Context, w *Widget, p Params) (any, error) {
		index, err := p.Int("index", -1)
		if err != nil {
			return nil, err
		}
		return w.RemoveHiPS(ctx, index)
	},
	"set_hips_slider": func(ctx context.Context, w *Widget, p Params) (any, error) {
		v, err := p.Float("value", 0)
		if err != nil {
			return nil, err
		}
		return nil, w.SetHiPSSliderValue(ctx, v)
	},
	"add_hips_local": func(ctx context.Context, w *Widget, p Params) (any, error) {
		dir, err := p.String("hips_url", "")
		if err != nil {
			return nil, err
		}
		return w.AddLocalHiPS(ctx, dir)
	},
	"select_hips": hipsByName((*Widget).SelectHiPS),
	"add_hips":    hipsByName((*Widget).AddHiPS),
	"browse_hips": func(ctx context.Context, w *Widget, _ Params) (any, error) {
		return w.BrowseHiPS(ctx)
	},

	"get_tap_services": query((*Widget).TapServices),
	"get_tap_missions": query((*Widget).TapMissions),
	"get_tap_query":    queryStr("service_name", "", (*Widget).TapADQL),
	"get_tap_count":    queryStr("service_name", "", (*Widget).TapServiceCount),
	"plot_tap":         queryStr("service_name", "", (*Widget).PlotTapService),
	"plot_custom_tap": func(ctx context.Context, w *Widget, p Params) (any, error) {
		var q CustomTap
		var err error
		if q.Name, err = p.String("name", ""); err != nil {
			return nil, err
		}
		if q.TapURL, err = p.String("tap_url", ""); err != nil {
			return nil, err
		}
		if q.ADQL, err = p.String("adql", ""); err != nil {
			return nil, err
		}
		inView, err := p.Bool("data_in_view", true)
		if err != nil {
			return nil, err
		}
		q.DataOnlyInView = &inView
		if q.Color, err = p.String("color", ""); err != nil {
			return nil, err
		}
		if q.Limit, err = p.Int("limit", -1); err != nil {
			return nil, err
		}
		return nil, w.PlotCustomTap(ctx, q)
	},

	"save_session":         queryStr("file_name", "", (*Widget).SaveSession),
	"restore_session_file": actionStr("file_name", "", (*Widget).RestoreSessionFile),
	"restore_session_obj": func(ctx context.Context, w *Widget, p Params) (any, error) {
		state, err := p.Map("session")
		if err != nil {
			return nil, err
		}
		return nil, w.RestoreSession(ctx, state)
	},

	"get_gw_ids":           query((*Widget).GWIds),
	"get_gw_data":          query((*Widget).GWData),
	"get_neutorino_data":   query((*Widget).NeutrinoData),
	"show_gw_event":        actionStr("id", "", (*Widget).ShowGWEvent),
	"open_neutorino_panel": action((*Widget).OpenNeutrinoPanel),
	"open_gw_panel":        action((*Widget).OpenGWPanel),
	"close_event_panel":    action((*Widget).CloseAlertPanel),

	"open_search_panel":  action((*Widget).OpenSearchPanel),
	"close_search_panel": action((*Widget).CloseSearchPanel),
	"cone_search": func(ctx context.Context, w *Widget, p Params) (any, error) {
		c, err := coneParams(p)
		if err != nil {
			return nil, err
		}
		return nil, w.ConeSearch(ctx, c)
	},
	"poly_search":  actionStr("stcs", "", (*Widget).PolygonSearch),
	"clear_search": action((*Widget).ClearSearch),

	"set_view_height": func(_ context.Context, w *Widget, p Params) (any, error) {
		h, err := p.String("height", "")
		if err != nil {
			return nil, err
		}
		w.SetViewHeight(h)
		return w.ViewHeight(), nil
	},
}

// Call runs the named command. Legacy camelCase names still resolve, with a
// deprecation warning.
func (w *Widget) Call(ctx context.Context, method string, params Params) (*Reply, error) {
	cmd, ok := commands[method]
	if !ok {
		current, legacy := legacyNames[method]
		if !legacy {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		log.Printf("deprecated method: name=%s use=%s", method, current)
		cmd = commands[current]
	}
	if params == nil {
		params = Params{}
	}

	ctx, sink := withOutput(ctx)
	result, err := cmd(ctx, w, params)
	if err != nil {
		return nil, err
	}
	return &Reply{Result: result, Output: sink.String()}, nil
}

// Methods lists the current command names.
func Methods() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func query(fn func(*Widget, context.Context) (any, error)) command {
	return func(ctx context.Context, w *Widget, _ Params) (any, error) {
		return fn(w, ctx)
	}
}

func action(fn func(*Widget, context.Context) error) command {
	return func(ctx context.Context, w *Widget, _ Params) (any, error) {
		return nil, fn(w, ctx)
	}
}

func queryStr(key, def string, fn func(*Widget, context.Context, string) (any, error)) command {
	return func(ctx context.Context, w *Widget, p Params) (any, error) {
		s, err := p.String(key, def)
		if err != nil {
			return nil, err
		}
		return fn(w, ctx, s)
	}
}

func actionStr(key, def string, fn func(*Widget, context.Context, string) error) command {
	return func(ctx context.Context, w *Widget, p Params) (any, error) {
		s, err := p.String(key, def)
		if err != nil {
			return nil, err
		}
		return nil, fn(w, ctx, s)
	}
}

func coneParams(p Params) (Cone, error) {
	var c Cone
	var err error
	if c.RA, err = p.String("ra", ""); err != nil {
		return c, err
	}
	if c.Dec, err = p.String("dec", ""); err != nil {
		return c, err
	}
	c.Radius, err = p.String("radius", "")
	return c, err
}

func coneQuery(fn func(*Widget, context.Context, string, Cone) (any, error)) command {
	return func(ctx context.Context, w *Widget, p Params) (any, error) {
		mission, err := p.String("mission_id", "")
		if err != nil {
			return nil, err
		}
		c, err := coneParams(p)
		if err != nil {
			return nil, err
		}
		return fn(w, ctx, mission, c)
	}
}

func hipsByName(fn func(*Widget, context.Context, string, string) (any, error)) command {
	return func(ctx context.Context, w *Widget, p Params) (any, error) {
		name, err := p.String("name", "")
		if err != nil {
			return nil, err
		}
		url, err := p.String("url", "default")
		if err != nil {
			return nil, err
		}
		return fn(w, ctx, name, url)
	}
}

func csvSource(p Params, pathKey string) (string, rune, error) {
	path, err := p.String(pathKey, "")
	if err != nil {
		return "", 0, err
	}
	if path == "" {
		return "", 0, fmt.Errorf("%w: %s is required", ErrBadParam, pathKey)
	}
	delim, err := p.Rune("delimiter", ',')
	return path, delim, err
}
