package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tailscale/hujson"
)

type Config struct {
	Server ServerConfig `json:"server"`
	Store  StoreConfig  `json:"store"`
	Comm   CommConfig   `json:"comm"`
	Widget WidgetConfig `json:"widget"`
}

type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	CommPath   string `json:"comm_path"`
	APIPath    string `json:"api_path"`
	HiPSPath   string `json:"hips_path"`
	AuthToken  string `json:"auth_token"`
}

type StoreConfig struct {
	RedisAddr         string `json:"redis_addr"`
	OutcomeTTLSeconds int    `json:"outcome_ttl_seconds"`
}

type CommConfig struct {
	Codec                   string `json:"codec"`
	RequestTimeoutSeconds   int    `json:"request_timeout_seconds"`
	HandshakeTimeoutSeconds int    `json:"handshake_timeout_seconds"`
	HandshakeGraceMillis    int    `json:"handshake_grace_millis"`
	Verbose                 bool   `json:"verbose"`
}

type WidgetConfig struct {
	Lang           string `json:"lang"`
	ViewHeight     string `json:"view_height"`
	DownloadDir    string `json:"download_dir"`
	HiPSSourcesURL string `json:"hips_sources_url"`
	HiPSListURL    string `json:"hips_list_url"`
}

const (
	defaultListenAddr     = ":8080"
	defaultCommPath       = "/ws/comm"
	defaultAPIPath        = "/api/call"
	defaultHiPSPath       = "/hips/"
	defaultRequestTimeout = 10
	defaultHandshake      = 5
	defaultGraceMillis    = 500
	defaultOutcomeTTL     = 24 * 60 * 60
)

var allowedLangs = []string{"en", "es", "zh"}

func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: envOrDefault("SKYWIDGET_LISTEN_ADDR", defaultListenAddr),
			CommPath:   defaultCommPath,
			APIPath:    defaultAPIPath,
			HiPSPath:   defaultHiPSPath,
			AuthToken:  os.Getenv("SKYWIDGET_AUTH_TOKEN"),
		},
		Store: StoreConfig{
			RedisAddr:         os.Getenv("REDIS_ADDR"),
			OutcomeTTLSeconds: defaultOutcomeTTL,
		},
		Comm: CommConfig{
			Codec:                   "json",
			RequestTimeoutSeconds:   defaultRequestTimeout,
			HandshakeTimeoutSeconds: defaultHandshake,
			HandshakeGraceMillis:    defaultGraceMillis,
		},
		Widget: WidgetConfig{
			Lang:           "en",
			ViewHeight:     "800px",
			DownloadDir:    envOrDefault("SKYWIDGET_DOWNLOAD_DIR", "."),
			HiPSSourcesURL: "http://sky.esa.int/esasky-tap/hips-sources",
			HiPSListURL:    "http://skyint.esac.esa.int/esasky-tap/global-hipslist",
		},
	}
}

// Load reads a JSON config file. Comments and trailing commas are allowed.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config failed: %w", err)
	}
	return Parse(content)
}

// Parse decodes raw config bytes over the defaults and normalises them.
func Parse(content []byte) (Config, error) {
	cfg := Default()

	std, err := hujson.Standardize(content)
	if err != nil {
		return Config{}, fmt.Errorf("standardize config failed: %w", err)
	}
	if err := json.Unmarshal(std, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config failed: %w", err)
	}

	if cfg.Server.ListenAddr == "" {
		if cfg.Server.Host != "" && cfg.Server.Port > 0 {
			cfg.Server.ListenAddr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		} else {
			cfg.Server.ListenAddr = defaultListenAddr
		}
	}
	if cfg.Server.CommPath == "" {
		cfg.Server.CommPath = defaultCommPath
	}
	if cfg.Server.APIPath == "" {
		cfg.Server.APIPath = defaultAPIPath
	}
	if cfg.Server.HiPSPath == "" {
		cfg.Server.HiPSPath = defaultHiPSPath
	}
	if !strings.HasSuffix(cfg.Server.HiPSPath, "/") {
		cfg.Server.HiPSPath += "/"
	}
	if cfg.Store.OutcomeTTLSeconds <= 0 {
		cfg.Store.OutcomeTTLSeconds = defaultOutcomeTTL
	}
	if cfg.Comm.Codec == "" {
		cfg.Comm.Codec = "json"
	}
	if cfg.Comm.RequestTimeoutSeconds <= 0 {
		cfg.Comm.RequestTimeoutSeconds = defaultRequestTimeout
	}
	if cfg.Comm.HandshakeTimeoutSeconds <= 0 {
		cfg.Comm.HandshakeTimeoutSeconds = defaultHandshake
	}
	if cfg.Comm.HandshakeGraceMillis < 0 {
		cfg.Comm.HandshakeGraceMillis = 0
	}

	cfg.Widget.Lang = strings.ToLower(cfg.Widget.Lang)
	if cfg.Widget.Lang == "" {
		cfg.Widget.Lang = "en"
	}
	if !validLang(cfg.Widget.Lang) {
		return Config{}, fmt.Errorf("wrong language code %q, available languages are %s", cfg.Widget.Lang, strings.Join(allowedLangs, ", "))
	}
	if cfg.Widget.ViewHeight == "" {
		cfg.Widget.ViewHeight = "800px"
	}

	return cfg, nil
}

func validLang(lang string) bool {
	for _, l := range allowedLangs {
		if l == lang {
			return true
		}
	}
	return false
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
