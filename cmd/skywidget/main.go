package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/HsiangNianian/esaskywidget/internal/config"
	"github.com/HsiangNianian/esaskywidget/internal/correlator"
	"github.com/HsiangNianian/esaskywidget/internal/hips"
	"github.com/HsiangNianian/esaskywidget/internal/protocol"
	"github.com/HsiangNianian/esaskywidget/internal/store"
	"github.com/HsiangNianian/esaskywidget/internal/widget"
	"github.com/HsiangNianian/esaskywidget/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	var st store.Store
	if cfg.Store.RedisAddr != "" {
		rs := store.NewRedisStore(cfg.Store.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rs.Ping(ctx); err != nil {
			log.Printf("redis ping failed: addr=%s err=%v", cfg.Store.RedisAddr, err)
		}
		cancel()
		defer rs.Close()
		st = rs
		log.Printf("use redis store: %s", cfg.Store.RedisAddr)
	} else {
		st = store.NewMemoryStore()
		log.Printf("use memory store")
	}

	codec, err := protocol.NewCodec(cfg.Comm.Codec)
	if err != nil {
		log.Fatalf("codec failed: %v", err)
	}
	channel := ws.NewChannel(codec, cfg.Server.AuthToken, cfg.Comm.Verbose)

	corr := correlator.New(channel, correlator.Options{
		RequestTimeout:   time.Duration(cfg.Comm.RequestTimeoutSeconds) * time.Second,
		HandshakeTimeout: time.Duration(cfg.Comm.HandshakeTimeoutSeconds) * time.Second,
		HandshakeGrace:   time.Duration(cfg.Comm.HandshakeGraceMillis) * time.Millisecond,
		Store:            st,
		OutcomeTTL:       time.Duration(cfg.Store.OutcomeTTLSeconds) * time.Second,
		Verbose:          cfg.Comm.Verbose,
	})

	proxy := hips.NewProxy(st, cfg.Server.HiPSPath, localOrigin(cfg.Server.ListenAddr))

	opts := widget.OptionsFromConfig(cfg)
	opts.Store = st
	opts.Proxy = proxy
	w, err := widget.New(corr, opts)
	if err != nil {
		log.Fatalf("widget failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.CommPath, channel)
	mux.Handle(cfg.Server.APIPath, widget.NewHandler(w, cfg.Server.AuthToken))
	mux.Handle(proxy.Prefix(), proxy)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log.Printf("skywidget listening on %s", cfg.Server.ListenAddr)
	if err := http.ListenAndServe(cfg.Server.ListenAddr, mux); err != nil {
		log.Fatalf("skywidget server failed: %v", err)
	}
}

// localOrigin is the browser-facing origin for tiles served by this process.
func localOrigin(listenAddr string) string {
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil || port == "" {
		port = "8080"
	}
	return "http://localhost:" + port
}
