// Package widget is the command surface of the sky viewer. Every method
// maps onto one frontend event sent through the correlator.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HsiangNianian/esaskywidget/internal/config"
	"github.com/HsiangNianian/esaskywidget/internal/correlator"
	"github.com/HsiangNianian/esaskywidget/internal/hips"
	"github.com/HsiangNianian/esaskywidget/internal/store"
)

const (
	defaultMessageTimeout = 10 * time.Second
	defaultTargetSettle   = time.Second
	downloadTTL           = 24 * time.Hour
)

var (
	ErrInvalidLang     = errors.New("wrong language code")
	ErrInvalidCooFrame = errors.New("coordinate frame must be J2000 or GALACTIC")
	ErrNoProxy         = errors.New("local hips requires a tile proxy")
)

var allowedLangs = []string{"en", "es", "zh"}

type Options struct {
	Lang           string
	ViewHeight     string
	DownloadDir    string
	HiPSSourcesURL string
	HiPSListURL    string

	// MessageTimeout bounds every command that waits for a reply.
	MessageTimeout time.Duration
	// TargetSettle is slept after goToTargetName while the name resolver
	// answers.
	TargetSettle time.Duration

	HTTPClient *http.Client
	Store      store.Store
	Proxy      *hips.Proxy
}

// OptionsFromConfig maps the widget and comm sections of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Lang:           cfg.Widget.Lang,
		ViewHeight:     cfg.Widget.ViewHeight,
		DownloadDir:    cfg.Widget.DownloadDir,
		HiPSSourcesURL: cfg.Widget.HiPSSourcesURL,
		HiPSListURL:    cfg.Widget.HiPSListURL,
		MessageTimeout: time.Duration(cfg.Comm.RequestTimeoutSeconds) * time.Second,
	}
}

type Widget struct {
	corr   *correlator.Correlator
	opts   Options
	client *http.Client
	store  store.Store

	mu         sync.RWMutex
	lang       string
	viewHeight string
}

// New wraps corr and installs the widget's handler for unsolicited frames.
func New(corr *correlator.Correlator, opts Options) (*Widget, error) {
	lang := strings.ToLower(opts.Lang)
	if lang == "" {
		lang = "en"
	}
	if !validLang(lang) {
		return nil, fmt.Errorf("%w %q, available languages are %s", ErrInvalidLang, opts.Lang, strings.Join(allowedLangs, ", "))
	}
	if opts.MessageTimeout <= 0 {
		opts.MessageTimeout = defaultMessageTimeout
	}
	if opts.TargetSettle < 0 {
		opts.TargetSettle = 0
	} else if opts.TargetSettle == 0 {
		opts.TargetSettle = defaultTargetSettle
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.MessageTimeout}
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemoryStore()
	}

	w := &Widget{
		corr:   corr,
		opts:   opts,
		client: client,
		store:  st,
		lang:   lang,
	}
	w.SetViewHeight(opts.ViewHeight)
	corr.SetPushHandler(w.handlePush)
	return w, nil
}

func validLang(lang string) bool {
	for _, l := range allowedLangs {
		if l == lang {
			return true
		}
	}
	return false
}

func (w *Widget) Lang() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lang
}

func (w *Widget) ViewHeight() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.viewHeight
}

// SetViewHeight sets the view height in pixels; a bare number gets a "px"
// suffix.
func (w *Widget) SetViewHeight(height string) {
	height = strings.TrimSpace(height)
	if height == "" {
		height = "800"
	}
	if !strings.HasSuffix(height, "px") {
		height += "px"
	}
	w.mu.Lock()
	w.viewHeight = height
	w.mu.Unlock()
}

// sendIgnore sends a command whose reply, if any, is dropped.
func (w *Widget) sendIgnore(ctx context.Context, event string, content any) error {
	_, err := w.corr.SendFireAndForget(ctx, event, content, nil)
	return err
}

// sendReceive sends a command and returns the unwrapped reply values. Any
// human readable output is logged and collected for the caller.
func (w *Widget) sendReceive(ctx context.Context, event string, content any) (any, error) {
	resp, err := w.corr.SendAndWait(ctx, event, content, nil, w.opts.MessageTimeout)
	if err != nil {
		return nil, err
	}
	if out := resp.Output(); out != "" {
		log.Printf("frontend output: event=%s %s", event, out)
		if sink := outputFrom(ctx); sink != nil {
			sink.add(out)
		}
	}
	return resp.Result(), nil
}

type outputKey struct{}

type outputSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *outputSink) add(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
}

func (s *outputSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.lines, "\n")
}

func withOutput(ctx context.Context) (context.Context, *outputSink) {
	sink := &outputSink{}
	return context.WithValue(ctx, outputKey{}, sink), sink
}

func outputFrom(ctx context.Context) *outputSink {
	sink, _ := ctx.Value(outputKey{}).(*outputSink)
	return sink
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
