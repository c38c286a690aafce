package hips

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/HsiangNianian/esaskywidget/internal/store"
)

// Proxy serves registered local HiPS directories to a browser running on
// the same machine. Routes are kept in the store so several processes can
// share them.
type Proxy struct {
	store   store.Store
	prefix  string
	baseURL string
}

// NewProxy serves under prefix (for example "/hips/"). baseURL is the
// externally reachable origin, e.g. "http://localhost:8080".
func NewProxy(st store.Store, prefix, baseURL string) *Proxy {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Proxy{store: st, prefix: prefix, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (p *Proxy) Prefix() string { return p.prefix }

// Register exposes dir and returns the URL the frontend should load tiles
// from, with a trailing slash.
func (p *Proxy) Register(ctx context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", errors.New("hips location is not a directory: " + abs)
	}

	route := routeFor(abs)
	if err := p.store.SetRoute(ctx, route, abs); err != nil {
		return "", err
	}
	log.Printf("hips route registered: route=%s dir=%s", route, abs)
	return p.baseURL + p.prefix + route + "/", nil
}

// routeFor turns a directory into a URL path, dropping any volume name.
func routeFor(abs string) string {
	tail := strings.TrimPrefix(abs, filepath.VolumeName(abs))
	return strings.Trim(filepath.ToSlash(tail), "/")
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if !isLocalHost(r.Host) {
		log.Printf("hips request refused: host=%s remote=%s", r.Host, r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, p.prefix)), "/")
	dir, rest, err := p.lookup(r.Context(), rel)
	if err != nil {
		log.Printf("hips route lookup failed: path=%s err=%v", rel, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if dir == "" {
		http.NotFound(w, r)
		return
	}

	file := filepath.Join(dir, filepath.FromSlash(rest))
	f, err := os.Open(file)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// lookup finds the longest registered route that prefixes rel.
func (p *Proxy) lookup(ctx context.Context, rel string) (dir, rest string, err error) {
	segs := strings.Split(rel, "/")
	for i := len(segs) - 1; i > 0; i-- {
		route := strings.Join(segs[:i], "/")
		dir, err = p.store.GetRoute(ctx, route)
		if err != nil {
			return "", "", err
		}
		if dir != "" {
			return dir, strings.Join(segs[i:], "/"), nil
		}
	}
	return "", "", nil
}

func isLocalHost(hostport string) bool {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	switch strings.Trim(host, "[]") {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
