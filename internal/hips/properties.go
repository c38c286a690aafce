// Package hips reads HiPS survey descriptions and serves local surveys to
// the frontend.
package hips

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/HsiangNianian/esaskywidget/internal/sky"
)

var ErrMissingProperty = errors.New("missing hips property")

// Properties is the parsed content of a HiPS "properties" file.
type Properties map[string]string

// IsRemote reports whether location is fetched over HTTP rather than read
// from disk.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http")
}

// ReadProperties loads <base>properties over HTTP or from the local disk.
// base must end with a slash.
func ReadProperties(ctx context.Context, client *http.Client, base string) (Properties, error) {
	if !IsRemote(base) {
		f, err := os.Open(base + "properties")
		if err != nil {
			return nil, fmt.Errorf("%s not found or missing properties file, did you mean http://%s: %w", base, base, err)
		}
		defer f.Close()
		return ParseProperties(f)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"properties", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hips properties failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch hips properties failed: status=%d url=%s", resp.StatusCode, base+"properties")
	}
	return ParseProperties(resp.Body)
}

// ParseProperties reads "key = value" (or "key: value") lines. Blank lines
// and lines starting with # or ; are skipped. Later keys win.
func ParseProperties(r io.Reader) (Properties, error) {
	props := Properties{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		props[key] = strings.TrimSpace(line[i+1:])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read hips properties failed: %w", err)
	}
	return props, nil
}

func (p Properties) require(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingProperty, key)
	}
	return v, nil
}

// Survey builds the HiPS description the frontend needs from properties.
// url is where the tiles are served from, without a trailing slash.
func (p Properties) Survey(name, url string) (*sky.HiPS, error) {
	order, err := p.require("hips_order")
	if err != nil {
		return nil, err
	}
	formats, err := p.require("hips_tile_format")
	if err != nil {
		return nil, err
	}
	frame, err := p.require("hips_frame")
	if err != nil {
		return nil, err
	}

	cooframe := string(sky.FrameGalactic)
	if frame == "equatorial" {
		cooframe = string(sky.FrameJ2000)
	}
	format := strings.Fields(formats)[0]
	return sky.NewHiPS(name, strings.TrimSuffix(url, "/"), cooframe, order, format), nil
}
