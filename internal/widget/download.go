package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/HsiangNianian/esaskywidget/internal/protocol"
)

const fallbackFileName = "file.unknown"

var ErrMissingURL = errors.New("download request has no url")

// handlePush receives unsolicited frames. Download requests are fetched in
// the background so the delivery path is never blocked on the network.
func (w *Widget) handlePush(msgType string, content map[string]any) error {
	if msgType != protocol.TypeDownload {
		log.Printf("ignore push: type=%s", msgType)
		return nil
	}
	raw, _ := content[protocol.KeyURL].(string)
	target := strings.TrimSpace(raw)
	if target == "" {
		return ErrMissingURL
	}
	go func() {
		if _, err := w.Download(context.Background(), target); err != nil {
			log.Printf("download failed: url=%s err=%v", target, err)
		}
	}()
	return nil
}

// Download fetches target into the download directory and returns the
// written path. A URL already fetched or being fetched recently is skipped
// and "" returned.
func (w *Widget) Download(ctx context.Context, target string) (_ string, err error) {
	key := "download:" + target
	claimed, err := w.store.MarkProcessedIfAbsent(ctx, key, downloadTTL)
	if err != nil {
		return "", err
	}
	if !claimed {
		log.Printf("download skipped: url=%s reason=already_processed", target)
		return "", nil
	}
	defer func() {
		if err == nil {
			return
		}
		if uerr := w.store.UnmarkProcessed(context.WithoutCancel(ctx), key); uerr != nil {
			log.Printf("release download failed: url=%s err=%v", target, uerr)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch download failed: status=%d", resp.StatusCode)
	}

	dest := filepath.Join(w.opts.DownloadDir, fileNameFor(resp))
	if err := writeFile(dest, resp.Body); err != nil {
		return "", err
	}
	log.Printf("download saved: url=%s path=%s", target, dest)
	return dest, nil
}

// writeFile writes r next to dest and renames it into place, so dest only
// ever holds a complete download.
func writeFile(dest string, r io.Reader) error {
	f, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create download file failed: %w", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write download file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename download file failed: %w", err)
	}
	return nil
}

// fileNameFor prefers the Content-Disposition filename and falls back to the
// last segment of the request path.
func fileNameFor(resp *http.Response) string {
	var name string
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name = params["filename"]
		}
	}
	if name == "" && resp.Request != nil {
		name = lastSegment(resp.Request.URL)
	}
	name = filepath.Base(strings.ReplaceAll(name, `"`, ""))
	if name == "" || name == "." || name == "/" || name == ".." {
		return fallbackFileName
	}
	return name
}

func lastSegment(u *url.URL) string {
	if u == nil {
		return ""
	}
	return path.Base(u.Path)
}
