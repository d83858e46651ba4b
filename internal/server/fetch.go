package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// fetchOrigin downloads the origin resource, enforcing the input size cap
// and verifying the payload actually is an image before any decode work.
func (a *App) fetchOrigin(r *http.Request, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build origin request: %w", err)
	}
	req.Header.Set("User-Agent", "imgpress/1.0")
	// Pass the client's cookies and referer through so protected origins
	// behave as if the client fetched them directly.
	if v := r.Header.Get("Cookie"); v != "" {
		req.Header.Set("Cookie", v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch origin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("origin returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > a.cfg.MaxInputBytes {
		return nil, fmt.Errorf("origin reports %d bytes, cap is %d", resp.ContentLength, a.cfg.MaxInputBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, a.cfg.MaxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read origin body: %w", err)
	}
	if int64(len(data)) > a.cfg.MaxInputBytes {
		return nil, fmt.Errorf("origin exceeds input cap of %d bytes", a.cfg.MaxInputBytes)
	}

	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("origin is %s, not an image", mt.String())
	}
	return data, nil
}
