package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imgpress/imgpress/internal/planner"
	"github.com/imgpress/imgpress/internal/respond"
)

// handleCompress is the single compression endpoint:
//
//	GET /?url=<origin>&l=<quality>&bw=1
//
// AVIF is offered when the client's Accept header advertises image/avif.
// Any unrecoverable failure redirects the client to the origin URL so it
// still gets an image instead of an error page.
func (a *App) handleCompress(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "url parameter required", http.StatusBadRequest)
		return
	}
	origin, err := url.Parse(rawURL)
	if err != nil || (origin.Scheme != "http" && origin.Scheme != "https") {
		http.Error(w, "url must be absolute http(s)", http.StatusBadRequest)
		return
	}

	req := planner.Request{
		AcceptsModern: acceptsAVIF(r),
		Quality:       a.quality(r),
		Grayscale:     r.URL.Query().Get("bw") == "1",
		SourceURL:     rawURL,
	}

	data, err := a.fetchOrigin(r, rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("origin fetch failed, redirecting")
		a.originFallback(w, r, rawURL)
		return
	}
	req.OriginSize = int64(len(data))

	// Encode slots are scarce; respect client disconnects while queueing.
	if err := a.encodes.Acquire(r.Context(), 1); err != nil {
		log.Warn().Err(err).Msg("gave up waiting for an encode slot")
		a.originFallback(w, r, rawURL)
		return
	}
	defer a.encodes.Release(1)

	out, err := a.orch.Compress(r.Context(), data, req)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("compression unrecoverable, redirecting")
		a.originFallback(w, r, rawURL)
		return
	}

	md := respond.Build(out, rawURL, req.OriginSize)
	w.Header().Set("Content-Type", md.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(md.ContentLength))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", md.Filename))
	w.Header().Set("X-Original-Size", strconv.FormatInt(md.OriginalSize, 10))
	w.Header().Set("X-Bytes-Saved", strconv.FormatInt(md.BytesSaved, 10))
	if _, err := w.Write(out.Data); err != nil {
		log.Warn().Err(err).Msg("client went away mid-response")
		return
	}

	log.Info().
		Str("url", rawURL).
		Str("format", string(out.Format)).
		Bool("fallback", out.Fallback).
		Int64("pct_of_original", respond.SavingsPercent(md.OriginalSize, md.ContentLength)).
		Msgf("saved %s", respond.FormatBytes(md.BytesSaved))
}

// originFallback sends the client back to the uncompressed origin resource.
func (a *App) originFallback(w http.ResponseWriter, r *http.Request, rawURL string) {
	http.Redirect(w, r, rawURL, http.StatusFound)
}

func acceptsAVIF(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "image/avif")
}

// quality reads the l= hint, falling back to the configured default on
// absent or out-of-range values.
func (a *App) quality(r *http.Request) int {
	raw := r.URL.Query().Get("l")
	if raw == "" {
		return a.cfg.DefaultQuality
	}
	q, err := strconv.Atoi(raw)
	if err != nil || q < 1 || q > 100 {
		return a.cfg.DefaultQuality
	}
	return q
}
