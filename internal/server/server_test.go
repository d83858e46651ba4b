package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgpress/imgpress/internal/codec"
	"github.com/imgpress/imgpress/internal/config"
	"github.com/imgpress/imgpress/internal/planner"
)

// gifBytes is a minimal payload mimetype recognizes as image/gif.
var gifBytes = append([]byte("GIF89a"), make([]byte, 64)...)

type fakeCodec struct {
	src       planner.SourceInfo
	encodeErr error
	plans     []*planner.EncodePlan
}

func (f *fakeCodec) Probe(ctx context.Context, data []byte) (planner.SourceInfo, error) {
	return f.src, nil
}

func (f *fakeCodec) Encode(ctx context.Context, data []byte, plan *planner.EncodePlan) ([]byte, error) {
	f.plans = append(f.plans, plan)
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	return []byte("compressed"), nil
}

func testApp(t *testing.T, c codec.Codec) *App {
	t.Helper()
	cfg := &config.Config{
		Env:                  config.EnvDevelopment,
		Port:                 "0",
		DefaultQuality:       75,
		MaxInputBytes:        1 << 20,
		MaxConcurrentEncodes: 2,
		FetchTimeout:         5 * time.Second,
		Tunables:             planner.DefaultTunables(),
	}
	return NewApp(cfg, zerolog.Nop(), c)
}

func originServer(t *testing.T, status int, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, app *App, target string, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func TestCompress_Success(t *testing.T) {
	origin := originServer(t, http.StatusOK, "image/gif", gifBytes)
	fc := &fakeCodec{src: planner.SourceInfo{Width: 1500, Height: 900, FrameCount: 1}}
	app := testApp(t, fc)

	rec := get(t, app, "/?url="+origin.URL+"/photos/cat.gif", "image/avif,image/webp")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/avif", rec.Header().Get("Content-Type"))
	assert.Equal(t, "compressed", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cat.avif")
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
}

func TestCompress_SavingsHeaders(t *testing.T) {
	origin := originServer(t, http.StatusOK, "image/gif", gifBytes)
	fc := &fakeCodec{src: planner.SourceInfo{Width: 100, Height: 100, FrameCount: 1}}
	app := testApp(t, fc)

	rec := get(t, app, "/?url="+origin.URL+"/a.gif", "")

	require.Equal(t, http.StatusOK, rec.Code)
	// 70-byte origin, 10-byte compressed payload.
	assert.Equal(t, "70", rec.Header().Get("X-Original-Size"))
	assert.Equal(t, "60", rec.Header().Get("X-Bytes-Saved"))
}

func TestCompress_AcceptHeaderGatesAvif(t *testing.T) {
	origin := originServer(t, http.StatusOK, "image/gif", gifBytes)
	fc := &fakeCodec{src: planner.SourceInfo{Width: 100, Height: 100, FrameCount: 1}}
	app := testApp(t, fc)

	rec := get(t, app, "/?url="+origin.URL+"/a.gif", "image/webp,*/*")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fc.plans, 1)
	assert.Equal(t, planner.FormatJPEG, fc.plans[0].Format)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestCompress_QualityAndGrayscaleHints(t *testing.T) {
	origin := originServer(t, http.StatusOK, "image/gif", gifBytes)
	fc := &fakeCodec{src: planner.SourceInfo{Width: 100, Height: 100, FrameCount: 1}}
	app := testApp(t, fc)

	rec := get(t, app, "/?url="+origin.URL+"/a.gif&l=40&bw=1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fc.plans, 1)
	assert.Equal(t, 40, fc.plans[0].Quality)
	assert.True(t, fc.plans[0].Grayscale)
}

func TestCompress_BadQualityFallsBackToDefault(t *testing.T) {
	origin := originServer(t, http.StatusOK, "image/gif", gifBytes)
	fc := &fakeCodec{src: planner.SourceInfo{Width: 100, Height: 100, FrameCount: 1}}
	app := testApp(t, fc)

	rec := get(t, app, "/?url="+origin.URL+"/a.gif&l=999", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fc.plans, 1)
	assert.Equal(t, 75, fc.plans[0].Quality)
}

func TestCompress_MissingURL(t *testing.T) {
	app := testApp(t, &fakeCodec{})
	rec := get(t, app, "/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompress_RelativeURL(t *testing.T) {
	app := testApp(t, &fakeCodec{})
	rec := get(t, app, "/?url=/etc/passwd", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompress_OriginErrorRedirects(t *testing.T) {
	origin := originServer(t, http.StatusNotFound, "text/plain", []byte("nope"))
	app := testApp(t, &fakeCodec{})

	target := origin.URL + "/gone.jpg"
	rec := get(t, app, "/?url="+target, "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, target, rec.Header().Get("Location"))
}

func TestCompress_NonImageOriginRedirects(t *testing.T) {
	origin := originServer(t, http.StatusOK, "text/html", []byte("<html><body>hi</body></html>"))
	app := testApp(t, &fakeCodec{})

	rec := get(t, app, "/?url="+origin.URL+"/page", "")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestCompress_UnrecoverableEncodeRedirects(t *testing.T) {
	origin := originServer(t, http.StatusOK, "image/gif", gifBytes)
	fc := &fakeCodec{
		src:       planner.SourceInfo{Width: 100, Height: 100, FrameCount: 1},
		encodeErr: codec.ClassifyEncode(errors.New("encoder exploded")),
	}
	app := testApp(t, fc)

	target := origin.URL + "/a.gif"
	rec := get(t, app, "/?url="+target, "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, target, rec.Header().Get("Location"))
}

func TestHealthz(t *testing.T) {
	app := testApp(t, &fakeCodec{})
	rec := get(t, app, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
