// Package respond turns a compression outcome into the response metadata the
// transport layer needs: download filename, content type and length, and the
// savings headers. Pure formatting, no retry or transport logic.
package respond

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/imgpress/imgpress/internal/pipeline"
)

// Metadata holds everything the transport layer sets on a success response.
type Metadata struct {
	Filename      string
	ContentType   string
	ContentLength int
	OriginalSize  int64
	BytesSaved    int64
}

// Build derives response metadata from the outcome, the source URL (used
// only for naming), and the origin's reported size. BytesSaved clamps at
// zero: a re-encode that grew the payload reports no savings rather than a
// negative number.
func Build(out *pipeline.Outcome, sourceURL string, originSize int64) Metadata {
	saved := originSize - int64(out.Size)
	if saved < 0 {
		saved = 0
	}
	return Metadata{
		Filename:      Filename(sourceURL, out.Format.Extension()),
		ContentType:   out.Format.ContentType(),
		ContentLength: out.Size,
		OriginalSize:  originSize,
		BytesSaved:    saved,
	}
}

// reUnsafe matches everything we refuse to put in a Content-Disposition
// filename.
var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename derives a download name from the URL's final path segment,
// sanitized and re-suffixed with the actual output extension. URLs with no
// usable segment fall back to "image".
func Filename(sourceURL, ext string) string {
	name := "image"
	if u, err := url.Parse(sourceURL); err == nil {
		base := path.Base(u.Path)
		if base != "" && base != "." && base != "/" {
			name = base
		}
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	name = reUnsafe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		name = "image"
	}
	return name + ext
}
