package diagram

import (
	"context"

	"github.com/matzehuels/seatmap/pkg/httputil"
)

// Load reads a diagram from a local path or an http(s) URL. A nil fetcher
// uses an uncached default.
func Load(ctx context.Context, src string, f *httputil.Fetcher) (*Diagram, error) {
	data, err := httputil.ReadSource(ctx, f, src)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}
