package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/ibtopo/pkg/cache"
	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
	ibio "github.com/matzehuels/ibtopo/pkg/io"
	"github.com/matzehuels/ibtopo/pkg/observability"
	"github.com/matzehuels/ibtopo/pkg/render"
	"github.com/matzehuels/ibtopo/pkg/render/dot"
)

// cachedFormats are the formats worth caching: they go through Graphviz.
var cachedFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatJPG: true,
	FormatPDF: true,
}

// graphviz renders DOT source in-process; tests replace it.
var graphviz = dot.Render

// RenderFormat produces one export format. Graphviz-backed formats are
// looked up in and stored to the cache; the bool reports a cache hit.
func (r *Runner) RenderFormat(ctx context.Context, src string, sel filter.Result, format string, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, hit, err := r.renderCached(ctx, src, sel, format, opts)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("rendered", "format", format, "bytes", len(data), "cached", hit)
	return data, hit, nil
}

func (r *Runner) renderCached(ctx context.Context, src string, sel filter.Result, format string, opts Options) ([]byte, bool, error) {
	if !cachedFormats[format] {
		data, err := r.render(ctx, src, sel, format, opts)
		return data, false, err
	}

	key := r.Keyer.ArtifactKey(cache.Hash([]byte(src)), cache.ArtifactKeyOpts{Format: format, Layout: opts.Layout})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, format)
		return data, true, nil
	} else if err != nil {
		opts.Logger.Debug("cache read failed", "format", format, "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, format)

	data, err := r.render(ctx, src, sel, format, opts)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		opts.Logger.Debug("cache write failed", "format", format, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
	return data, false, nil
}

func (r *Runner) render(ctx context.Context, src string, sel filter.Result, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG, FormatPNG, FormatJPG:
		return graphviz(ctx, src, format, opts.Layout)
	case FormatPDF:
		svg, _, err := r.renderCached(ctx, src, sel, FormatSVG, opts)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	case FormatJSON:
		var buf bytes.Buffer
		if err := ibio.WriteJSON(sel, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "export json")
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		if err := ibio.WriteYAML(sel, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "export yaml")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}
