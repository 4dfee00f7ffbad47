package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ibtopo/pkg/cache"
	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
	"github.com/matzehuels/ibtopo/pkg/observability"
	"github.com/matzehuels/ibtopo/pkg/render/dot"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete pipeline on the dump read from r.
//
// The returned error covers invalid options and unreadable input only.
// Per-format render failures are reported through [Result.Err]; the DOT
// description and every other format are still returned.
func (r *Runner) Execute(ctx context.Context, in io.Reader, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	parseStart := time.Now()
	topo, stats, err := r.Parse(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	parseTime := time.Since(parseStart)

	result := r.ExecuteTopology(ctx, topo, opts)
	result.Stats.Parse = stats
	result.Stats.ParseTime = parseTime
	return result, nil
}

// ExecuteTopology runs the filter, projection and render stages on an
// already built topology. opts must have been validated.
func (r *Runner) ExecuteTopology(ctx context.Context, topo *fabric.Topology, opts Options) *Result {
	r.applyLogger(&opts)
	opts.SetDefaults()

	result := &Result{Artifacts: make(map[string][]byte), Topology: topo}
	result.Stats.NodeCount = topo.NodeCount()
	result.Stats.LinkCount = topo.LinkCount()
	result.Stats.EmptyTopology = topo.Empty()

	sel := r.Select(ctx, topo, opts)
	result.Selection = sel
	result.Stats.ShownNodes = len(sel.Nodes)
	result.Stats.ShownLinks = len(sel.Links)

	result.DOT = dot.ToDOT(sel, opts.DOTOptions())

	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, hit, err := r.RenderFormat(ctx, result.DOT, sel, format, opts)
		if err != nil {
			if result.Failures == nil {
				result.Failures = make(errors.FormatErrors)
			}
			result.Failures[format] = err
			opts.Logger.Error("render failed", "format", format, "err", errors.UserMessage(err))
			continue
		}
		result.Artifacts[format] = data
		if hit {
			result.CacheInfo.Hits = append(result.CacheInfo.Hits, format)
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)

	if len(opts.Formats) > 0 {
		opts.Logger.Debug("rendered outputs",
			"formats", opts.Formats,
			"failed", len(result.Failures),
			"cached", len(result.CacheInfo.Hits),
			"duration", result.Stats.RenderTime)
	}
	return result
}

// Select applies the active filters, logging each one.
func (r *Runner) Select(ctx context.Context, topo *fabric.Topology, opts Options) filter.Result {
	r.applyLogger(&opts)
	fopts := opts.FilterOptions()
	active := fopts.Active()
	for _, a := range active {
		opts.Logger.Info("applying filter", "filter", a)
	}

	sel := filter.Apply(topo, fopts)
	observability.Pipeline().OnFilter(ctx, active, len(sel.Links))
	if len(active) > 0 {
		opts.Logger.Debug("filtered topology", "nodes", len(sel.Nodes), "links", len(sel.Links))
	}
	return sel
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
