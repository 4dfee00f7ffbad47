package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/parse"
	ibio "github.com/matzehuels/ibtopo/pkg/io"
	"github.com/matzehuels/ibtopo/pkg/observability"
)

// Parse builds the full topology from a dump, or from a JSON export when
// opts.Dialect is DialectJSON.
//
// An empty result is not an error: it is logged as a warning because it
// almost always means the input format was not recognized.
func (r *Runner) Parse(ctx context.Context, in io.Reader, opts Options) (*fabric.Topology, parse.Stats, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Dialect)
	start := time.Now()

	topo, stats, err := readTopology(in, opts)
	if err != nil {
		hooks.OnParseComplete(ctx, opts.Dialect, 0, 0, time.Since(start), err)
		return nil, stats, err
	}
	hooks.OnParseComplete(ctx, opts.Dialect, topo.NodeCount(), topo.LinkCount(), time.Since(start), nil)

	opts.Logger.Debug("parsed input",
		"dialect", opts.Dialect,
		"stats", stats.String(),
		"duration", time.Since(start))

	if topo.Empty() {
		opts.Logger.Warn("no nodes or links recognized; input format may be unsupported",
			"lines", stats.Lines, "dialect", opts.Dialect)
	} else {
		opts.Logger.Info("parsed fabric",
			"nodes", topo.NodeCount(),
			"links", topo.LinkCount())
	}
	return topo, stats, nil
}

func readTopology(in io.Reader, opts Options) (*fabric.Topology, parse.Stats, error) {
	if opts.Dialect == DialectJSON {
		topo, err := ibio.ReadJSON(in)
		if err != nil {
			return nil, parse.Stats{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read topology JSON")
		}
		return topo, parse.Stats{Links: topo.LinkCount()}, nil
	}
	return parse.Parse(in, opts.ParseOptions())
}
