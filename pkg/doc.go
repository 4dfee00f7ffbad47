// Package pkg holds the ibtopo libraries.
//
// # Overview
//
// ibtopo turns InfiniBand link diagnostics into a drawing of the fabric:
// switches with their port tables, hosts, and the cables between them.
//
//  1. [fabric] - data model and topology builder
//  2. [fabric/parse] - line classifier for iblinkinfo and ibnetdiscover dumps
//  3. [fabric/filter] - LID, host, interconnect and hosts-only views
//  4. [render/dot] - Graphviz DOT projection and in-process rendering
//  5. [pipeline] - orchestration (parse → filter → project → render)
//
// Supporting packages: [cache] for rendered artifacts, [config] for the
// TOML settings file, [io] for JSON/YAML model export, [errors] for coded
// errors and [observability] for pipeline hooks.
//
// # Data Flow
//
//	iblinkinfo / ibnetdiscover text
//	         ↓
//	    [fabric/parse] (classify lines, extract fields)
//	         ↓
//	    [fabric] Topology (dedup cables, count ports)
//	         ↓
//	    [fabric/filter] (select links)
//	         ↓
//	    [render/dot] (DOT, then SVG/PNG/JPG via Graphviz)
//
// # Quick Start
//
//	topo, _, err := parse.Parse(os.Stdin, parse.Options{})
//	if err != nil {
//	    return err
//	}
//	sel := filter.Apply(topo, filter.Options{LIDs: []int{3}})
//	src := dot.ToDOT(sel, dot.Options{Labels: true})
//	svg, err := dot.Render(ctx, src, "svg", dot.DefaultLayout)
//
// Most callers use [pipeline.Runner] instead, which adds validation,
// logging, caching and per-format error isolation.
//
// [fabric]: github.com/matzehuels/ibtopo/pkg/fabric
// [fabric/parse]: github.com/matzehuels/ibtopo/pkg/fabric/parse
// [fabric/filter]: github.com/matzehuels/ibtopo/pkg/fabric/filter
// [render/dot]: github.com/matzehuels/ibtopo/pkg/render/dot
// [pipeline]: github.com/matzehuels/ibtopo/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/ibtopo/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/ibtopo/pkg/cache
// [config]: github.com/matzehuels/ibtopo/pkg/config
// [io]: github.com/matzehuels/ibtopo/pkg/io
// [errors]: github.com/matzehuels/ibtopo/pkg/errors
// [observability]: github.com/matzehuels/ibtopo/pkg/observability
package pkg
