// Package dot projects a filtered fabric topology onto Graphviz DOT.
//
// # Overview
//
// [ToDOT] turns a [filter.Result] into an undirected graph:
//
//   - Switches become plaintext vertices with an HTML port table. Every
//     port has its own cell addressable as "p<N>". Unless color is
//     disabled, free ports are shaded green and ports the dump never
//     reported are shaded grey, so the cells agree with the free-port count
//     in the header.
//   - Endpoints (hosts) become rounded boxes with a plain label.
//   - Each cable becomes one edge from a switch port cell to either another
//     switch port cell or the endpoint vertex.
//
// Vertex identifiers are "lid<N>" and port anchors "p<N>", so nothing
// taken from the input (names, GUIDs) ever appears in an identifier. Names
// only appear inside escaped labels.
//
// # Labels
//
// Vertex labels come from templates. The tokens {lid}, {guid}, {name},
// {free} and {used} are substituted, a literal "\n" starts a new line and
// lines that end up empty are dropped. {guid} is empty unless
// [Options.ShowGUID] is set.
//
//	dot.ToDOT(sel, dot.Options{SwitchTemplate: "{name} ({lid})\n{free}"})
//
// # Edge Styles
//
// Interconnect cables are bold and heavy. Host cables at [Options.HighSpeed]
// get a strong color and extra weight, cables at [Options.LowSpeed] a light
// color. With [Options.NoColor] only weights and stroke styles remain.
//
// # Rendering
//
// [Render] lays out and renders DOT source in-process with the WebAssembly
// build of Graphviz from [github.com/goccy/go-graphviz].
//
//	svg, err := dot.Render(ctx, src, "svg", "dot")
//
// [filter.Result]: github.com/matzehuels/ibtopo/pkg/fabric/filter
package dot
