package dot

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
)

// Options configures DOT projection.
type Options struct {
	// NoColor drops every color attribute; stroke weights and styles stay.
	NoColor bool

	// Labels selects the verbose default templates and adds speed labels
	// to edges.
	Labels bool

	// ShowGUID fills the {guid} token.
	ShowGUID bool

	// SwitchTemplate and EndpointTemplate override the default labels.
	SwitchTemplate   string
	EndpointTemplate string

	// HighSpeed and LowSpeed are the aggregate rates (Gb/s) that get
	// distinguished host-link styles.
	HighSpeed float64
	LowSpeed  float64
}

// WithDefaults fills empty templates and speed tiers.
func (o Options) WithDefaults() Options {
	if o.SwitchTemplate == "" {
		o.SwitchTemplate = DefaultSwitchTemplate
		if o.Labels {
			o.SwitchTemplate = LabeledSwitchTemplate
		}
	}
	if o.EndpointTemplate == "" {
		o.EndpointTemplate = DefaultEndpointTemplate
		if o.Labels {
			o.EndpointTemplate = LabeledEndpointTemplate
		}
	}
	if o.HighSpeed == 0 {
		o.HighSpeed = DefaultHighSpeed
	}
	if o.LowSpeed == 0 {
		o.LowSpeed = DefaultLowSpeed
	}
	return o
}

// ToDOT converts a filtered topology to Graphviz DOT source.
//
// Vertices are emitted in LID order. Edges are emitted by walking the
// surviving switches in LID order and their ports in ascending order, so
// every cable appears exactly once, from its lowest-LID switch side.
func ToDOT(sel filter.Result, opts Options) string {
	opts = opts.WithDefaults()

	var buf bytes.Buffer
	buf.WriteString("graph fabric {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.4;\n")

	if len(sel.Nodes) > 0 {
		buf.WriteString("\n")
	}
	for _, n := range sel.Nodes {
		if n.IsSwitch {
			fmt.Fprintf(&buf, "  %s [shape=plaintext, label=%s];\n", nodeID(n.LID), switchLabel(n, opts))
			continue
		}
		fmt.Fprintf(&buf, "  %s [shape=box, style=\"rounded\", label=%s];\n", nodeID(n.LID), endpointLabel(n, opts))
	}

	edges := edgeOrder(sel, opts)
	if len(edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %s -- %s%s;\n", e.from, e.to, attrList(edgeAttrs(e.class, e.link.Speed, opts)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

type edge struct {
	from, to string
	class    EdgeClass
	link     *fabric.Link
}

// edgeOrder lists the surviving links in emission order.
func edgeOrder(sel filter.Result, opts Options) []edge {
	keep := make(map[*fabric.Link]bool, len(sel.Links))
	for _, l := range sel.Links {
		keep[l] = true
	}
	switches := make(map[int]*fabric.Node)
	for _, n := range sel.Nodes {
		if n.IsSwitch {
			switches[n.LID] = n
		}
	}

	var out []edge
	emitted := make(map[*fabric.Link]bool, len(sel.Links))
	for _, n := range sel.Nodes {
		if !n.IsSwitch {
			continue
		}
		for _, port := range slices.Sorted(maps.Keys(n.Ports)) {
			l := n.Ports[port]
			if !keep[l] || emitted[l] {
				continue
			}
			emitted[l] = true

			peer := fabric.Peer(l, n.LID, port)
			e := edge{from: anchor(n.LID, port), link: l}
			_, interconnect := switches[peer.LID]
			if interconnect {
				e.to = anchor(peer.LID, peer.Port)
			} else {
				e.to = nodeID(peer.LID)
			}
			e.class = Classify(interconnect, l.Speed, opts)
			out = append(out, e)
		}
	}
	return out
}

func anchor(lid, port int) string {
	return nodeID(lid) + ":" + portID(port)
}
