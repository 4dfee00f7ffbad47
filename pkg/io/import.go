package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/ibtopo/pkg/fabric"
)

// ReadJSON decodes a JSON document from r into a new topology.
//
// Links are replayed through [fabric.Topology.Record] in document order,
// from both ends when both are switches, then the free ports of each switch
// are reported as unconnected. Node
// names and GUIDs from the node list take precedence over the ones carried
// by the links.
//
// A filtered document only carries the cables in its view. A port whose
// cable was filtered out appears in neither free_ports nor links, so it is
// not restored: total_ports and used_ports of the imported switch count
// only the ports the document mentions. Export without filters for a
// lossless round trip.
//
// ReadJSON returns an error if the JSON is malformed, a node LID is listed
// twice, or a link references a LID missing from the node list.
func ReadJSON(r io.Reader) (*fabric.Topology, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	nodes := make(map[int]Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, dup := nodes[n.LID]; dup {
			return nil, fmt.Errorf("node %d: duplicate lid", n.LID)
		}
		nodes[n.LID] = n
	}

	topo := fabric.New()
	for i, l := range doc.Links {
		if l == nil {
			return nil, fmt.Errorf("link %d: empty", i)
		}
		for _, lid := range []int{l.Local.LID, l.Remote.LID} {
			if _, ok := nodes[lid]; !ok {
				return nil, fmt.Errorf("link %d: unknown lid %d", i, lid)
			}
		}
		topo.Record(l.Local, l.Remote, l.Speed)
		if nodes[l.Remote.LID].Switch {
			// The far switch reported this port too; the record only counts it.
			topo.Record(l.Remote, l.Local, l.Speed)
		}
	}

	for _, n := range doc.Nodes {
		if !n.Switch {
			continue
		}
		for _, port := range n.FreePorts {
			topo.Record(fabric.Endpoint{LID: n.LID, Port: port, GUID: n.GUID, Name: n.Name}, fabric.Endpoint{}, 0)
		}
	}

	for _, n := range doc.Nodes {
		node, ok := topo.Node(n.LID)
		if !ok {
			continue
		}
		if n.Name != "" {
			node.Name = n.Name
		}
		if n.GUID != "" {
			node.GUID = n.GUID
		}
	}
	return topo, nil
}
