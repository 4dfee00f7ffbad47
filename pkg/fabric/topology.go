package fabric

import (
	"maps"
	"slices"
	"sync"
)

// Topology is the in-memory registry of nodes (by LID) and links.
//
// Record is safe to call from multiple goroutines; the port-occupancy check
// and insert happen under one lock so a port never holds more than one link.
type Topology struct {
	mu    sync.Mutex
	nodes map[int]*Node
	links []*Link
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{nodes: make(map[int]*Node)}
}

// Record registers one port report. The local side is marked as a switch and
// its port counted. When remote has a name the cable is stored, unless either
// port slot is already taken, in which case the record is dropped. A stored
// cable also counts the peer's port, so a port never holds a cable without
// being part of TotalPorts.
//
// Record reports whether a new link was stored.
func (t *Topology) Record(local, remote Endpoint, speed float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	reporter := t.getOrInsert(local, true)
	reporter.IsSwitch = true
	reporter.report(local.Port)

	if remote.Name == "" {
		return false
	}

	peer := t.getOrInsert(remote, false)
	if _, taken := peer.Ports[remote.Port]; taken {
		return false
	}
	if _, taken := reporter.Ports[local.Port]; taken {
		return false
	}

	l := &Link{Local: local, Remote: remote, Speed: speed}
	reporter.Ports[local.Port] = l
	peer.Ports[remote.Port] = l
	peer.report(remote.Port)
	t.links = append(t.links, l)
	return true
}

// Declare registers a switch header announcing ports 1..ports. Each
// declared port counts toward TotalPorts once, exactly as if it had been
// reported without a cable, so TotalPorts only ever grows.
func (t *Topology) Declare(sw Endpoint, ports int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.getOrInsert(sw, true)
	n.IsSwitch = true
	for p := 1; p <= ports; p++ {
		n.report(p)
	}
}

func (n *Node) report(port int) {
	if _, seen := n.reported[port]; !seen {
		n.reported[port] = struct{}{}
		n.TotalPorts++
	}
}

// getOrInsert returns the node for ep.LID, creating it on first reference.
// Identity fields are filled in when still empty; a self-report replaces the
// name since peers often see a shortened one.
func (t *Topology) getOrInsert(ep Endpoint, reporting bool) *Node {
	n, ok := t.nodes[ep.LID]
	if !ok {
		n = &Node{
			LID:      ep.LID,
			Ports:    make(map[int]*Link),
			reported: make(map[int]struct{}),
		}
		t.nodes[ep.LID] = n
	}
	if n.GUID == "" {
		n.GUID = ep.GUID
	}
	if ep.Name != "" && (n.Name == "" || reporting) {
		n.Name = ep.Name
	}
	return n
}

// Node returns the node with the given LID.
func (t *Topology) Node(lid int) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[lid]
	return n, ok
}

// Nodes returns all nodes ordered by LID.
func (t *Topology) Nodes() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Node, 0, len(t.nodes))
	for _, lid := range slices.Sorted(maps.Keys(t.nodes)) {
		out = append(out, t.nodes[lid])
	}
	return out
}

// Links returns the links in the order they were first seen.
func (t *Topology) Links() []*Link {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.links)
}

// NodeCount returns the number of nodes.
func (t *Topology) NodeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// LinkCount returns the number of links.
func (t *Topology) LinkCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.links)
}

// Empty reports whether nothing was recognized.
func (t *Topology) Empty() bool {
	return t.NodeCount() == 0 && t.LinkCount() == 0
}

// IsInterconnect reports whether both ends of l are switches.
func (t *Topology) IsInterconnect(l *Link) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, b := t.nodes[l.Local.LID], t.nodes[l.Remote.LID]
	return a != nil && b != nil && a.IsSwitch && b.IsSwitch
}
