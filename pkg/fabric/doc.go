// Package fabric models an InfiniBand fabric as switches, endpoint nodes and
// the cables between them.
//
// # Overview
//
// A [Topology] is built incrementally from per-port link records, usually
// produced by [github.com/matzehuels/ibtopo/pkg/fabric/parse]. Every record
// is reported from a switch port's perspective: the reporting side is always
// a switch, the peer side may be another switch or a host adapter.
//
//	t := fabric.New()
//	t.Record(
//	    fabric.Endpoint{LID: 3, Port: 5, GUID: "0x1", Name: "SW1"},
//	    fabric.Endpoint{LID: 4, Port: 10, GUID: "0x2", Name: "node07"},
//	    160,
//	)
//
// # Deduplication
//
// A physical cable shows up twice in a full dump when both ends are switches:
// once in each switch's report. The builder keeps the first sighting and
// discards any later record whose port slot is already occupied on either
// node, so the outcome does not depend on which switch was listed first.
//
// # Classification
//
// A node is a switch iff it was ever the reporting side of a record. Nodes
// seen only as peers are endpoints (hosts).
package fabric
