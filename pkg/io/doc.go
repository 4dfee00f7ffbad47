// Package io provides JSON and YAML export and JSON import for fabric
// topologies.
//
// # Format
//
// A document lists the nodes of a (possibly filtered) topology and its
// cables. Port counters describe the whole fabric even when the document
// holds a filtered view:
//
//	{
//	  "nodes": [
//	    {"lid": 3, "name": "SW1", "switch": true, "total_ports": 2,
//	     "used_ports": 1, "free_ports": [2]},
//	    {"lid": 4, "name": "node07"}
//	  ],
//	  "links": [
//	    {"local": {"lid": 3, "port": 5, "name": "SW1"},
//	     "remote": {"lid": 4, "port": 10, "name": "node07"},
//	     "speed": 160}
//	  ]
//	}
//
// Links always carry the reporting switch as "local".
//
// # Export
//
// [WriteJSON] and [WriteYAML] encode a [filter.Result].
//
// # Import
//
// [ReadJSON] rebuilds a [fabric.Topology] from a JSON document by replaying
// each switch report, so port occupancy matches that of a
// freshly parsed dump. Cables outside a filtered view are not restored.
//
// [filter.Result]: github.com/matzehuels/ibtopo/pkg/fabric/filter
// [fabric.Topology]: github.com/matzehuels/ibtopo/pkg/fabric
package io
