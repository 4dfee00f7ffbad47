package io

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
)

func testFabric() *fabric.Topology {
	t := fabric.New()
	t.Record(fabric.Endpoint{LID: 3, Port: 1, GUID: "0x3", Name: "sw3"}, fabric.Endpoint{LID: 10, Port: 1, Name: "node07"}, 40)
	t.Record(fabric.Endpoint{LID: 3, Port: 2, GUID: "0x3", Name: "sw3"}, fabric.Endpoint{LID: 4, Port: 1, Name: "sw4"}, 40)
	t.Record(fabric.Endpoint{LID: 3, Port: 3, GUID: "0x3", Name: "sw3"}, fabric.Endpoint{}, 0)
	t.Record(fabric.Endpoint{LID: 4, Port: 1, GUID: "0x4", Name: "sw4"}, fabric.Endpoint{LID: 3, Port: 2, Name: "sw3"}, 40)
	t.Record(fabric.Endpoint{LID: 4, Port: 2, GUID: "0x4", Name: "sw4"}, fabric.Endpoint{LID: 11, Port: 1, Name: "node11"}, 20)
	return t
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(filter.Apply(testFabric(), filter.Options{}), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Nodes) != 4 || len(doc.Links) != 3 {
		t.Fatalf("got %d nodes, %d links; want 4, 3", len(doc.Nodes), len(doc.Links))
	}

	sw3 := doc.Nodes[0]
	if sw3.LID != 3 || !sw3.Switch || sw3.TotalPorts != 3 || sw3.UsedPorts != 2 {
		t.Errorf("switch 3 = %+v", sw3)
	}
	if len(sw3.FreePorts) != 1 || sw3.FreePorts[0] != 3 {
		t.Errorf("switch 3 free ports = %v, want [3]", sw3.FreePorts)
	}
	if host := doc.Nodes[2]; host.Switch || host.TotalPorts != 0 {
		t.Errorf("host node carries switch fields: %+v", host)
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(filter.Apply(fabric.New(), filter.Options{}), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"links": []`) {
		t.Errorf("empty topology should encode an empty links array:\n%s", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(filter.Apply(testFabric(), filter.Options{LIDs: []int{10}}), &buf); err != nil {
		t.Fatalf("WriteYAML() error: %v", err)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(doc.Links) != 1 || doc.Links[0].Remote.Name != "node07" || doc.Links[0].Speed != 40 {
		t.Errorf("links = %+v", doc.Links)
	}
	if !strings.Contains(buf.String(), "free_ports: [") {
		t.Errorf("free ports should use flow style:\n%s", buf.String())
	}
}

func TestReadJSON_RoundTrip(t *testing.T) {
	orig := testFabric()
	var buf bytes.Buffer
	if err := WriteJSON(filter.Apply(orig, filter.Options{}), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if got.NodeCount() != orig.NodeCount() || got.LinkCount() != orig.LinkCount() {
		t.Errorf("round trip: %d nodes %d links, want %d %d",
			got.NodeCount(), got.LinkCount(), orig.NodeCount(), orig.LinkCount())
	}
	for _, want := range orig.Nodes() {
		n, ok := got.Node(want.LID)
		if !ok {
			t.Errorf("node %d missing after round trip", want.LID)
			continue
		}
		if n.IsSwitch != want.IsSwitch || n.TotalPorts != want.TotalPorts || n.UsedPorts() != want.UsedPorts() {
			t.Errorf("node %d = switch %v total %d used %d, want %v %d %d", n.LID,
				n.IsSwitch, n.TotalPorts, n.UsedPorts(), want.IsSwitch, want.TotalPorts, want.UsedPorts())
		}
		if n.Name != want.Name || n.GUID != want.GUID {
			t.Errorf("node %d identity = %q/%q, want %q/%q", n.LID, n.Name, n.GUID, want.Name, want.GUID)
		}
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"nodes": [`},
		{"duplicate lid", `{"nodes": [{"lid": 1}, {"lid": 1}], "links": []}`},
		{"unknown lid", `{"nodes": [{"lid": 1, "switch": true}], "links": [{"local": {"lid": 1, "port": 1}, "remote": {"lid": 2, "port": 1, "name": "x"}}]}`},
		{"null link", `{"nodes": [], "links": [null]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadJSON() should fail")
			}
		})
	}
}

func TestReadJSON_FilteredView(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(filter.Apply(testFabric(), filter.Options{LIDs: []int{10}}), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if got.LinkCount() != 1 {
		t.Fatalf("LinkCount() = %d, want 1", got.LinkCount())
	}
	// Port 2 of switch 3 held the hidden cable to switch 4 and is dropped;
	// port 3 was exported as free.
	sw3, _ := got.Node(3)
	if sw3.TotalPorts != 2 || sw3.UsedPorts() != 1 {
		t.Errorf("switch 3 total=%d used=%d, want 2/1", sw3.TotalPorts, sw3.UsedPorts())
	}
	if sw3.Reported(2) {
		t.Error("port of a hidden cable should not be restored")
	}
	if free := sw3.FreePortNumbers(); len(free) != 1 || free[0] != 3 {
		t.Errorf("free ports = %v, want [3]", free)
	}
}
