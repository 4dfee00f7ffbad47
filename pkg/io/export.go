package io

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
)

// Document is the serialized form of a topology view.
type Document struct {
	Nodes []Node         `json:"nodes" yaml:"nodes"`
	Links []*fabric.Link `json:"links" yaml:"links"`
}

// Node is the serialized form of a fabric node.
type Node struct {
	LID        int    `json:"lid" yaml:"lid"`
	GUID       string `json:"guid,omitempty" yaml:"guid,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Switch     bool   `json:"switch,omitempty" yaml:"switch,omitempty"`
	TotalPorts int    `json:"total_ports,omitempty" yaml:"total_ports,omitempty"`
	UsedPorts  int    `json:"used_ports,omitempty" yaml:"used_ports,omitempty"`
	FreePorts  []int  `json:"free_ports,omitempty" yaml:"free_ports,omitempty,flow"`
}

// NewDocument converts a filtered view into its serialized form.
func NewDocument(sel filter.Result) Document {
	doc := Document{
		Nodes: make([]Node, len(sel.Nodes)),
		Links: sel.Links,
	}
	if doc.Links == nil {
		doc.Links = []*fabric.Link{}
	}
	for i, n := range sel.Nodes {
		nd := Node{LID: n.LID, GUID: n.GUID, Name: n.Name, Switch: n.IsSwitch}
		if n.IsSwitch {
			nd.TotalPorts = n.TotalPorts
			nd.UsedPorts = n.UsedPorts()
			nd.FreePorts = n.FreePortNumbers()
		}
		doc.Nodes[i] = nd
	}
	return doc
}

// WriteJSON encodes a topology view as indented JSON.
func WriteJSON(sel filter.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(sel)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a topology view as YAML.
func WriteYAML(sel filter.Result, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(sel)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}
