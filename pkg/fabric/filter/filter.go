// Package filter selects the subset of a fabric topology to render.
//
// Every active selection is applied as a conjunction over links; the node
// set is then recomputed as the endpoints of the surviving links. Port usage
// counters on the surviving nodes still describe the whole fabric.
package filter

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/fabric"
)

// Options holds the active selections. The zero value keeps everything.
type Options struct {
	// LIDs keeps links touching any of these LIDs.
	LIDs []int `json:"lids,omitempty"`

	// Interconnect keeps switch-to-switch links only.
	Interconnect bool `json:"interconnect,omitempty"`

	// HostsOnly keeps links with at least one endpoint that is not a switch.
	HostsOnly bool `json:"hosts_only,omitempty"`

	// Host keeps links whose endpoint-side name (or its numeric suffix)
	// equals this token.
	Host string `json:"host,omitempty"`
}

// Result is the filtered view of a topology.
type Result struct {
	Links []*fabric.Link
	Nodes []*fabric.Node // ordered by LID
}

// Predicate decides whether a link survives.
type Predicate func(t *fabric.Topology, l *fabric.Link) bool

// Validate checks filter values.
func (o Options) Validate() error {
	for _, lid := range o.LIDs {
		if err := errors.ValidateLID(lid); err != nil {
			return err
		}
	}
	return errors.ValidateHost(o.Host)
}

// Active describes each configured filter, in application order.
func (o Options) Active() []string {
	var out []string
	if len(o.LIDs) > 0 {
		lids := make([]string, len(o.LIDs))
		for i, lid := range o.LIDs {
			lids[i] = strconv.Itoa(lid)
		}
		out = append(out, "lid="+strings.Join(lids, ","))
	}
	if o.Interconnect {
		out = append(out, "interconnect")
	}
	if o.HostsOnly {
		out = append(out, "hosts")
	}
	if o.Host != "" {
		out = append(out, "host="+o.Host)
	}
	return out
}

// Predicates returns the predicates for the active filters, in the same
// order as Active.
func (o Options) Predicates() []Predicate {
	var ps []Predicate
	if len(o.LIDs) > 0 {
		ps = append(ps, ByLID(o.LIDs...))
	}
	if o.Interconnect {
		ps = append(ps, Interconnect)
	}
	if o.HostsOnly {
		ps = append(ps, HostsOnly)
	}
	if o.Host != "" {
		ps = append(ps, ByHost(o.Host))
	}
	return ps
}

// Apply filters the links of t and derives the surviving node set.
func Apply(t *fabric.Topology, opts Options) Result {
	return ApplyPredicates(t, opts.Predicates()...)
}

// ApplyPredicates keeps the links accepted by every predicate.
func ApplyPredicates(t *fabric.Topology, ps ...Predicate) Result {
	var res Result
	seen := make(map[int]bool)

	for _, l := range t.Links() {
		if !acceptAll(t, l, ps) {
			continue
		}
		res.Links = append(res.Links, l)
		for _, lid := range []int{l.Local.LID, l.Remote.LID} {
			if seen[lid] {
				continue
			}
			seen[lid] = true
			if n, ok := t.Node(lid); ok {
				res.Nodes = append(res.Nodes, n)
			}
		}
	}

	slices.SortFunc(res.Nodes, func(a, b *fabric.Node) int { return a.LID - b.LID })
	return res
}

func acceptAll(t *fabric.Topology, l *fabric.Link, ps []Predicate) bool {
	for _, p := range ps {
		if !p(t, l) {
			return false
		}
	}
	return true
}

// ByLID keeps a link iff at least one endpoint LID is in lids.
func ByLID(lids ...int) Predicate {
	want := make(map[int]bool, len(lids))
	for _, lid := range lids {
		want[lid] = true
	}
	return func(_ *fabric.Topology, l *fabric.Link) bool {
		return want[l.Local.LID] || want[l.Remote.LID]
	}
}

// Interconnect keeps a link iff both endpoints are switches.
func Interconnect(t *fabric.Topology, l *fabric.Link) bool {
	return t.IsInterconnect(l)
}

// HostsOnly keeps a link iff at least one endpoint is not a switch.
func HostsOnly(t *fabric.Topology, l *fabric.Link) bool {
	return !t.IsInterconnect(l)
}

var suffixRe = regexp.MustCompile(`(\d+)$`)

// ByHost keeps a link iff one of its non-switch endpoints is named host.
// A purely numeric host also matches the numeric suffix of the name, so
// "7" and "07" both select "node07".
func ByHost(host string) Predicate {
	return func(t *fabric.Topology, l *fabric.Link) bool {
		for _, ep := range []fabric.Endpoint{l.Local, l.Remote} {
			n, ok := t.Node(ep.LID)
			if !ok || n.IsSwitch {
				continue
			}
			if HostMatches(n.Name, host) {
				return true
			}
		}
		return false
	}
}

// HostMatches reports whether a display name matches a host token.
func HostMatches(name, host string) bool {
	if name == "" || host == "" {
		return false
	}
	if strings.EqualFold(name, host) {
		return true
	}
	want, err := strconv.Atoi(host)
	if err != nil {
		return false
	}
	m := suffixRe.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	got, err := strconv.Atoi(m[1])
	return err == nil && got == want
}

// String renders the active filters for log output.
func (o Options) String() string {
	active := o.Active()
	if len(active) == 0 {
		return "none"
	}
	return strings.Join(active, " ")
}
