package parse

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/fabric"
)

// DefaultAdapterMarkers are the name tokens that identify a host adapter.
var DefaultAdapterMarkers = []string{"HCA"}

// maxLineSize bounds a single input line; ibnetdiscover lines with long
// node descriptions exceed bufio's 64KiB default only in broken dumps.
const maxLineSize = 1 << 20

// Options configures a Parser.
type Options struct {
	// Dialect selects the line pattern. Empty means DialectAuto.
	Dialect Dialect

	// AdapterMarkers are substrings of a reporting name that mark the line
	// as an adapter report. Nil means DefaultAdapterMarkers.
	AdapterMarkers []string

	// Lanes multiplies the per-lane rate. Zero means DefaultLanes.
	Lanes int
}

// Stats counts how input lines were classified.
type Stats struct {
	Lines    int // total lines read
	Headers  int // section headers
	Records  int // switch port reports
	Adapters int // adapter reports skipped
	Ignored  int // unrecognized lines
	Links    int // new links stored in the topology
}

// Parser classifies lines and feeds port records into a topology.
// A Parser holds the current section context and is not safe for concurrent use.
type Parser struct {
	matchers []matcher
	markers  []string
	lanes    int
	section  section
}

// ParseDialect validates a dialect name. Empty selects DialectAuto.
func ParseDialect(s string) (Dialect, error) {
	if s == "" {
		return DialectAuto, nil
	}
	d := Dialect(strings.ToLower(s))
	if !slices.Contains(Dialects, d) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown dialect %q (must be one of: auto, line, section, netdiscover)", s)
	}
	return d, nil
}

// NewParser creates a parser for the given options.
func NewParser(opts Options) (*Parser, error) {
	d, err := ParseDialect(string(opts.Dialect))
	if err != nil {
		return nil, err
	}

	p := &Parser{markers: opts.AdapterMarkers, lanes: opts.Lanes}
	if p.markers == nil {
		p.markers = DefaultAdapterMarkers
	}
	if p.lanes <= 0 {
		p.lanes = DefaultLanes
	}

	switch d {
	case DialectLine:
		p.matchers = []matcher{lineMatcher{}}
	case DialectSection:
		p.matchers = []matcher{sectionMatcher{}}
	case DialectNetdiscover:
		p.matchers = []matcher{netdiscoverMatcher{}}
	default:
		// netdiscover headers also start with "Switch", so it goes before section.
		p.matchers = []matcher{lineMatcher{}, netdiscoverMatcher{}, sectionMatcher{}}
	}
	return p, nil
}

// Classify determines the role of one line and extracts its fields.
// Header lines update the parser's section context.
func (p *Parser) Classify(line string) Line {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Line{}
	}
	for _, m := range p.matchers {
		if l, ok := m.match(p, line); ok {
			return l
		}
	}
	return Line{}
}

// Parse reads r to completion and records every switch port report in topo.
// Only a read failure is an error; unrecognized lines are counted and skipped.
func (p *Parser) Parse(r io.Reader, topo *fabric.Topology) (Stats, error) {
	var st Stats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		st.Lines++
		l := p.Classify(sc.Text())
		switch l.Kind {
		case KindHeader:
			st.Headers++
			if l.Ports > 0 {
				topo.Declare(l.Local, l.Ports)
			}
		case KindAdapter:
			st.Adapters++
		case KindRecord:
			st.Records++
			if topo.Record(l.Local, l.Remote, l.Speed) {
				st.Links++
			}
		default:
			st.Ignored++
		}
	}
	if err := sc.Err(); err != nil {
		return st, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input at line %d", st.Lines+1)
	}
	return st, nil
}

// Parse is a convenience wrapper that builds a fresh topology from r.
func Parse(r io.Reader, opts Options) (*fabric.Topology, Stats, error) {
	p, err := NewParser(opts)
	if err != nil {
		return nil, Stats{}, err
	}
	topo := fabric.New()
	st, err := p.Parse(r, topo)
	if err != nil {
		return nil, st, err
	}
	return topo, st, nil
}

// record assembles a port report. The speed token decides whether the peer
// is present; a down port or a peer without a LID is recorded as unconnected.
func (p *Parser) record(local, remote fabric.Endpoint, speedToken string, adapter bool) Line {
	kind := KindRecord
	if adapter {
		kind = KindAdapter
	}

	speed, down := NormalizeSpeed(speedToken, p.lanes)
	remote.Name = firstWord(remote.Name)
	if down || remote.Name == "" || remote.LID == 0 {
		remote = fabric.Endpoint{}
		speed = 0
	}
	return Line{Kind: kind, Local: local, Remote: remote, Speed: speed}
}

func (p *Parser) isAdapter(name string) bool {
	for _, m := range p.markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// firstWord truncates a peer name to its first whitespace-delimited token.
func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// String renders stats for log output.
func (s Stats) String() string {
	return fmt.Sprintf("%d lines: %d records, %d headers, %d adapter, %d ignored, %d links",
		s.Lines, s.Records, s.Headers, s.Adapters, s.Ignored, s.Links)
}
