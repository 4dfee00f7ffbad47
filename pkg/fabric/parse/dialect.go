package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/ibtopo/pkg/fabric"
)

// Dialect selects the structural pattern used to read port lines.
type Dialect string

// Supported dialects.
const (
	DialectAuto        Dialect = "auto"
	DialectLine        Dialect = "line"
	DialectSection     Dialect = "section"
	DialectNetdiscover Dialect = "netdiscover"
)

// Dialects lists every selectable dialect.
var Dialects = []Dialect{DialectAuto, DialectLine, DialectSection, DialectNetdiscover}

// Kind is the role of a classified line.
type Kind int

const (
	// KindIgnored is a line that matches no known pattern.
	KindIgnored Kind = iota
	// KindHeader is a section header that sets the current switch context.
	KindHeader
	// KindRecord is a switch port report.
	KindRecord
	// KindAdapter is a port report from an adapter; it carries no mutation.
	KindAdapter
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindRecord:
		return "record"
	case KindAdapter:
		return "adapter"
	default:
		return "ignored"
	}
}

// Line is the result of classifying one input line. Local and Remote are
// only meaningful for KindRecord and KindAdapter. An unconnected port has a
// zero Remote.
//
// A header that announces a switch's port count sets Ports and carries the
// switch identity in Local.
type Line struct {
	Kind   Kind
	Local  fabric.Endpoint
	Remote fabric.Endpoint
	Speed  float64
	Ports  int
}

// section is the header context for dialects whose port lines omit the
// reporting switch's identity.
type section struct {
	guid    string
	name    string
	lid     int
	adapter bool
}

// matcher recognizes one dialect's line shapes.
type matcher interface {
	match(p *Parser, line string) (Line, bool)
}

const (
	guidPat = `(0x[0-9A-Fa-f]+)`
	portPat = `(\d+)(?:\[[^\]]*\])?`
)

// =============================================================================
// line: iblinkinfo -l
// =============================================================================

var lineRe = regexp.MustCompile(`^\s*` + guidPat + `\s+"([^"]*)"\s+(\d+)\s+` + portPat +
	`\s+(.*?)\s*(?:` + guidPat + `\s+)?(?:(\d+)\s+` + portPat + `\s*)?"([^"]*)"`)

type lineMatcher struct{}

func (lineMatcher) match(p *Parser, s string) (Line, bool) {
	m := lineRe.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	local := fabric.Endpoint{LID: atoi(m[3]), Port: atoi(m[4]), GUID: m[1], Name: m[2]}
	remote := fabric.Endpoint{LID: atoi(m[7]), Port: atoi(m[8]), GUID: m[6], Name: m[9]}
	return p.record(local, remote, m[5], p.isAdapter(local.Name)), true
}

// =============================================================================
// section: iblinkinfo
// =============================================================================

var (
	sectionHeaderRe = regexp.MustCompile(`^\s*(Switch|CA):?\s+(?:` + guidPat + `\s+)?(.*?):?\s*$`)
	sectionPortRe   = regexp.MustCompile(`^\s*(\d+)\s+` + portPat + `\s+==\((.*?)\)==>\s*(?:` + guidPat +
		`\s+)?(?:(\d+)\s+` + portPat + `\s*|\[[^\]]*\]\s*)?"([^"]*)"`)
)

type sectionMatcher struct{}

func (sectionMatcher) match(p *Parser, s string) (Line, bool) {
	if m := sectionHeaderRe.FindStringSubmatch(s); m != nil {
		p.section = section{
			guid:    m[2],
			name:    strings.TrimSpace(m[3]),
			adapter: m[1] == "CA" || p.isAdapter(m[3]),
		}
		return Line{Kind: KindHeader}, true
	}
	m := sectionPortRe.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	local := fabric.Endpoint{LID: atoi(m[1]), Port: atoi(m[2]), GUID: p.section.guid, Name: p.section.name}
	remote := fabric.Endpoint{LID: atoi(m[5]), Port: atoi(m[6]), GUID: m[4], Name: m[7]}
	return p.record(local, remote, m[3], p.section.adapter), true
}

// =============================================================================
// netdiscover: ibnetdiscover topology file
// =============================================================================

var (
	ndSwitchRe  = regexp.MustCompile(`^\s*Switch\s+(\d+)\s+"S-([0-9A-Fa-f]+)"\s*#\s*"([^"]*)".*?\blid\s+(\d+)`)
	ndAdapterRe = regexp.MustCompile(`^\s*(?:Ca|Rt)\s+\d+\s+"[HR]-([0-9A-Fa-f]+)"\s*#\s*"([^"]*)"`)
	ndPortRe    = regexp.MustCompile(`^\s*\[(\d+)\](?:\([0-9A-Fa-f]+\))?\s+"[SHR]-([0-9A-Fa-f]+)"\[(\d+)\]` +
		`(?:\([0-9A-Fa-f]+\))?\s*(?:#\s*"([^"]*)"\s*(?:lid\s+(\d+))?\s*(\S+)?)?`)
)

type netdiscoverMatcher struct{}

func (netdiscoverMatcher) match(p *Parser, s string) (Line, bool) {
	if m := ndSwitchRe.FindStringSubmatch(s); m != nil {
		p.section = section{guid: "0x" + m[2], name: m[3], lid: atoi(m[4]), adapter: p.isAdapter(m[3])}
		if p.section.adapter {
			return Line{Kind: KindHeader}, true
		}
		local := fabric.Endpoint{LID: p.section.lid, GUID: p.section.guid, Name: p.section.name}
		return Line{Kind: KindHeader, Local: local, Ports: atoi(m[1])}, true
	}
	if m := ndAdapterRe.FindStringSubmatch(s); m != nil {
		p.section = section{guid: "0x" + m[1], name: m[2], adapter: true}
		return Line{Kind: KindHeader}, true
	}
	m := ndPortRe.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	if p.section.lid == 0 && !p.section.adapter {
		// Port line outside any switch section.
		return Line{}, true
	}
	local := fabric.Endpoint{LID: p.section.lid, Port: atoi(m[1]), GUID: p.section.guid, Name: p.section.name}
	remote := fabric.Endpoint{LID: atoi(m[5]), Port: atoi(m[3]), GUID: "0x" + m[2], Name: m[4]}
	return p.record(local, remote, m[6], p.section.adapter), true
}

// atoi parses a decimal field; absent fields yield 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
