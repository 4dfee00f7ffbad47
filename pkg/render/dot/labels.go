package dot

import (
	"html"
	"strconv"
	"strings"

	"github.com/matzehuels/ibtopo/pkg/fabric"
)

// Default label templates.
const (
	DefaultSwitchTemplate   = "{name}\n{free}"
	DefaultEndpointTemplate = "{name}"

	LabeledSwitchTemplate   = "{name}\nLID {lid}\n{guid}\n{free}"
	LabeledEndpointTemplate = "{name}\nLID {lid}\n{guid}"
)

// portsPerRow caps the width of a switch port table.
const portsPerRow = 12

// FreeSummary describes a free-port count in words.
func FreeSummary(free int) string {
	switch {
	case free <= 0:
		return "full"
	case free == 1:
		return "1 port free"
	default:
		return strconv.Itoa(free) + " ports free"
	}
}

// Expand substitutes node fields into tmpl and returns the non-empty lines.
func Expand(tmpl string, n *fabric.Node, showGUID bool) []string {
	guid := ""
	if showGUID {
		guid = n.GUID
	}
	name := n.Name
	if name == "" {
		name = "lid" + strconv.Itoa(n.LID)
	}

	r := strings.NewReplacer(
		`\n`, "\n",
		"{lid}", strconv.Itoa(n.LID),
		"{guid}", guid,
		"{name}", name,
		"{free}", FreeSummary(n.FreePorts()),
		"{used}", strconv.Itoa(n.UsedPorts()),
	)

	var lines []string
	for _, line := range strings.Split(r.Replace(tmpl), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ValidateTemplate reports whether tmpl contains only known tokens.
func ValidateTemplate(tmpl string) bool {
	known := strings.NewReplacer("{lid}", "", "{guid}", "", "{name}", "", "{free}", "", "{used}", "")
	rest := known.Replace(tmpl)
	return !strings.ContainsAny(rest, "{}")
}

// portCount is the number of cells drawn for a switch. A partial dump can
// count ports above TotalPorts.
func portCount(n *fabric.Node) int {
	return max(n.TotalPorts, n.HighestPort())
}

func switchLabel(n *fabric.Node, opts Options) string {
	lines := Expand(opts.SwitchTemplate, n, opts.ShowGUID)
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}

	ports := portCount(n)
	span := min(max(ports, 1), portsPerRow)

	var b strings.Builder
	b.WriteString(`<<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0" CELLPADDING="4">`)
	b.WriteString(`<TR><TD COLSPAN="` + strconv.Itoa(span) + `"><B>`)
	b.WriteString(strings.Join(lines, "<BR/>"))
	b.WriteString(`</B></TD></TR>`)

	for p := 1; p <= ports; p++ {
		if (p-1)%portsPerRow == 0 {
			b.WriteString("<TR>")
		}
		b.WriteString(`<TD PORT="` + portID(p) + `"`)
		if !opts.NoColor {
			if c := portColor(n, p); c != "" {
				b.WriteString(` BGCOLOR="` + c + `"`)
			}
		}
		b.WriteString(">" + strconv.Itoa(p) + "</TD>")
		if p%portsPerRow == 0 || p == ports {
			b.WriteString("</TR>")
		}
	}
	b.WriteString("</TABLE>>")
	return b.String()
}

// portColor shades reported ports without a cable as free and ports the
// dump never mentioned as unknown. Occupied ports stay unshaded.
func portColor(n *fabric.Node, port int) string {
	if _, used := n.Ports[port]; used {
		return ""
	}
	if n.Reported(port) {
		return colorFreePort
	}
	return colorUnknownPort
}

func endpointLabel(n *fabric.Node, opts Options) string {
	return quote(strings.Join(Expand(opts.EndpointTemplate, n, opts.ShowGUID), "\n"))
}

// quote renders s as a DOT double-quoted string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func nodeID(lid int) string { return "lid" + strconv.Itoa(lid) }

func portID(port int) string { return "p" + strconv.Itoa(port) }
