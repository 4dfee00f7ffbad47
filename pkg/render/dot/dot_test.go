package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
)

func sw(lid, port int) fabric.Endpoint {
	return fabric.Endpoint{LID: lid, Port: port, GUID: "0x00" + string(rune('a'+lid)), Name: "sw" + string(rune('0'+lid))}
}

func host(lid int, name string) fabric.Endpoint {
	return fabric.Endpoint{LID: lid, Port: 1, Name: name}
}

// testFabric: two switches joined by one cable, one QDR and one DDR host,
// one host at an unrecognized speed and a free port on switch 4.
func testFabric() *fabric.Topology {
	t := fabric.New()
	t.Record(sw(3, 1), host(10, "node07"), 40)
	t.Record(sw(3, 2), sw(4, 1), 40)
	t.Record(sw(4, 1), sw(3, 2), 40)
	t.Record(sw(4, 2), host(11, "node11"), 20)
	t.Record(sw(4, 3), host(12, "gpu12"), 100)
	t.Record(sw(4, 4), fabric.Endpoint{}, 0)
	return t
}

func TestToDOT_Structure(t *testing.T) {
	src := ToDOT(filter.Apply(testFabric(), filter.Options{}), Options{})

	for _, want := range []string{
		"graph fabric {",
		"lid3 [shape=plaintext",
		"lid4 [shape=plaintext",
		`lid10 [shape=box, style="rounded", label="node07"]`,
		`lid3:p2 -- lid4:p1 [style="bold", penwidth=3, color="#1f4e79"]`,
		`lid3:p1 -- lid10 [penwidth=2, color="#c62828"]`,
		`lid4:p2 -- lid11 [color="#90caf9"]`,
		"lid4:p3 -- lid12;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("DOT missing %q\n%s", want, src)
		}
	}
	if n := strings.Count(src, " -- "); n != 4 {
		t.Errorf("edge count = %d, want 4", n)
	}
	if strings.Contains(src, "lid4:p1 -- lid3:p2") {
		t.Error("interconnect cable emitted from the higher LID side")
	}
	if !strings.HasSuffix(src, "}\n") {
		t.Error("DOT should end with closing brace")
	}
}

func TestToDOT_NoColor(t *testing.T) {
	src := ToDOT(filter.Apply(testFabric(), filter.Options{}), Options{NoColor: true})

	if strings.Contains(src, `color="#`) || strings.Contains(src, "BGCOLOR") {
		t.Errorf("no-color DOT still contains colors:\n%s", src)
	}
	if !strings.Contains(src, `lid3:p2 -- lid4:p1 [style="bold", penwidth=3]`) {
		t.Errorf("interconnect should keep its stroke weight:\n%s", src)
	}
	if !strings.Contains(src, "lid3:p1 -- lid10 [penwidth=2]") {
		t.Errorf("high-speed host link should keep its weight:\n%s", src)
	}
}

func TestToDOT_Labels(t *testing.T) {
	src := ToDOT(filter.Apply(testFabric(), filter.Options{}), Options{Labels: true})

	if !strings.Contains(src, `label="40 Gb/s"`) {
		t.Errorf("missing speed label:\n%s", src)
	}
	if !strings.Contains(src, `label="node07\nLID 10"`) {
		t.Errorf("missing labeled endpoint:\n%s", src)
	}
	if strings.Contains(src, "0x00") {
		t.Error("GUID shown without ShowGUID")
	}

	src = ToDOT(filter.Apply(testFabric(), filter.Options{}), Options{Labels: true, ShowGUID: true})
	if !strings.Contains(src, "0x00d") {
		t.Errorf("GUID missing with ShowGUID:\n%s", src)
	}
}

func TestToDOT_PortTable(t *testing.T) {
	src := ToDOT(filter.Apply(testFabric(), filter.Options{LIDs: []int{4}}), Options{})

	for p := 1; p <= 4; p++ {
		if !strings.Contains(src, `PORT="p`+string(rune('0'+p))+`"`) {
			t.Errorf("switch 4 missing port cell %d", p)
		}
	}
	if !strings.Contains(src, `<TD PORT="p4" BGCOLOR="#c8e6c9">4</TD>`) {
		t.Errorf("free port 4 should be shaded:\n%s", src)
	}
	if !strings.Contains(src, `<TD PORT="p1">1</TD>`) {
		t.Errorf("used port 1 should not be shaded:\n%s", src)
	}
	if !strings.Contains(src, "sw4<BR/>1 port free") {
		t.Errorf("missing free-port summary:\n%s", src)
	}
}

func TestToDOT_PartialDump(t *testing.T) {
	// Only port 5 of the switch was reported; ports 1-4 are unknown.
	topo := fabric.New()
	topo.Record(sw(1, 5), host(20, "node20"), 40)

	src := ToDOT(filter.Apply(topo, filter.Options{}), Options{})

	if !strings.Contains(src, "sw1<BR/>full") {
		t.Errorf("summary should report no free ports:\n%s", src)
	}
	if strings.Contains(src, colorFreePort) {
		t.Errorf("unreported ports shaded as free:\n%s", src)
	}
	for p := 1; p <= 4; p++ {
		cell := `<TD PORT="p` + string(rune('0'+p)) + `" BGCOLOR="` + colorUnknownPort + `">`
		if !strings.Contains(src, cell) {
			t.Errorf("port %d should be shaded unknown:\n%s", p, src)
		}
	}
	if !strings.Contains(src, `<TD PORT="p5">5</TD>`) {
		t.Errorf("used port 5 should not be shaded:\n%s", src)
	}
}

func TestToDOT_DrawsHighestFreePort(t *testing.T) {
	topo := fabric.New()
	topo.Record(sw(1, 1), host(20, "node20"), 40)
	topo.Record(sw(1, 8), fabric.Endpoint{}, 0)

	src := ToDOT(filter.Apply(topo, filter.Options{}), Options{})
	if !strings.Contains(src, `<TD PORT="p8" BGCOLOR="`+colorFreePort+`">8</TD>`) {
		t.Errorf("free port 8 should be drawn:\n%s", src)
	}
	if !strings.Contains(src, "sw1<BR/>1 port free") {
		t.Errorf("summary should count port 8:\n%s", src)
	}
}

func TestToDOT_FreeCellsMatchSummary(t *testing.T) {
	// A peer names port 19; the switch itself reports ports 1 and 2,
	// port 2 with nothing attached.
	topo := fabric.New()
	topo.Record(sw(3, 1), sw(4, 19), 40)
	topo.Record(sw(4, 1), host(30, "node30"), 40)
	topo.Record(sw(4, 2), fabric.Endpoint{}, 0)

	src := ToDOT(filter.Apply(topo, filter.Options{LIDs: []int{4}}), Options{})

	n, _ := topo.Node(4)
	free := strings.Count(src, `BGCOLOR="`+colorFreePort+`"`)
	if free != len(n.FreePortNumbers()) {
		t.Errorf("free cells = %d, want %d", free, len(n.FreePortNumbers()))
	}
	if !strings.Contains(src, `<TD PORT="p2" BGCOLOR="`+colorFreePort+`">2</TD>`) {
		t.Errorf("reported port 2 should be shaded free:\n%s", src)
	}
	if !strings.Contains(src, `<TD PORT="p19">19</TD>`) {
		t.Errorf("port 19 holds a cable:\n%s", src)
	}
}

func TestToDOT_Filtered(t *testing.T) {
	src := ToDOT(filter.Apply(testFabric(), filter.Options{Host: "node07"}), Options{})

	if strings.Contains(src, "lid4") {
		t.Errorf("switch 4 should be filtered out:\n%s", src)
	}
	if n := strings.Count(src, " -- "); n != 1 {
		t.Errorf("edge count = %d, want 1", n)
	}
	// Switch 3 keeps both occupied cells even though one cable is hidden.
	if strings.Contains(src, `<TD PORT="p2" BGCOLOR`) {
		t.Error("port occupied by a hidden cable shown as free")
	}
}

func TestToDOT_Empty(t *testing.T) {
	src := ToDOT(filter.Apply(fabric.New(), filter.Options{}), Options{})
	if !strings.HasPrefix(src, "graph fabric {") || strings.Contains(src, "--") {
		t.Errorf("empty topology should produce an empty graph:\n%s", src)
	}
}

func TestToDOT_Loopback(t *testing.T) {
	topo := fabric.New()
	topo.Record(sw(3, 1), sw(3, 2), 40)
	topo.Record(sw(3, 2), sw(3, 1), 40)

	src := ToDOT(filter.Apply(topo, filter.Options{}), Options{})
	if n := strings.Count(src, " -- "); n != 1 {
		t.Errorf("loopback emitted %d times, want 1:\n%s", n, src)
	}
}

func TestToDOT_EscapesNames(t *testing.T) {
	topo := fabric.New()
	topo.Record(fabric.Endpoint{LID: 1, Port: 1, Name: `core<1>:"a"`}, host(2, `n"1`), 40)

	src := ToDOT(filter.Apply(topo, filter.Options{}), Options{})
	if !strings.Contains(src, "core&lt;1&gt;:&#34;a&#34;") {
		t.Errorf("switch name not HTML-escaped:\n%s", src)
	}
	if !strings.Contains(src, `label="n\"1"`) {
		t.Errorf("endpoint name not quoted:\n%s", src)
	}
	if !strings.Contains(src, "lid1:p1 -- lid2") {
		t.Errorf("identifiers must not depend on names:\n%s", src)
	}
}

func TestFreeSummary(t *testing.T) {
	tests := []struct {
		free int
		want string
	}{
		{0, "full"},
		{-1, "full"},
		{1, "1 port free"},
		{2, "2 ports free"},
		{36, "36 ports free"},
	}
	for _, tt := range tests {
		if got := FreeSummary(tt.free); got != tt.want {
			t.Errorf("FreeSummary(%d) = %q, want %q", tt.free, got, tt.want)
		}
	}
}

func TestExpand(t *testing.T) {
	n := &fabric.Node{LID: 7, GUID: "0xabc", Name: "leaf1", IsSwitch: true, TotalPorts: 3,
		Ports: map[int]*fabric.Link{1: {}}}

	tests := []struct {
		name     string
		tmpl     string
		showGUID bool
		want     []string
	}{
		{"name only", "{name}", false, []string{"leaf1"}},
		{"escaped newline", `{name}\n{lid}`, false, []string{"leaf1", "7"}},
		{"guid hidden", "{name}\n{guid}\n{free}", false, []string{"leaf1", "2 ports free"}},
		{"guid shown", "{guid}", true, []string{"0xabc"}},
		{"used", "{used}/{lid}", false, []string{"1/7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.tmpl, n, tt.showGUID)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Expand(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	if !ValidateTemplate("{name} LID {lid} {guid} {free} {used}") {
		t.Error("known tokens rejected")
	}
	if ValidateTemplate("{hostname}") {
		t.Error("unknown token accepted")
	}
}

func TestClassify(t *testing.T) {
	opts := Options{}.WithDefaults()
	tests := []struct {
		interconnect bool
		speed        float64
		want         EdgeClass
	}{
		{true, 40, EdgeInterconnect},
		{true, 0, EdgeInterconnect},
		{false, 40, EdgeHighSpeed},
		{false, 20, EdgeLowSpeed},
		{false, 100, EdgeDefault},
		{false, 0, EdgeDefault},
	}
	for _, tt := range tests {
		if got := Classify(tt.interconnect, tt.speed, opts); got != tt.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", tt.interconnect, tt.speed, got, tt.want)
		}
	}
}

func TestSpeedLabel(t *testing.T) {
	if got := SpeedLabel(40); got != "40 Gb/s" {
		t.Errorf("SpeedLabel(40) = %q", got)
	}
	if got := SpeedLabel(56.25); got != "56.25 Gb/s" {
		t.Errorf("SpeedLabel(56.25) = %q", got)
	}
}

func TestRender(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	src := ToDOT(filter.Apply(testFabric(), filter.Options{}), Options{})

	svg, err := Render(context.Background(), src, "svg", "dot")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0`) {
		t.Errorf("SVG viewBox not normalized: %.200s", svg)
	}
}

func TestRender_Invalid(t *testing.T) {
	ctx := context.Background()
	if _, err := Render(ctx, "graph{}", "gif", "dot"); err == nil {
		t.Error("Render() should reject unsupported format")
	}
	if _, err := Render(ctx, "graph{}", "svg", "bogus"); err == nil {
		t.Error("Render() should reject unknown layout")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.40 200.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.40 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("SVG without viewBox should be unchanged")
	}
}
