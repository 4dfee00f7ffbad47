package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ibtopo/pkg/errors"
)

// DefaultLayout is the Graphviz engine used when none is requested.
const DefaultLayout = "dot"

// Layouts lists the supported Graphviz layout engines.
var Layouts = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi"}

// Formats lists the output formats [Render] produces in-process.
var Formats = []string{"svg", "png", "jpg"}

var gvFormats = map[string]graphviz.Format{
	"svg": graphviz.SVG,
	"png": graphviz.PNG,
	"jpg": graphviz.JPG,
}

// ValidLayout reports whether name is a supported layout engine.
func ValidLayout(name string) bool {
	for _, l := range Layouts {
		if l == name {
			return true
		}
	}
	return false
}

// Render lays out DOT source with the given engine and renders it.
// SVG output gets a normalized viewBox so it scales cleanly when embedded.
func Render(ctx context.Context, src, format, layout string) ([]byte, error) {
	gvFormat, ok := gvFormats[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "graphviz cannot render format %q", format)
	}
	if layout == "" {
		layout = DefaultLayout
	}
	if !ValidLayout(layout) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown layout engine %q", layout)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(layout))

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	if format == "svg" {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
