// Package render turns fabric graph descriptions into output artifacts.
//
// # Overview
//
// The projection itself lives in the [dot] subpackage, which emits Graphviz
// DOT and renders it in-process to SVG, PNG or JPG. This package holds the
// converter that needs an external tool: [ToPDF] turns SVG into PDF with
// rsvg-convert (librsvg).
//
//	svg, err := dot.Render(ctx, src, "svg", "dot")
//	pdf, err := render.ToPDF(ctx, svg)
//
// A missing rsvg-convert binary yields an [errors.ErrCodeUnsupported] error
// naming the package to install.
//
// [dot]: github.com/matzehuels/ibtopo/pkg/render/dot
// [errors.ErrCodeUnsupported]: github.com/matzehuels/ibtopo/pkg/errors
package render
