// Package pipeline runs the ibtopo render pipeline.
//
// This package implements the complete parse → filter → project → render
// pipeline shared by the CLI and the HTTP API, so both entry points log,
// cache and fail the same way.
//
// # Stages
//
//  1. Parse: classify each input line and build the [fabric.Topology]
//  2. Filter: keep the links selected by the active filters
//  3. Project: emit the canonical Graphviz DOT description
//  4. Render: produce each requested export format from the DOT source
//
// The DOT description is always produced. A format that fails to render is
// recorded in [Result.Failures] and does not affect the other formats.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    LIDs:    []int{3},
//	    Formats: []string{"svg", "pdf"},
//	})
//	if err != nil {
//	    return err // unreadable input or invalid options
//	}
//	os.WriteFile("fabric.dot", []byte(result.DOT), 0o644)
//	if err := result.Err(); err != nil {
//	    // some formats failed; result.Artifacts holds the rest
//	}
//
// [fabric.Topology]: github.com/matzehuels/ibtopo/pkg/fabric
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
	"github.com/matzehuels/ibtopo/pkg/fabric/parse"
	"github.com/matzehuels/ibtopo/pkg/render/dot"
)

// DefaultBasename is the output file basename when none is given.
const DefaultBasename = "ibtopo"

// DialectJSON reads a topology previously exported with the json format
// instead of a diagnostic dump.
const DialectJSON = "json"

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJPG  = "jpg"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJPG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatYAML: true,
}

// FormatNames lists the supported formats in display order.
var FormatNames = []string{FormatDOT, FormatSVG, FormatPNG, FormatJPG, FormatPDF, FormatJSON, FormatYAML}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatDOT:  "text/vnd.graphviz",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatJPG:  "image/jpeg",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatYAML: "application/yaml",
}

// Options is the single configuration value for a pipeline run.
// It supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Dialect        string   `json:"dialect,omitempty"`
	AdapterMarkers []string `json:"adapter_markers,omitempty"`

	// Filter options
	LIDs         []int  `json:"lids,omitempty"`
	Interconnect bool   `json:"interconnect,omitempty"`
	HostsOnly    bool   `json:"hosts_only,omitempty"`
	Host         string `json:"host,omitempty"`

	// Projection options
	NoColor          bool    `json:"no_color,omitempty"`
	Labels           bool    `json:"labels,omitempty"`
	ShowGUID         bool    `json:"show_guid,omitempty"`
	SwitchTemplate   string  `json:"switch_template,omitempty"`
	EndpointTemplate string  `json:"endpoint_template,omitempty"`
	HighSpeed        float64 `json:"high_speed,omitempty"`
	LowSpeed         float64 `json:"low_speed,omitempty"`

	// Output options
	Basename string   `json:"basename,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Layout   string   `json:"layout,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Topology is the full parsed fabric.
	Topology *fabric.Topology

	// Selection is the filtered view that was projected.
	Selection filter.Result

	// DOT is the canonical graph description. It is always set.
	DOT string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Failures holds the formats that could not be rendered.
	Failures errors.FormatErrors

	// Stats contains counts and timings.
	Stats Stats

	// CacheInfo tracks which formats came from the cache.
	CacheInfo CacheInfo
}

// Err returns the per-format failures as an error, or nil.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return r.Failures
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Parse         parse.Stats
	NodeCount     int
	LinkCount     int
	ShownNodes    int
	ShownLinks    int
	ParseTime     time.Duration
	RenderTime    time.Duration
	EmptyTopology bool
}

// CacheInfo tracks cache hits per format.
type CacheInfo struct {
	Hits []string // formats served from the cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDialect checks that a dialect is a parser dialect or DialectJSON.
func ValidateDialect(dialect string) error {
	if dialect == DialectJSON {
		return nil
	}
	_, err := parse.ParseDialect(dialect)
	return err
}

// SetDefaults fills unset options. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Dialect == "" {
		o.Dialect = string(parse.DialectAuto)
	}
	if len(o.AdapterMarkers) == 0 {
		o.AdapterMarkers = slices.Clone(parse.DefaultAdapterMarkers)
	}
	if o.HighSpeed == 0 {
		o.HighSpeed = dot.DefaultHighSpeed
	}
	if o.LowSpeed == 0 {
		o.LowSpeed = dot.DefaultLowSpeed
	}
	if o.Basename == "" {
		o.Basename = DefaultBasename
	}
	if o.Layout == "" {
		o.Layout = dot.DefaultLayout
	}
	o.Formats = dedupe(o.Formats)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks every option. Call SetDefaults first.
func (o *Options) Validate() error {
	if err := ValidateDialect(o.Dialect); err != nil {
		return err
	}
	if err := o.FilterOptions().Validate(); err != nil {
		return err
	}
	if o.Interconnect && o.HostsOnly {
		return errors.New(errors.ErrCodeInvalidFilter, "interconnect and hosts filters are mutually exclusive")
	}
	for _, tmpl := range []string{o.SwitchTemplate, o.EndpointTemplate} {
		if !dot.ValidateTemplate(tmpl) {
			return errors.New(errors.ErrCodeInvalidTemplate,
				"label template %q uses an unknown token (known: {lid} {guid} {name} {free} {used})", tmpl)
		}
	}
	if o.HighSpeed < 0 || o.LowSpeed < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "speed tiers must be positive")
	}
	if err := errors.ValidateBasename(o.Basename); err != nil {
		return err
	}
	if !dot.ValidLayout(o.Layout) {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid layout: %q (must be one of: %s)", o.Layout, strings.Join(dot.Layouts, ", "))
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// ParseOptions returns the parser configuration.
func (o *Options) ParseOptions() parse.Options {
	return parse.Options{
		Dialect:        parse.Dialect(o.Dialect),
		AdapterMarkers: o.AdapterMarkers,
	}
}

// FilterOptions returns the filter configuration.
func (o *Options) FilterOptions() filter.Options {
	return filter.Options{
		LIDs:         o.LIDs,
		Interconnect: o.Interconnect,
		HostsOnly:    o.HostsOnly,
		Host:         o.Host,
	}
}

// DOTOptions returns the projection configuration.
func (o *Options) DOTOptions() dot.Options {
	return dot.Options{
		NoColor:          o.NoColor,
		Labels:           o.Labels,
		ShowGUID:         o.ShowGUID,
		SwitchTemplate:   o.SwitchTemplate,
		EndpointTemplate: o.EndpointTemplate,
		HighSpeed:        o.HighSpeed,
		LowSpeed:         o.LowSpeed,
	}
}

func dedupe(formats []string) []string {
	var out []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
