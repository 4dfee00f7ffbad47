package dot

import (
	"math"
	"strconv"
	"strings"
)

// Default speed tiers in Gb/s.
const (
	DefaultHighSpeed = 40
	DefaultLowSpeed  = 20
)

const (
	colorFreePort     = "#c8e6c9"
	colorUnknownPort  = "#e0e0e0"
	colorInterconnect = "#1f4e79"
	colorHighSpeed    = "#c62828"
	colorLowSpeed     = "#90caf9"
)

// EdgeClass is the styling category of a cable.
type EdgeClass int

const (
	EdgeDefault EdgeClass = iota
	EdgeInterconnect
	EdgeHighSpeed
	EdgeLowSpeed
)

func (c EdgeClass) String() string {
	switch c {
	case EdgeInterconnect:
		return "interconnect"
	case EdgeHighSpeed:
		return "high-speed"
	case EdgeLowSpeed:
		return "low-speed"
	default:
		return "default"
	}
}

// Classify picks the styling category for a cable.
func Classify(interconnect bool, speed float64, opts Options) EdgeClass {
	switch {
	case interconnect:
		return EdgeInterconnect
	case sameSpeed(speed, opts.HighSpeed):
		return EdgeHighSpeed
	case sameSpeed(speed, opts.LowSpeed):
		return EdgeLowSpeed
	default:
		return EdgeDefault
	}
}

func sameSpeed(a, b float64) bool {
	return b > 0 && math.Abs(a-b) < 1e-6
}

// edgeAttrs returns the DOT attributes for one edge, in a fixed order.
func edgeAttrs(class EdgeClass, speed float64, opts Options) []string {
	var attrs []string
	switch class {
	case EdgeInterconnect:
		attrs = append(attrs, `style="bold"`, "penwidth=3")
		if !opts.NoColor {
			attrs = append(attrs, quoteAttr("color", colorInterconnect))
		}
	case EdgeHighSpeed:
		attrs = append(attrs, "penwidth=2")
		if !opts.NoColor {
			attrs = append(attrs, quoteAttr("color", colorHighSpeed))
		}
	case EdgeLowSpeed:
		if !opts.NoColor {
			attrs = append(attrs, quoteAttr("color", colorLowSpeed))
		}
	}
	if opts.Labels && speed > 0 {
		attrs = append(attrs, "label="+quote(SpeedLabel(speed)))
	}
	return attrs
}

// SpeedLabel formats an aggregate rate, e.g. "40 Gb/s".
func SpeedLabel(speed float64) string {
	return strconv.FormatFloat(speed, 'f', -1, 64) + " Gb/s"
}

func quoteAttr(key, value string) string {
	return key + "=" + quote(value)
}

func attrList(attrs []string) string {
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}
