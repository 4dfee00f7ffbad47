package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultLanes is the lane count the per-lane rate is multiplied by.
const DefaultLanes = 4

var (
	rateRe = regexp.MustCompile(`(?:^|[\s(])(\d+(?:\.\d+)?)(?:\s*Gbps)?(?:[\s)]|$)`)
	downRe = regexp.MustCompile(`(?i)\b(?:down|unused|disabled|polling)\b`)
	nameRe = regexp.MustCompile(`(?i)^(?:\d+x)?(SDR|DDR|QDR|FDR10|FDR|EDR|HDR|NDR|XDR)$`)
)

// laneRates maps InfiniBand rate names to their per-lane signalling rate in
// Gb/s, as printed by iblinkinfo.
var laneRates = map[string]float64{
	"SDR":   2.5,
	"DDR":   5.0,
	"QDR":   10.0,
	"FDR10": 10.3125,
	"FDR":   14.0625,
	"EDR":   25.78125,
	"HDR":   53.125,
	"NDR":   106.25,
	"XDR":   212.5,
}

// NormalizeSpeed extracts the link rate from the text between the arrow
// delimiters of a port line. It returns the per-lane rate times lanes, and
// down=true when the port is reported as down or unused.
//
// A token with neither a rate nor a down marker yields (0, false).
func NormalizeSpeed(token string, lanes int) (speed float64, down bool) {
	if downRe.MatchString(token) {
		return 0, true
	}
	if m := rateRe.FindStringSubmatch(token); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return v * float64(lanes), false
		}
	}
	for _, f := range strings.Fields(token) {
		if rate, ok := RateByName(f); ok {
			return rate * float64(lanes), false
		}
	}
	return 0, false
}

// RateByName resolves a rate name such as "QDR" or "4xQDR" to its per-lane
// rate in Gb/s.
func RateByName(name string) (float64, bool) {
	m := nameRe.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}
	rate, ok := laneRates[strings.ToUpper(m[1])]
	return rate, ok
}
