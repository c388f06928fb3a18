package types

import "strings"

// Unit is the CSS unit carried by a Numeric value.
type Unit int

const (
	UnitNone    Unit = iota // unitless number
	UnitPx                  // px
	UnitPercent             // %
	UnitEm                  // em
	UnitRem                 // rem
	UnitEx                  // ex
	UnitCh                  // ch
	UnitVw                  // vw
	UnitVh                  // vh
	UnitVmin                // vmin
	UnitVmax                // vmax
	UnitCm                  // cm
	UnitMm                  // mm
	UnitQ                   // q
	UnitIn                  // in
	UnitPt                  // pt
	UnitPc                  // pc
	UnitDeg                 // deg
	UnitRad                 // rad
	UnitGrad                // grad
	UnitTurn                // turn
	UnitS                   // s
	UnitMs                  // ms
	UnitHz                  // hz
	UnitKhz                 // khz
	UnitDpi                 // dpi
	UnitDpcm                // dpcm
	UnitDppx                // dppx
	UnitFr                  // fr
)

var unitSuffixes = [...]string{
	UnitNone:    "",
	UnitPx:      "px",
	UnitPercent: "%",
	UnitEm:      "em",
	UnitRem:     "rem",
	UnitEx:      "ex",
	UnitCh:      "ch",
	UnitVw:      "vw",
	UnitVh:      "vh",
	UnitVmin:    "vmin",
	UnitVmax:    "vmax",
	UnitCm:      "cm",
	UnitMm:      "mm",
	UnitQ:       "q",
	UnitIn:      "in",
	UnitPt:      "pt",
	UnitPc:      "pc",
	UnitDeg:     "deg",
	UnitRad:     "rad",
	UnitGrad:    "grad",
	UnitTurn:    "turn",
	UnitS:       "s",
	UnitMs:      "ms",
	UnitHz:      "hz",
	UnitKhz:     "khz",
	UnitDpi:     "dpi",
	UnitDpcm:    "dpcm",
	UnitDppx:    "dppx",
	UnitFr:      "fr",
}

var unitsBySuffix = func() map[string]Unit {
	m := make(map[string]Unit, len(unitSuffixes))
	for u, s := range unitSuffixes {
		m[s] = Unit(u)
	}
	return m
}()

// String returns the CSS suffix of the unit ("" for UnitNone).
func (u Unit) String() string {
	if u < 0 || int(u) >= len(unitSuffixes) {
		return ""
	}
	return unitSuffixes[u]
}

// IsRelative reports whether the unit's absolute size is only known at
// render time. Arithmetic on such values is deferred to calc().
func (u Unit) IsRelative() bool {
	switch u {
	case UnitPercent, UnitVw, UnitVh:
		return true
	default:
		return false
	}
}

// ParseUnit resolves a CSS unit suffix. Matching is case-insensitive, as in CSS.
func ParseUnit(suffix string) (Unit, bool) {
	u, ok := unitsBySuffix[strings.ToLower(suffix)]
	return u, ok
}
