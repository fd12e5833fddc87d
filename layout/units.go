package layout

import (
	"encoding/json"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.
// Logical units are CSS pixels (96 per inch).

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // CSS pixels (logical units)
	UnitPT               // points
	UnitMM               // millimeters
	UnitIN               // inches
)

// Conversion constants between pt, mm and px.
const (
	PtToMm  = 25.4 / 72
	MmToPt  = 72 / 25.4
	PxPerIn = 96.0
	PxPerPt = PxPerIn / 72
	PxPerMm = PxPerIn / 25.4
)

// DefaultLineHeightFactor is applied when a block leaves line-height unset.
const DefaultLineHeightFactor = 1.2

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX converts this length to logical pixels. Unit-less values are already pixels.
func (l Length) ToPX() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PxPerPt
	case UnitMM:
		return l.Value * PxPerMm
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// ParseRawLengthStr parses a DSL length string preserving its unit.
func ParseRawLengthStr(value string) Length {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"in", UnitIN}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightUnset LineHeightKind = iota
	LineHeightFactor
	LineHeightAbsolute
)

// LineHeightSpec preserves original author intent: either a factor (e.g., 1.2x) or an absolute length (e.g., 18px).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// FactorLineHeight returns a factor-based spec.
func FactorLineHeight(f float64) LineHeightSpec {
	return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
}

// AbsoluteLineHeight returns a spec fixed to px logical pixels.
func AbsoluteLineHeight(px float64) LineHeightSpec {
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: Length{Value: px, Unit: UnitPX}}
}

// ParseLineHeight accepts "1.3x", a bare factor below 4 ("1.3"), or an absolute length ("18px").
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return LineHeightSpec{}, false
	}
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, false
		}
		return FactorLineHeight(f), true
	}
	l := ParseRawLengthStr(v)
	if l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	if l.Unit == UnitNone && l.Value < 4 {
		return FactorLineHeight(l.Value), true
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Resolve computes the absolute line height in logical pixels for the given font size.
func (s LineHeightSpec) Resolve(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize * s.Factor
	case LineHeightAbsolute:
		return s.Len.ToPX()
	default:
		return fontSize * DefaultLineHeightFactor
	}
}

// MarshalJSON writes the kind as a readable string for debug output.
func (s LineHeightSpec) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind   string  `json:"kind"`
		Factor float64 `json:"factor,omitempty"`
		Value  float64 `json:"value,omitempty"`
		Unit   string  `json:"unit,omitempty"`
	}{}
	switch s.Kind {
	case LineHeightFactor:
		out.Kind = "factor"
		out.Factor = s.Factor
	case LineHeightAbsolute:
		out.Kind = "absolute"
		out.Value = s.Len.Value
		out.Unit = UnitToString(s.Len.Unit)
	default:
		out.Kind = "normal"
	}
	return json.Marshal(out)
}
