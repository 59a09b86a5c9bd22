package highlight

import (
	"fmt"
	"math"
	"strings"
)

const (
	BaseAlpha   = 0.35
	FilledAlpha = 0.85
	// half-width of the soft edge between filled and unfilled, in percent
	BandWidth = 8.0
	// emphasized phrases swell by up to this fraction mid-phrase
	EmphasisScale = 0.1
	// every phrase rises this many pixels as it fills
	Lift = 2.0
)

type Regime int

const (
	Unfilled Regime = iota
	Partial
	Filled
)

func (r Regime) String() string {
	switch r {
	case Unfilled:
		return "unfilled"
	case Partial:
		return "partial"
	case Filled:
		return "filled"
	default:
		return fmt.Sprintf("Regime(%d)", int(r))
	}
}

type RGBA struct {
	R, G, B uint8
	A       float64
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatFloat(c.A))
}

var (
	BaseColor = RGBA{R: 132, G: 132, B: 132, A: BaseAlpha}
	FillColor = RGBA{R: 255, G: 255, B: 255}
)

// one gradient stop, position in percent
type Stop struct {
	Position float64
	Color    RGBA
}

// visual parameters for one phrase at one progress value
type Params struct {
	Progress float64
	Regime   Regime
	Alpha    float64
	Stops    []Stop
	Scale    float64
	OffsetY  float64
	Glow     bool
}

// Compute derives the highlight for a phrase. progress is clamped to
// [0, 1]; NaN is treated as 0.
func Compute(progress float64, emphasized bool) Params {
	p := clamp(progress)

	params := Params{
		Progress: p,
		Scale:    1,
		OffsetY:  -Lift * p,
	}

	switch {
	case p <= 0:
		params.Regime = Unfilled
		params.Alpha = BaseAlpha
		params.Stops = []Stop{
			{Position: 0, Color: BaseColor},
			{Position: 100, Color: BaseColor},
		}
	case p >= 1:
		params.Regime = Filled
		params.Alpha = FilledAlpha
		filled := fill(FilledAlpha)
		params.Stops = []Stop{
			{Position: 0, Color: filled},
			{Position: 100, Color: filled},
		}
	default:
		params.Regime = Partial
		params.Alpha = BaseAlpha + (FilledAlpha-BaseAlpha)*math.Sin(p*math.Pi/2)
		stop := p * 100
		filled := fill(params.Alpha)
		params.Stops = []Stop{
			{Position: 0, Color: filled},
			{Position: math.Max(0, stop-BandWidth), Color: filled},
			{Position: math.Min(100+BandWidth, stop+BandWidth), Color: BaseColor},
			{Position: 100, Color: BaseColor},
		}
	}

	if emphasized {
		params.Scale = 1 + EmphasisScale*math.Sin(p*math.Pi)
		params.Glow = p > 0 && p < 1
	}

	return params
}

// CSS renders the params as inline style declarations for a web renderer.
func (p Params) CSS() string {
	stops := make([]string, len(p.Stops))
	for i, s := range p.Stops {
		stops[i] = fmt.Sprintf("%s %s%%", s.Color, formatFloat(s.Position))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "background-image: linear-gradient(to right, %s); ", strings.Join(stops, ", "))
	b.WriteString("background-clip: text; -webkit-background-clip: text; color: transparent; ")
	fmt.Fprintf(&b, "transform: matrix(%s, 0, 0, %s, 0, %s);",
		formatFloat(p.Scale), formatFloat(p.Scale), formatFloat(p.OffsetY))
	if p.Glow {
		b.WriteString(" text-shadow: 0 0 10px rgba(255, 255, 255, 0.5);")
	}
	return b.String()
}

func fill(alpha float64) RGBA {
	c := FillColor
	c.A = alpha
	return c
}

func clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// trims float noise so 0.35000000000000003 renders as 0.35
func formatFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
