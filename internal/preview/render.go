package preview

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgpai22/lyricsync/internal/highlight"
	"github.com/mgpai22/lyricsync/internal/lyric"
	"github.com/mgpai22/lyricsync/internal/timecode"
	"github.com/mgpai22/lyricsync/internal/timing"
)

const (
	DefaultWidth = 60
	fillerDot    = "●"
)

var (
	colorSecondary = lipgloss.Color("208") // orange
	colorTogether  = lipgloss.Color("250") // light gray
	colorPrimary   = lipgloss.Color("75")  // blue
	colorMuted     = lipgloss.Color("244")
)

// Renderer draws frames as styled terminal text.
type Renderer struct {
	width int

	frame       lipgloss.Style
	header      lipgloss.Style
	translation lipgloss.Style
	background  lipgloss.Style
	parts       map[lyric.VocalPart]lipgloss.Style
	empty       lipgloss.Style
	lr          *lipgloss.Renderer
}

// NewRenderer creates a renderer whose color support is detected from out.
func NewRenderer(out io.Writer, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	lr := lipgloss.NewRenderer(out)

	return &Renderer{
		width: width,
		lr:    lr,
		frame: lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			Width(width),
		header: lr.NewStyle().
			Foreground(colorMuted),
		translation: lr.NewStyle().
			Foreground(colorMuted).
			Italic(true),
		background: lr.NewStyle().
			Faint(true),
		parts: map[lyric.VocalPart]lipgloss.Style{
			lyric.PartPrimary:   lr.NewStyle().Foreground(colorPrimary).Bold(true),
			lyric.PartSecondary: lr.NewStyle().Foreground(colorSecondary).Bold(true),
			lyric.PartTogether:  lr.NewStyle().Foreground(colorTogether).Bold(true),
		},
		empty: lr.NewStyle().
			Foreground(colorMuted),
	}
}

// Render draws the active lines of f inside a bordered box.
func (r *Renderer) Render(f Frame) string {
	var rows []string
	rows = append(rows, r.header.Render(fmt.Sprintf("▶ %s", timecode.Format(f.Time, timecode.PrecisionCentiseconds))))

	if len(f.Lines) == 0 {
		rows = append(rows, r.empty.Render("♪"))
	}
	for i, ls := range f.Lines {
		rows = append(rows, r.renderLine(ls, f.Highlights[i], ls.Index == f.Primary)...)
	}

	return r.frame.Render(strings.Join(rows, "\n"))
}

func (r *Renderer) renderLine(ls timing.LineState, hl LineHighlights, primary bool) []string {
	var rows []string

	marker := "  "
	if primary {
		marker = "› "
	}

	if ls.Main.Synthetic {
		rows = append(rows, marker+r.renderDots(ls.Main, hl.Main))
		return rows
	}
	if ls.Kind == lyric.KindEnd && len(ls.Main.Phrases) == 0 {
		rows = append(rows, marker+r.empty.Render("[end]"))
		return rows
	}

	part := r.parts[ls.Part]
	rows = append(rows, marker+part.Render(partLabel(ls.Part))+" "+r.renderTrack(ls.Main, hl.Main))

	if ls.Background != nil {
		bg := r.background.Render("(") + r.renderTrack(*ls.Background, hl.Background) + r.background.Render(")")
		rows = append(rows, "    "+bg)
		if ls.BackgroundTranslation != "" {
			rows = append(rows, "    "+r.translation.Render(ls.BackgroundTranslation))
		}
	}
	if ls.Translation != "" {
		rows = append(rows, "    "+r.translation.Render(ls.Translation))
	}
	return rows
}

func (r *Renderer) renderTrack(ts timing.TrackState, hl []highlight.Params) string {
	var b strings.Builder
	for i, p := range ts.Phrases {
		style := r.lr.NewStyle().Foreground(shade(hl[i].Alpha))
		if p.Emphasized {
			style = style.Bold(true)
		}
		if hl[i].Glow {
			style = style.Underline(true)
		}
		b.WriteString(style.Render(p.Text))
	}
	return b.String()
}

func (r *Renderer) renderDots(ts timing.TrackState, hl []highlight.Params) string {
	dots := make([]string, len(ts.Phrases))
	for i := range ts.Phrases {
		dots[i] = r.lr.NewStyle().Foreground(shade(hl[i].Alpha)).Render(fillerDot)
	}
	return strings.Join(dots, " ")
}

func partLabel(p lyric.VocalPart) string {
	switch p {
	case lyric.PartSecondary:
		return "2"
	case lyric.PartTogether:
		return "T"
	default:
		return "1"
	}
}

// shade maps a highlight alpha onto a gray between the unfilled base
// and white.
func shade(alpha float64) lipgloss.Color {
	frac := (alpha - highlight.BaseAlpha) / (highlight.FilledAlpha - highlight.BaseAlpha)
	frac = math.Max(0, math.Min(1, frac))
	base := float64(highlight.BaseColor.R)
	v := int(math.Round(base + (255-base)*frac))
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", v, v, v))
}
