// Package text measures and wraps node labels for layout.
//
// Layout needs a pixel width for every label line before a single box
// can be sized, but the engine must work without a rendering surface
// (tests, headless CLI). Measurement is therefore abstracted behind the
// [Metrics] interface with a rune-width heuristic as the default; a host
// with access to real font metrics can plug in its own implementation.
// Whatever implementation is used must stay fixed for one layout pass -
// mixing metrics between measurement and rendering clips labels.
package text

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

// charWidthRatio approximates average glyph width as a fraction of the
// font size for common UI fonts.
const charWidthRatio = 0.55

// Font describes the measurement basis for one layout pass.
type Font struct {
	Family     string
	Size       float64
	LineHeight float64
}

// DefaultFont is the measurement basis used when the host supplies none.
var DefaultFont = Font{
	Family:     "Helvetica, Arial, sans-serif",
	Size:       13,
	LineHeight: 18,
}

// Metrics computes the rendered width of a string in layout units.
// Implementations must be pure: identical input, identical output.
type Metrics interface {
	// Measure returns the width of s. Font metrics are fixed at
	// construction time, so the result depends on s alone.
	Measure(s string) float64

	// Font returns the font description the metrics are based on.
	Font() Font
}

// HeuristicMetrics estimates widths from terminal cell counts, scaled
// by the font size. Cell counts come from go-runewidth so wide runes
// (CJK, emoji) occupy two units, which tracks proportional fonts far
// better than len(s).
type HeuristicMetrics struct {
	font Font
}

// NewHeuristicMetrics creates heuristic metrics for the given font.
// Zero-valued fields fall back to DefaultFont.
func NewHeuristicMetrics(f Font) *HeuristicMetrics {
	if f.Family == "" {
		f.Family = DefaultFont.Family
	}
	if f.Size <= 0 {
		f.Size = DefaultFont.Size
	}
	if f.LineHeight <= 0 {
		f.LineHeight = f.Size * DefaultFont.LineHeight / DefaultFont.Size
	}
	return &HeuristicMetrics{font: f}
}

// Measure returns the estimated width of s.
func (m *HeuristicMetrics) Measure(s string) float64 {
	return float64(runewidth.StringWidth(s)) * m.font.Size * charWidthRatio
}

// Font returns the font the metrics are based on.
func (m *HeuristicMetrics) Font() Font { return m.font }

// Memoized wraps another Metrics with an unbounded memo keyed by the
// input string. Labels are static across layout passes, so this turns
// repeated re-measurement on every toggle into map lookups. Safe for
// concurrent use.
type Memoized struct {
	inner Metrics
	mu    sync.RWMutex
	cache map[string]float64
}

// Memoize wraps m with a measurement cache.
func Memoize(m Metrics) *Memoized {
	return &Memoized{inner: m, cache: make(map[string]float64)}
}

// Measure returns the cached width of s, measuring once on first use.
func (m *Memoized) Measure(s string) float64 {
	m.mu.RLock()
	w, ok := m.cache[s]
	m.mu.RUnlock()
	if ok {
		return w
	}
	w = m.inner.Measure(s)
	m.mu.Lock()
	m.cache[s] = w
	m.mu.Unlock()
	return w
}

// Font returns the wrapped metrics' font.
func (m *Memoized) Font() Font { return m.inner.Font() }

// Len reports the number of cached measurements.
func (m *Memoized) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// Wrap splits s into lines no wider than maxWidth using greedy word
// wrap: the next word joins the current line while the measured width of
// the combined line stays within maxWidth, otherwise it starts a new
// line. A single word wider than maxWidth is kept on its own line
// unsplit - words are never broken mid-token. The empty string wraps to
// one empty line, never zero lines.
func Wrap(m Metrics, s string, maxWidth float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, 1)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.Measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// MaxLineWidth returns the width of the widest line.
func MaxLineWidth(m Metrics, lines []string) float64 {
	var max float64
	for _, line := range lines {
		if w := m.Measure(line); w > max {
			max = w
		}
	}
	return max
}
