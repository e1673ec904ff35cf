package overlay

import (
	"math/rand"
	"strings"

	"upright/internal/channel"
	"upright/internal/textutil"
)

// glyphWidthFactor estimates rendered glyph width from font size. The planner
// never rasterizes fonts; layout only needs a stable conservative estimate.
const glyphWidthFactor = 0.6

// lineSpacingFactor adds breathing room between wrapped lines.
const lineSpacingFactor = 1.25

// hashtagsPlaceholder is replaced with the channel's hashtags in templates.
const hashtagsPlaceholder = "{hashtags}"

// Settings bounds overlay layout.
type Settings struct {
	// MaxWidthFrac is the fraction of frame width a line may occupy.
	MaxWidthFrac float64
	// Margin is the minimum pixel distance between text and any frame edge.
	Margin int
}

// Box is the pixel rectangle the rendered text block occupies.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Plan describes the text overlay for one render. A zero Plan means no
// overlay; the compositor skips empty plans.
type Plan struct {
	Text  string
	Lines []string
	Box   Box
	Font  channel.FontSettings
}

// Empty reports whether the plan draws nothing.
func (p Plan) Empty() bool {
	return len(p.Lines) == 0
}

// Planner lays out overlay text inside the target frame.
type Planner struct {
	settings Settings
}

// NewPlanner builds a planner with the given layout settings.
func NewPlanner(settings Settings) *Planner {
	if settings.MaxWidthFrac <= 0 || settings.MaxWidthFrac > 1 {
		settings.MaxWidthFrac = 0.9
	}
	if settings.Margin < 0 {
		settings.Margin = 0
	}
	return &Planner{settings: settings}
}

// Plan resolves a title template into a positioned overlay. The template's
// hashtags placeholder is filled, profanity is masked, and the text is
// uppercased before wrapping. An empty template yields an empty plan.
func (p *Planner) Plan(template string, hashtags []string, font channel.FontSettings, frameW, frameH int) Plan {
	text := strings.TrimSpace(template)
	if text == "" || frameW <= 0 || frameH <= 0 {
		return Plan{}
	}

	text = strings.ReplaceAll(text, hashtagsPlaceholder, strings.Join(hashtags, " "))
	text = textutil.Censor(text)
	text = textutil.Upper(strings.TrimSpace(text))
	if text == "" {
		return Plan{}
	}

	if font.Size <= 0 {
		font.Size = 70
	}
	glyphWidth := glyphWidthFactor * float64(font.Size)
	maxLineWidth := int(p.settings.MaxWidthFrac * float64(frameW))
	if usable := frameW - 2*p.settings.Margin; maxLineWidth > usable {
		maxLineWidth = usable
	}
	maxGlyphs := int(float64(maxLineWidth) / glyphWidth)
	if maxGlyphs < 1 {
		maxGlyphs = 1
	}

	lines := wrap(text, maxGlyphs)
	lineHeight := int(float64(font.Size) * lineSpacingFactor)
	box := Box{
		Width:  widestLine(lines, glyphWidth),
		Height: len(lines) * lineHeight,
	}
	box.X, box.Y = p.anchor(font, frameW, frameH, box)
	return Plan{
		Text:  text,
		Lines: lines,
		Box:   box,
		Font:  font,
	}
}

// ChooseTemplate picks one template pseudo-randomly. Blank templates are
// ignored; rng nil means first usable template.
func ChooseTemplate(templates []string, rng *rand.Rand) string {
	usable := make([]string, 0, len(templates))
	for _, tpl := range templates {
		if strings.TrimSpace(tpl) != "" {
			usable = append(usable, tpl)
		}
	}
	if len(usable) == 0 {
		return ""
	}
	if rng == nil {
		return usable[0]
	}
	return usable[rng.Intn(len(usable))]
}

func (p *Planner) anchor(font channel.FontSettings, frameW, frameH int, box Box) (int, int) {
	margin := p.settings.Margin

	x := margin
	switch font.Anchor {
	case channel.AnchorTopCenter, channel.AnchorBottomCenter:
		x = (frameW - box.Width) / 2
	}
	x = clamp(x, margin, max(margin, frameW-margin-box.Width))

	y := font.MarginY
	if font.Anchor == channel.AnchorBottomCenter {
		y = frameH - font.MarginY - box.Height
	}
	y = clamp(y, margin, max(margin, frameH-margin-box.Height))
	return x, y
}

// wrap greedily breaks text into lines of at most maxGlyphs characters.
// A single word longer than the limit gets its own line rather than being
// split mid-word.
func wrap(text string, maxGlyphs int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxGlyphs {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

func widestLine(lines []string, glyphWidth float64) int {
	widest := 0
	for _, line := range lines {
		if w := int(float64(len(line)) * glyphWidth); w > widest {
			widest = w
		}
	}
	return widest
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
