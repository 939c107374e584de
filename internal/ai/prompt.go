package ai

import (
	"fmt"
	"strings"
)

var categoryHints = map[string]string{
	"practice":       "tools, wireframes, sketches, sticky notes, prototypes, design artifacts, user flows",
	"design-reviews": "screens, interfaces, magnifying glass, design critique, comparison layouts",
	"career":         "desk workspace, ladder, handshake, briefcase, growth chart, mentorship scene",
	"signals":        "radar, compass, telescope, trend arrows, emerging technology, data patterns",
	"journal":        "notebook, pen, coffee cup, window view, thoughtful workspace, open sketchbook",
}

const defaultHints = "design tools, digital interfaces, creative workspace"

// ImageSubject is the article content an illustration is drawn from.
type ImageSubject struct {
	Title        string
	Dek          string
	Excerpt      string
	BodyMarkdown string
	Category     string
	Topic        string
}

// ImagePrompt builds the stipple-engraving illustration prompt for s.
func ImagePrompt(s ImageSubject) string {
	hints, ok := categoryHints[s.Category]
	if !ok {
		hints = defaultHints
	}
	title := s.Title
	if title == "" {
		title = "UX design"
	}
	summary := s.Dek
	if summary == "" {
		summary = s.Excerpt
	}
	summary = truncateRunes(summary, 300)

	var b strings.Builder
	b.WriteString("Editorial illustration for a UX design newspaper article.\n\n")
	b.WriteString("SUBJECT (the image must clearly relate to this):\n")
	fmt.Fprintf(&b, "Article: %q\n", title)
	if s.Topic != "" {
		fmt.Fprintf(&b, "Topic focus: %s. ", s.Topic)
	}
	fmt.Fprintf(&b, "Summary: %q\n", summary)
	if body := truncateRunes(s.BodyMarkdown, 500); body != "" {
		fmt.Fprintf(&b, "Opening: %q\n", body)
	}
	fmt.Fprintf(&b, "Depict a specific scene, object, or visual metaphor for the article's subject. "+
		"Consider objects like: %s. Do not default to a generic face or person.\n\n", hints)
	b.WriteString("STYLE (Hedcut stipple engraving):\n")
	b.WriteString("Black and white only. Rendered entirely with tiny hand-drawn ink dots and fine crosshatch " +
		"lines on a pure white background, in the style of classic newspaper hedcut portraits. High contrast. " +
		"No solid fills, no gradients, no gray tones, only varying dot density.")
	return b.String()
}
