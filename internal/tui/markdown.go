package tui

import "strings"

// formatMarkdown renders the small markdown subset models tend to emit:
// headings, bullets and **bold**
func formatMarkdown(text string, s *Styles) string {
	lines := strings.Split(text, "\n")
	formatted := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			formatted = append(formatted, s.Heading.Render(heading))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			bullet := strings.TrimSpace(trimmed[2:])
			formatted = append(formatted, "  "+s.Muted.Render("•")+" "+processBold(bullet, s))
		default:
			formatted = append(formatted, processBold(line, s))
		}
	}

	return strings.Join(formatted, "\n")
}

// processBold styles text between ** pairs. An unclosed pair runs to the end of the line.
func processBold(text string, s *Styles) string {
	parts := strings.Split(text, "**")
	if len(parts) == 1 {
		return text
	}

	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString(s.Bold.Render(part))
		} else {
			b.WriteString(part)
		}
	}
	return b.String()
}
