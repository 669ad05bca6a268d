package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

const markdownWrap = 100

// RenderMarkdown renders text for the terminal. When the renderer cannot be
// built or fails, the text is returned unchanged.
func RenderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func PrintMarkdown(text string) {
	_, _ = fmt.Fprint(Output, RenderMarkdown(text))
}
