package ui

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/models"
)

// PrintTokenUsage prints the usage line of one model call. Nothing is printed
// when the provider reported no usage.
func PrintTokenUsage(usage *models.TokenUsage, t *i18n.Translations) {
	if usage == nil {
		return
	}

	dim := color.New(color.FgHiBlack)
	_, _ = dim.Fprintf(Output, "\n📊 %s: %s %d | %s %d | %s %d",
		t.GetMessage("ui.token_usage", 0, nil),
		t.GetMessage("ui.input", 0, nil), usage.InputTokens,
		t.GetMessage("ui.output", 0, nil), usage.OutputTokens,
		t.GetMessage("ui.total", 0, nil), usage.TotalTokens)

	if usage.CostUSD > 0 {
		_, _ = dim.Fprintf(Output, " | %s $%.4f", t.GetMessage("ui.cost", 0, nil), usage.CostUSD)
	}
	if usage.DurationMs > 0 {
		_, _ = dim.Fprintf(Output, " | %dms", usage.DurationMs)
	}
	if usage.Model != "" {
		_, _ = dim.Fprintf(Output, " | %s", usage.Model)
	}
	_, _ = fmt.Fprintln(Output)
}
