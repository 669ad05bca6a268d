// Package cmdtest holds helpers shared by the command tests.
package cmdtest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/gh-assist/internal/config"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
	"github.com/thomas-vilte/gh-assist/internal/ui"
)

// Setup loads the English messages and a default configuration.
func Setup(t *testing.T) (*i18n.Translations, *config.Config) {
	t.Helper()
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	return translations, config.Default()
}

// CaptureOutput redirects ui.Output to a buffer for the rest of the test.
func CaptureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true
	buf := &bytes.Buffer{}
	prev := ui.Output
	ui.Output = buf
	t.Cleanup(func() { ui.Output = prev })
	return buf
}

// WithInput makes ui prompts read answers from input.
func WithInput(t *testing.T, input string) {
	t.Helper()
	prev := ui.Input
	ui.Input = strings.NewReader(input)
	t.Cleanup(func() { ui.Input = prev })
}
