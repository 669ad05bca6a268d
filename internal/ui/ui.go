package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/gh-assist/internal/errors"
	"github.com/thomas-vilte/gh-assist/internal/i18n"
)

var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	BrandEmoji   = "✨"
	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	RocketEmoji  = Accent.Sprint("🚀")
)

// Output and Input are the terminal streams. Tests swap them for buffers.
var (
	Output io.Writer = os.Stdout
	Input  io.Reader = os.Stdin
)

var (
	inputReader *bufio.Reader
	inputSource io.Reader
)

// readLine shares one buffered reader per Input so consecutive prompts do
// not lose answers buffered by an earlier read.
func readLine() string {
	if inputReader == nil || inputSource != Input {
		inputSource = Input
		inputReader = bufio.NewReader(Input)
	}
	line, _ := inputReader.ReadString('\n')
	return line
}

// SmartSpinner shows progress while a collaborator call is in flight.
type SmartSpinner struct {
	spinner *spinner.Spinner
}

func NewSmartSpinner(message string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+BrandEmoji+" "+message),
		spinner.WithWriter(os.Stderr),
	)
	return &SmartSpinner{spinner: s}
}

func (s *SmartSpinner) Start() {
	s.spinner.Start()
}

func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
}

func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + BrandEmoji + " " + msg
}

func (s *SmartSpinner) Success(msg string) {
	s.Stop()
	PrintSuccess(Output, msg)
}

func (s *SmartSpinner) Error(msg string) {
	s.Stop()
	PrintError(Output, msg)
}

// WithSpinner runs fn behind a spinner and stops it before returning, so the
// caller can print the result or the error on a clean line.
func WithSpinner(message string, fn func() error) error {
	s := NewSmartSpinner(message)
	s.Start()
	defer s.Stop()
	return fn()
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(msg string) {
	_, _ = fmt.Fprintf(Output, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(msg string) {
	_, _ = fmt.Fprintf(Output, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(title string) {
	separator := color.New(color.FgCyan).Sprint(strings.Repeat("━", 32))
	_, _ = fmt.Fprintf(Output, "\n%s\n%s %s\n%s\n\n", separator, RocketEmoji, Accent.Sprint(title), separator)
}

func PrintKeyValue(key, value string) {
	_, _ = fmt.Fprintf(Output, "   %s %s\n", Dim.Sprint(key+":"), color.New(color.FgWhite, color.Bold).Sprint(value))
}

// PrintList prints a titled bullet list and nothing at all when items is empty.
func PrintList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(Output, "\n%s\n", Info.Sprint(title))
	for _, item := range items {
		_, _ = fmt.Fprintf(Output, "  • %s\n", item)
	}
}

// HandleAppError renders err with its kind, details and suggestion. Plain
// errors are printed as they are.
func HandleAppError(err error, t *i18n.Translations) {
	if err == nil {
		return
	}

	var appErr *domainErrors.AppError
	if !errors.As(err, &appErr) {
		PrintError(Output, err.Error())
		return
	}

	_, _ = fmt.Fprintln(Output)
	_, _ = Error.Fprintf(Output, "❌ %s: %s\n", appErr.Type, appErr.Message)

	if appErr.Err != nil {
		_, _ = Dim.Fprintf(Output, "   Details: %v\n", appErr.Err)
	}
	for _, key := range contextKeys(appErr.Context) {
		_, _ = Dim.Fprintf(Output, "   %s: %v\n", key, appErr.Context[key])
	}

	if appErr.Suggestion != "" {
		tryPrefix := "💡 Try: "
		if t != nil {
			tryPrefix = t.GetMessage("ui_error.try_suggestion", 0, nil)
		}
		_, _ = fmt.Fprintln(Output)
		_, _ = color.New(color.FgCyan).Fprint(Output, tryPrefix)
		for i, line := range strings.Split(appErr.Suggestion, "\n") {
			if i == 0 {
				_, _ = fmt.Fprintln(Output, line)
				continue
			}
			_, _ = fmt.Fprintf(Output, "       %s\n", line)
		}
	}
	_, _ = fmt.Fprintln(Output)
}

func contextKeys(ctx map[string]interface{}) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if k == "stderr" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AskConfirmation reads a yes/no answer. Anything but y, yes, s or si is no.
func AskConfirmation(question string) bool {
	_, _ = fmt.Fprintf(Output, "\n%s (y/n): ", Info.Sprint(question))
	switch strings.ToLower(strings.TrimSpace(readLine())) {
	case "y", "yes", "s", "si":
		return true
	default:
		return false
	}
}

// Prompt reads one line of free text. It returns def when the answer is empty.
func Prompt(question, def string) string {
	if def != "" {
		_, _ = fmt.Fprintf(Output, "%s [%s]: ", Info.Sprint(question), def)
	} else {
		_, _ = fmt.Fprintf(Output, "%s: ", Info.Sprint(question))
	}
	if answer := strings.TrimSpace(readLine()); answer != "" {
		return answer
	}
	return def
}

// EditText opens $EDITOR (nano, then vi) on initial and returns the saved
// text. Saving an empty file is an error.
func EditText(initial string) (string, error) {
	tmpFile, err := os.CreateTemp("", "gh-assist-*.txt")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	if _, err := tmpFile.WriteString(initial); err != nil {
		_ = tmpFile.Close()
		return "", fmt.Errorf("error writing temporary file: %w", err)
	}
	_ = tmpFile.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
		if _, err := exec.LookPath(editor); err != nil {
			editor = "vi"
		}
	}

	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running editor %s: %w", editor, err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("error reading edited text: %w", err)
	}

	edited := strings.TrimSpace(string(content))
	if edited == "" {
		return "", errors.New("edited text is empty")
	}
	return edited, nil
}
