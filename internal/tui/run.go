package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// OutputMode describes how progress output should be rendered.
type OutputMode int

const (
	// ModeTUI uses bubbletea for interactive output.
	ModeTUI OutputMode = iota
	// ModePlain writes a static summary after all work completes.
	ModePlain
	// ModeJSON writes structured JSON output.
	ModeJSON
)

// DetectMode picks the output mode for out. Anything that is not an
// interactive terminal gets plain output.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	switch {
	case jsonOutput:
		return ModeJSON
	case noProgress:
		return ModePlain
	}
	file, ok := out.(*os.File)
	if !ok {
		return ModePlain
	}
	if info, err := file.Stat(); err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		if term := os.Getenv("TERM"); term == "" || strings.EqualFold(term, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}

// RunWithWork starts a program for model, runs workFn in the background and
// blocks until the program exits. workFn's send yields briefly after each
// message so the renderer can draw between updates.
func RunWithWork(out io.Writer, model ProgressModel, workFn func(send func(tea.Msg))) error {
	p := tea.NewProgram(model, tea.WithOutput(out))

	go func() {
		time.Sleep(50 * time.Millisecond)
		workFn(func(msg tea.Msg) {
			p.Send(msg)
			time.Sleep(time.Millisecond)
		})
		p.Send(WorkDoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(ProgressModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// RunPreview runs an interactive preview on the alternate screen.
func RunPreview(in io.Reader, out io.Writer, model PreviewModel) error {
	opts := []tea.ProgramOption{tea.WithOutput(out), tea.WithAltScreen()}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	_, err := tea.NewProgram(model, opts...).Run()
	return err
}
