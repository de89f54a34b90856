package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Result is a finished render.
type Result struct {
	URL        string `json:"url"`
	OutputPath string `json:"outputPath,omitempty"`
	LogPath    string `json:"logPath,omitempty"`
}

// Renderer encodes a composition into a video.
type Renderer interface {
	Render(ctx context.Context, req Request) (Result, error)
}

// Placeholders substituted into CommandRenderer arguments.
const (
	PlaceholderComposition = "{composition}"
	PlaceholderProps       = "{props}"
	PlaceholderOutput      = "{output}"
	PlaceholderScale       = "{scale}"
)

// DefaultCommandArgs invokes a Remotion-style CLI.
var DefaultCommandArgs = []string{"render", PlaceholderComposition, PlaceholderOutput, "--props", PlaceholderProps, "--scale", PlaceholderScale}

// CommandRenderer runs an external renderer CLI with the props written to a
// JSON file next to the output.
type CommandRenderer struct {
	Command   string
	Args      []string
	Dir       string
	OutputDir string
	LogsDir   string
	Runner    Runner
	Stderr    io.Writer
	Now       func() time.Time
}

func (r *CommandRenderer) Render(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(r.Command) == "" {
		return Result{}, errors.New("render command not configured")
	}
	runner := r.Runner
	if runner == nil {
		runner = CmdRunner{}
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure output directory: %w", err)
	}

	base := fmt.Sprintf("%s-%s", strings.ToLower(req.ID), now().UTC().Format("20060102-150405"))
	propsPath := filepath.Join(r.OutputDir, base+".props.json")
	outputPath := filepath.Join(r.OutputDir, base+".mp4")

	data, err := json.MarshalIndent(req.InputProps, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encode props: %w", err)
	}
	if err := os.WriteFile(propsPath, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write props: %w", err)
	}

	result := Result{URL: outputPath, OutputPath: outputPath}
	opts := RunOptions{Dir: r.Dir, Stderr: r.Stderr}
	if r.LogsDir != "" {
		if err := os.MkdirAll(r.LogsDir, 0o755); err != nil {
			return Result{}, fmt.Errorf("ensure logs directory: %w", err)
		}
		result.LogPath = filepath.Join(r.LogsDir, base+".log")
		logFile, err := os.Create(result.LogPath)
		if err != nil {
			return Result{}, fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		opts.Stderr = logFile
		if r.Stderr != nil {
			opts.Stderr = io.MultiWriter(logFile, r.Stderr)
		}
	}

	args := r.Args
	if len(args) == 0 {
		args = DefaultCommandArgs
	}
	if _, err := runner.Run(ctx, r.Command, expandArgs(args, req, propsPath, outputPath), opts); err != nil {
		_ = os.Remove(outputPath)
		if result.LogPath != "" {
			return Result{}, fmt.Errorf("renderer failed: %w (see %s)", err, result.LogPath)
		}
		return Result{}, fmt.Errorf("renderer failed: %w", err)
	}
	return result, nil
}

func expandArgs(args []string, req Request, propsPath, outputPath string) []string {
	scale := req.Scale
	if scale <= 0 {
		scale = 1
	}
	replacer := strings.NewReplacer(
		PlaceholderComposition, req.ID,
		PlaceholderProps, propsPath,
		PlaceholderOutput, outputPath,
		PlaceholderScale, strconv.FormatFloat(scale, 'f', -1, 64),
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = replacer.Replace(a)
	}
	return out
}

// HTTPRenderer posts the request to a render endpoint that answers with a
// {type, data, message} envelope.
type HTTPRenderer struct {
	Endpoint string
	Client   *http.Client
}

type envelope struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    Result `json:"data"`
}

func (r *HTTPRenderer) Render(ctx context.Context, req Request) (Result, error) {
	if r.Endpoint == "" {
		return Result{}, errors.New("render endpoint not configured")
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return Result{}, fmt.Errorf("render response (%s): %w", resp.Status, err)
	}
	if env.Type == "error" {
		return Result{}, errors.New(env.Message)
	}
	if resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("render endpoint returned %s", resp.Status)
	}
	if env.Data.URL == "" {
		return Result{}, errors.New("render response missing url")
	}
	return env.Data, nil
}
