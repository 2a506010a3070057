package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/smartnotes/note-analyzer/internal/analysis"
	"github.com/smartnotes/note-analyzer/internal/logging"
)

// Analyzer produces the analysis of one note
type Analyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Result, error)
	Mode() string
}

// ErrProcessingText is returned when the analyzer could not produce a
// readable result
var ErrProcessingText = errors.New("error processing text")

// Local runs the analysis in the current process
type Local struct {
	analyzer *analysis.Analyzer
}

// NewLocal creates an in-process analyzer
func NewLocal(opts analysis.Options) *Local {
	return &Local{analyzer: analysis.New(opts)}
}

// Analyze implements Analyzer. Analysis errors are part of the result, so
// the error is only set for a cancelled context.
func (l *Local) Analyze(ctx context.Context, text string) (analysis.Result, error) {
	if err := ctx.Err(); err != nil {
		return analysis.Result{}, err
	}
	return l.analyzer.Analyze(text), nil
}

// Mode implements Analyzer
func (l *Local) Mode() string {
	return "inprocess"
}

// Subprocess spawns the analyzer binary with the text as its only argument
// and reads one JSON line from its stdout.
type Subprocess struct {
	path    string
	args    []string
	timeout time.Duration
}

// NewSubprocess creates a subprocess analyzer. args are placed before the
// text on the command line.
func NewSubprocess(path string, timeout time.Duration, args ...string) *Subprocess {
	return &Subprocess{path: path, args: args, timeout: timeout}
}

// Analyze implements Analyzer
func (s *Subprocess) Analyze(ctx context.Context, text string) (analysis.Result, error) {
	logger := logging.FromContext(ctx)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := append(append([]string{}, s.args...), text)
	cmd := exec.CommandContext(ctx, s.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if stderr.Len() > 0 {
		logger.Error().Str("analyzer", s.path).Msg(strings.TrimSpace(stderr.String()))
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return analysis.Result{}, fmt.Errorf("%w: running %s: %w", ErrProcessingText, s.path, ctxErr)
	}

	// The analyzer reports its own failures as JSON and exits 0; output is
	// still read when the exit code says otherwise.
	result, err := analysis.DecodeLine(firstLine(stdout.Bytes()))
	if err != nil {
		if runErr != nil {
			return analysis.Result{}, fmt.Errorf("%w: running %s: %w", ErrProcessingText, s.path, runErr)
		}
		return analysis.Result{}, fmt.Errorf("%w: %w", ErrProcessingText, err)
	}
	if runErr != nil {
		logger.Warn().Err(runErr).Str("analyzer", s.path).Msg("Analyzer exited with an error but printed a result")
	}

	return result, nil
}

// Mode implements Analyzer
func (s *Subprocess) Mode() string {
	return "subprocess"
}

func firstLine(out []byte) []byte {
	out = bytes.TrimLeft(out, " \t\r\n")
	if i := bytes.IndexByte(out, '\n'); i >= 0 {
		return out[:i]
	}
	return out
}
