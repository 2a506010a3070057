package analysis

import "errors"

// Fixed summaries understood by the host application.
const (
	// ErrorSummary marks a failed analysis. The host matches on this exact
	// string, so it must not change.
	ErrorSummary = "Error in Python script"

	// NoTextSummary is answered when no text argument was given
	NoTextSummary = "No text provided"
)

var (
	// ErrInvalidUTF8 is returned for input that is not valid UTF-8
	ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

	// ErrTooManySentences is returned when a text has more sentences than
	// the analyzer is allowed to rank
	ErrTooManySentences = errors.New("text has too many sentences to summarize")
)

// Outcome tells how a Result was produced. It never reaches the wire: a
// failure serializes exactly like a success.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNoInput
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoInput:
		return "no_input"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the analysis of one text
type Result struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	Outcome  Outcome  `json:"-"`
}

// Success builds a successful result
func Success(summary string, keywords []string) Result {
	if keywords == nil {
		keywords = []string{}
	}
	return Result{Summary: summary, Keywords: keywords, Outcome: OutcomeSuccess}
}

// Failure turns an error into a result carrying its message as the only
// keyword.
func Failure(err error) Result {
	return Result{
		Summary:  ErrorSummary,
		Keywords: []string{err.Error()},
		Outcome:  OutcomeFailure,
	}
}

// NoInput is the result for an invocation without text
func NoInput() Result {
	return Result{Summary: NoTextSummary, Keywords: []string{}, Outcome: OutcomeNoInput}
}

// Failed reports whether the result carries an error message
func (r Result) Failed() bool {
	return r.Outcome == OutcomeFailure
}

// Err returns the failure as an error, or nil
func (r Result) Err() error {
	if !r.Failed() || len(r.Keywords) == 0 {
		return nil
	}
	return errors.New(r.Keywords[0])
}
