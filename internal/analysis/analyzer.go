package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smartnotes/note-analyzer/internal/textrank"
)

// Options tunes an Analyzer
type Options struct {
	Language         string
	SentenceCount    int
	MaxKeywords      int
	MinKeywordLength int

	// MaxSentences bounds the sentences ranked per text. Ranking needs
	// memory quadratic in the sentence count. Zero means no limit.
	MaxSentences int
}

// DefaultOptions returns the options used by the command line analyzer
func DefaultOptions() Options {
	return Options{
		Language:         textrank.English,
		SentenceCount:    2,
		MaxKeywords:      5,
		MinKeywordLength: 6,
	}
}

// SentenceRanker selects the most representative sentences of a text,
// in document order.
type SentenceRanker interface {
	Rank(text string, count int) ([]string, error)
}

// minRankableSentences is the smallest document worth summarizing. Shorter
// input falls back to the raw text.
const minRankableSentences = 2

// TextRanker ranks sentences with TextRank
type TextRanker struct {
	Language     string
	MaxSentences int
}

// Rank implements SentenceRanker
func (r TextRanker) Rank(text string, count int) ([]string, error) {
	summarizer, err := textrank.NewSummarizer(r.Language)
	if err != nil {
		return nil, err
	}

	doc := summarizer.Parse(text)
	n := len(doc.Sentences())
	if n < minRankableSentences {
		return nil, nil
	}
	if r.MaxSentences > 0 && n > r.MaxSentences {
		return nil, fmt.Errorf("%w: %d, limit is %d", ErrTooManySentences, n, r.MaxSentences)
	}

	best := textrank.BestSentences(doc, count)
	out := make([]string, len(best))
	for i, s := range best {
		out[i] = s.String()
	}
	return out, nil
}

// Analyzer produces summaries and keywords
type Analyzer struct {
	opts   Options
	ranker SentenceRanker
}

// New creates an analyzer backed by TextRank
func New(opts Options) *Analyzer {
	return NewWithRanker(opts, TextRanker{Language: opts.Language, MaxSentences: opts.MaxSentences})
}

// NewWithRanker creates an analyzer with a custom sentence ranker
func NewWithRanker(opts Options, ranker SentenceRanker) *Analyzer {
	return &Analyzer{opts: opts, ranker: ranker}
}

// AnalyzeArgs analyzes the first argument, or answers NoInput when there is
// none. Extra arguments are ignored.
func (a *Analyzer) AnalyzeArgs(args []string) Result {
	if len(args) == 0 {
		return NoInput()
	}
	return a.Analyze(args[0])
}

// Analyze never fails: errors and panics become a Failure result.
func (a *Analyzer) Analyze(text string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				result = Failure(err)
				return
			}
			result = Failure(fmt.Errorf("%v", r))
		}
	}()

	summary, keywords, err := a.analyze(text)
	if err != nil {
		return Failure(err)
	}
	return Success(summary, keywords)
}

func (a *Analyzer) analyze(text string) (string, []string, error) {
	if !utf8.ValidString(text) {
		return "", nil, ErrInvalidUTF8
	}

	sentences, err := a.ranker.Rank(text, a.opts.SentenceCount)
	if err != nil {
		return "", nil, err
	}

	summary := strings.Join(sentences, " ")
	if summary == "" {
		summary = text
	}

	keywords := ExtractKeywords(text, a.opts.MinKeywordLength, a.opts.MaxKeywords)

	return summary, keywords, nil
}
