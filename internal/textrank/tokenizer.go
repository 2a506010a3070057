package textrank

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// English is the only language with bundled sentence tokenizer data
const English = "english"

// ErrUnsupportedLanguage is returned for a language without tokenizer data
var ErrUnsupportedLanguage = errors.New("unsupported language")

var (
	// tokenPattern cuts a sentence into word-like tokens, keeping inner
	// apostrophes and hyphens ("don't", "well-known").
	tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+(?:['’-][\p{L}\p{M}\p{N}_]+)*`)

	// wordPattern keeps tokens that start with a letter and continue with
	// letters, apostrophes or hyphens only.
	wordPattern = regexp.MustCompile(`^\p{L}[\p{L}'’-]*$`)
)

// The punkt model is large; load it once per process.
var loadEnglish = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// sentenceSplitter is the part of the punkt tokenizer we depend on
type sentenceSplitter interface {
	Tokenize(text string) []*sentences.Sentence
}

// Tokenizer splits text into sentences and sentences into normalized words
type Tokenizer struct {
	language string
	splitter sentenceSplitter
	tag      language.Tag
}

// NewTokenizer returns a tokenizer for the given language name
func NewTokenizer(lang string) (*Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case English, "en":
		splitter, err := loadEnglish()
		if err != nil {
			return nil, fmt.Errorf("loading %s sentence tokenizer: %w", English, err)
		}
		return &Tokenizer{language: English, splitter: splitter, tag: language.English}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// Language returns the language name the tokenizer was built for
func (t *Tokenizer) Language() string {
	return t.language
}

// SplitSentences returns the trimmed, non-empty sentences of text
func (t *Tokenizer) SplitSentences(text string) []string {
	var out []string
	for _, s := range t.splitter.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Words returns the lower-cased words of a sentence. Numbers and
// punctuation are dropped.
func (t *Tokenizer) Words(sentence string) []string {
	// A Caser carries state and must not be shared between goroutines.
	lower := cases.Lower(t.tag)

	var words []string
	for _, token := range tokenPattern.FindAllString(sentence, -1) {
		if wordPattern.MatchString(token) {
			words = append(words, lower.String(token))
		}
	}
	return words
}
