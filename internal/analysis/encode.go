package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// MarshalLine renders the result as the single newline-terminated JSON line
// the host parses: ", " and ": " separators, every non-ASCII rune escaped.
func (r Result) MarshalLine() []byte {
	var buf bytes.Buffer

	buf.WriteString(`{"summary": `)
	writeASCIIString(&buf, r.Summary)
	buf.WriteString(`, "keywords": [`)
	for i, k := range r.Keywords {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeASCIIString(&buf, k)
	}
	buf.WriteString("]}\n")

	return buf.Bytes()
}

// WriteTo writes the JSON line to w in a single call
func (r Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.MarshalLine())
	return int64(n), err
}

func writeASCIIString(buf *bytes.Buffer, s string) {
	var raw bytes.Buffer
	enc := json.NewEncoder(&raw)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)

	quoted := bytes.TrimSuffix(raw.Bytes(), []byte("\n"))
	for len(quoted) > 0 {
		r, size := utf8.DecodeRune(quoted)
		quoted = quoted[size:]

		switch {
		case r == 0x7f:
			buf.WriteString(`\u007f`)
		case r < utf8.RuneSelf:
			buf.WriteByte(byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(buf, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(buf, `\u%04x`, r)
		}
	}
}

// DecodeLine parses one analyzer output line. Both keys must be present. A
// summary equal to ErrorSummary with a single keyword is read back as a
// failure; the wire format cannot tell it apart from a real summary.
func DecodeLine(line []byte) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(line), &fields); err != nil {
		return Result{}, fmt.Errorf("decoding analyzer output: %w", err)
	}

	rawSummary, ok := fields["summary"]
	if !ok {
		return Result{}, fmt.Errorf("decoding analyzer output: missing summary")
	}
	rawKeywords, ok := fields["keywords"]
	if !ok {
		return Result{}, fmt.Errorf("decoding analyzer output: missing keywords")
	}

	var result Result
	if err := json.Unmarshal(rawSummary, &result.Summary); err != nil {
		return Result{}, fmt.Errorf("decoding summary: %w", err)
	}
	if err := json.Unmarshal(rawKeywords, &result.Keywords); err != nil {
		return Result{}, fmt.Errorf("decoding keywords: %w", err)
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}

	switch {
	case result.Summary == ErrorSummary && len(result.Keywords) == 1:
		result.Outcome = OutcomeFailure
	case result.Summary == NoTextSummary && len(result.Keywords) == 0:
		result.Outcome = OutcomeNoInput
	default:
		result.Outcome = OutcomeSuccess
	}

	return result, nil
}
