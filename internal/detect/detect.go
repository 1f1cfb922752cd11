// Package detect classifies raw bank exports and repairs them into text the
// normalizer can parse: encoding, preamble, delimiter, numeric and date
// tokens, and missing canonical columns.
package detect

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Banner is the first line of a Banco Inter "full extract" export. Everything
// up to the first blank line after it is account metadata, not data.
const Banner = "Extrato Conta Corrente"

// DefaultDelimiters is the candidate order used when none is configured.
var DefaultDelimiters = []rune{',', ';'}

// ErrNoDelimiterFound is returned when the header splits into a single field
// under every candidate delimiter.
var ErrNoDelimiterFound = errors.New("no delimiter found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns raw as UTF-8 text. Input that is not valid UTF-8 is treated
// as Windows-1252, the encoding older Brazilian bank exports use.
func Decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return normalizeNewlines(string(raw)), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding windows-1252: %w", err)
	}
	return normalizeNewlines(string(out)), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// StripPreamble drops the full-extract banner block. The banner must be the
// first non-blank line; the same words inside a data row are just text. It
// reports whether a banner was found; content without one is returned
// unchanged.
func StripPreamble(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), Banner) {
			start = i
		}
		break
	}
	if start < 0 {
		return content, false
	}
	for i := start + 1; i < len(lines); i++ {
		if isBlank(lines[i]) {
			return strings.Join(lines[i+1:], "\n"), true
		}
	}
	// Banner without a separator: only the banner line is noise.
	return strings.Join(lines[start+1:], "\n"), true
}

// isBlank treats a line made only of spaces and delimiters as blank; some
// exports pad the separator line with ";;;;".
func isBlank(line string) bool {
	return strings.Trim(line, " \t;,") == ""
}

// HeaderLine returns the first non-blank line of content.
func HeaderLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if !isBlank(line) {
			return line
		}
	}
	return ""
}

// DetectDelimiter returns the first candidate that splits header into more
// than one field.
func DetectDelimiter(header string, candidates []rune) (rune, error) {
	if len(candidates) == 0 {
		candidates = DefaultDelimiters
	}
	for _, c := range candidates {
		if len(strings.Split(header, string(c))) > 1 {
			return c, nil
		}
	}
	quoted := make([]string, len(candidates))
	for i, c := range candidates {
		quoted[i] = fmt.Sprintf("%q", string(c))
	}
	return 0, fmt.Errorf("%w in header %q: separate columns with one of %s",
		ErrNoDelimiterFound, header, strings.Join(quoted, " or "))
}
