package decoder

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/stegscan/internal/stats"
)

// minPayload is the shortest payload worth scoring.
const minPayload = 4

// signature is a file magic number and the confidence it earns.
type signature struct {
	magic      []byte
	confidence float64
}

// signatures are checked in order; the first match wins.
var signatures = []signature{
	{[]byte("\x89PNG"), 0.9},
	{[]byte("BM"), 0.9},
	{[]byte("\xFF\xD8\xFF"), 0.9},
	{[]byte("GIF8"), 0.9},
	{[]byte("PK"), 0.8},
	{[]byte("%PDF"), 0.9},
	{[]byte("\x7FELF"), 0.8},
	{[]byte("MZ"), 0.8},
}

var (
	urlMarkers   = []string{"http://", "https://", ".com", ".org", ".net"}
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	wordPattern  = regexp.MustCompile(`\b[A-Za-z]{3,15}\b`)
	b64Pattern   = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
)

// AssessDataValidity scores how likely data is a meaningful payload rather
// than noise. Known file signatures return immediately; otherwise the
// best of the text, base64 and entropy checks is returned.
func AssessDataValidity(data []byte) float64 {
	if len(data) < minPayload {
		return 0
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.confidence
		}
	}

	confidence := textConfidence(data)

	if ascii := asciiOnly(data); b64Pattern.MatchString(ascii) {
		if _, err := base64.StdEncoding.DecodeString(ascii); err == nil {
			confidence = max(confidence, 0.6)
		}
	}

	if e := stats.Entropy(data); e > 4.0 && e < 5.5 {
		confidence = max(confidence, 0.5)
	}

	return confidence
}

// textConfidence scores data that decodes to mostly printable text.
// Invalid UTF-8 sequences are skipped.
func textConfidence(data []byte) float64 {
	var b strings.Builder
	var total, printable int
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r == utf8.RuneError && size == 1 {
			continue
		}
		total++
		if unicode.IsPrint(r) {
			printable++
		}
		b.WriteRune(r)
	}
	if total == 0 || float64(printable)/float64(total) <= 0.9 {
		return 0
	}

	text := b.String()
	confidence := 0.0

	lower := strings.ToLower(text)
	for _, marker := range urlMarkers {
		if strings.Contains(lower, marker) {
			confidence = max(confidence, 0.8)
			break
		}
	}
	if emailPattern.MatchString(text) {
		confidence = max(confidence, 0.8)
	}

	words := wordPattern.FindAllString(text, -1)
	if len(words) > 5 {
		confidence = max(confidence, 0.7)

		transitions := 0
		for i := 0; i+1 < len(words); i++ {
			if len(words[i]) > 2 && len(words[i+1]) > 2 {
				transitions++
			}
		}
		if transitions > 3 {
			confidence = max(confidence, 0.85)
		}
	}

	return confidence
}

// asciiOnly drops every byte outside the ASCII range.
func asciiOnly(data []byte) string {
	out := make([]byte, 0, len(data))
	for _, c := range data {
		if c < utf8.RuneSelf {
			out = append(out, c)
		}
	}
	return string(out)
}
