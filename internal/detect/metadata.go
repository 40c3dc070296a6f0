package detect

import (
	"regexp"
	"strings"

	"github.com/nao1215/stegscan/internal/metadata"
)

const (
	// metadataChecks is the divisor that turns points into a raw score.
	metadataChecks = 6.0

	// largeMetadata is the rendered length above which metadata is unusual.
	largeMetadata = 2000

	// neutralMetadataScore is used when metadata cannot be read at all.
	neutralMetadataScore = 0.4
)

var (
	// freeTextFields can carry arbitrary text.
	freeTextFields = []string{"UserComment", "ImageUniqueID", "OwnerName", "Comment", "XMP"}

	// binaryPatterns look for hex escapes, base64 runs and NUL runs.
	binaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\\x[0-9a-fA-F]{2}`),
		regexp.MustCompile(`[A-Za-z0-9+/=]{20,}`),
		regexp.MustCompile(`(?:\x00){3,}`),
	}

	// stegoTools are names left behind by common embedding tools.
	stegoTools = []string{"outguess", "steghide", "stegdetect", "jsteg", "f5", "steganography"}
)

// MetadataScore awards points for suspicious metadata and returns
// points/6. Keys are compared case-insensitively with spaces removed,
// so a field matches any key containing its name.
func MetadataScore(fields map[string]string) float64 {
	text := metadata.Render(fields)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, metadata.NormalizeKey(k))
	}

	var points float64

	for _, field := range freeTextFields {
		if containsKey(keys, metadata.NormalizeKey(field)) {
			points++
		}
	}

	if len(text) > largeMetadata {
		points++
	}

	for _, re := range binaryPatterns {
		if re.MatchString(text) {
			points++
			break
		}
	}

	dates := make(map[string]struct{})
	software := 0
	for k, v := range fields {
		norm := metadata.NormalizeKey(k)
		if strings.Contains(norm, "date") {
			dates[v] = struct{}{}
		}
		if strings.Contains(norm, "software") {
			software++
		}
	}
	if len(dates) > 1 {
		points += 0.5
	}
	if software > 1 {
		points += 0.5
	}

	lower := strings.ToLower(text)
	for _, tool := range stegoTools {
		if strings.Contains(lower, tool) {
			points += 2
			break
		}
	}

	return points / metadataChecks
}

func containsKey(keys []string, name string) bool {
	for _, k := range keys {
		if strings.Contains(k, name) {
			return true
		}
	}
	return false
}
