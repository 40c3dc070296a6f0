package decoder

import (
	"context"
	"encoding/base64"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/stegscan/internal/metadata"
	"github.com/nao1215/stegscan/internal/model"
)

// MethodMetadata names the metadata extraction attempt.
const MethodMetadata = "Metadata Extraction"

const (
	// binaryFieldLength is the minimum length of a field considered by the fallback scan.
	binaryFieldLength = 20

	// binaryFieldRatio is the non-printable share above which a field looks binary.
	binaryFieldRatio = 0.1
)

// suspiciousFields are free-text tags commonly abused to carry payloads.
var suspiciousFields = []string{
	"Comment", "UserComment", "Artist", "Copyright",
	"ImageDescription", "XPComment", "XPAuthor",
}

// ExtractMetadataPayload looks for data in the metadata fields. Values of
// suspicious fields are base64-decoded when possible. If none of those
// fields is present, any long field that looks binary is taken instead.
func ExtractMetadataPayload(res metadata.Result) model.DecoderAttempt {
	switch res.Status {
	case metadata.StatusFailed:
		return model.NewFailedAttempt(MethodMetadata, 0, res.Reason)
	case metadata.StatusNoMetadata:
		return model.NewFailedAttempt(MethodMetadata, 0.1, "No metadata found")
	}

	found := make([]string, 0)
	var payload []byte

	for _, field := range suspiciousFields {
		value, ok := metadata.Lookup(res.Fields, field)
		if !ok || value == "" {
			continue
		}
		found = append(found, field)
		if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
			payload = append(payload, decoded...)
		} else {
			payload = append(payload, value...)
		}
	}

	if len(found) == 0 {
		keys := make([]string, 0, len(res.Fields))
		for k := range res.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := res.Fields[k]; looksBinary(v) {
				found = append(found, k)
				payload = append(payload, v...)
			}
		}
	}

	if len(payload) == 0 {
		return model.DecoderAttempt{
			Method:     MethodMetadata,
			Confidence: 0.2,
			Info:       map[string]string{"examined_fields": strings.Join(suspiciousFields, ", ")},
		}
	}

	return assessed(MethodMetadata, payload, map[string]string{
		"found_fields": strings.Join(found, ", "),
		"field_count":  strconv.Itoa(len(found)),
		"source":       res.Source,
	})
}

// looksBinary reports whether a long value has many characters outside
// printable ASCII.
func looksBinary(value string) bool {
	runes := []rune(value)
	if len(runes) <= binaryFieldLength {
		return false
	}
	odd := 0
	for _, r := range runes {
		if r < 32 || r > 126 {
			odd++
		}
	}
	return float64(odd)/float64(len(runes)) > binaryFieldRatio
}

// ExtractMetadata runs the metadata extractor and scans its fields.
func (d *Decoder) ExtractMetadata(ctx context.Context, path string) model.DecoderAttempt {
	return ExtractMetadataPayload(d.extractor.Extract(ctx, path))
}
