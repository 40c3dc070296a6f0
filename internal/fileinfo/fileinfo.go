package fileinfo

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/pixel"
	"github.com/nao1215/stegscan/internal/stats"
)

const (
	// DefaultTopBytes is the number of byte values reported by Inspect.
	DefaultTopBytes = 10

	// DefaultMinStringLength matches the default of strings(1).
	DefaultMinStringLength = 4

	// DefaultHexDumpSize is the number of leading bytes shown by HexDump.
	DefaultHexDumpSize = 256
)

// Inspect reads the file at path and describes it.
func Inspect(path string) (*model.FileInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is the user-supplied image
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Describe(filepath.Base(path), data), nil
}

// Describe builds a FileInfo from in-memory contents.
func Describe(name string, data []byte) *model.FileInfo {
	digest := sha3.Sum256(data)
	return &model.FileInfo{
		Name:     name,
		Size:     int64(len(data)),
		Type:     DetectType(data),
		Entropy:  stats.Entropy(data),
		Digest:   hex.EncodeToString(digest[:]),
		TopBytes: TopBytes(data, DefaultTopBytes),
	}
}

// DetectType returns the decoded image format ("png", "jpeg", ...) or,
// for anything else, the subtype of the sniffed MIME type.
func DetectType(data []byte) string {
	if format := pixel.Format(data); format != "" {
		return format
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if i := strings.IndexByte(mime, '/'); i >= 0 {
		mime = mime[i+1:]
	}
	return mime
}

// TopBytes returns the n most frequent byte values, most frequent first.
// Ties are ordered by byte value. Values that never occur are omitted.
func TopBytes(data []byte, n int) []model.ByteCount {
	freq := stats.ByteFrequency(data)
	counts := make([]model.ByteCount, 0, 256)
	for v, c := range freq {
		if c > 0 {
			counts = append(counts, model.ByteCount{Value: byte(v), Count: c}) //nolint:gosec // v < 256
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Strings returns runs of at least minLen printable ASCII characters.
func Strings(data []byte, minLen int) []string {
	if minLen < 1 {
		minLen = DefaultMinStringLength
	}
	out := make([]string, 0)
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minLen {
			out = append(out, string(data[start:end]))
		}
		start = -1
	}
	for i, c := range data {
		if c == '\t' || (c >= 0x20 && c < 0x7F) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))
	return out
}

// HexDump renders the first n bytes in `hexdump -C` layout.
func HexDump(data []byte, n int) string {
	if n >= 0 && len(data) > n {
		data = data[:n]
	}
	return hex.Dump(data)
}
