package metadata

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/text/encoding/charmap"
)

// SourceNative labels results produced by NativeExtractor.
const SourceNative = "native"

// maxTextChunk bounds decompressed PNG text chunks.
const maxTextChunk = 1 << 20

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	xmpJPEGName  = []byte("http://ns.adobe.com/xap/1.0/\x00")
)

// NativeExtractor reads EXIF tags, PNG text chunks and JPEG comment and
// XMP segments without external tools.
type NativeExtractor struct {
	logger *slog.Logger
}

// NewNativeExtractor creates a NativeExtractor.
func NewNativeExtractor(logger *slog.Logger) *NativeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeExtractor{logger: logger}
}

// Extract implements Extractor.
func (e *NativeExtractor) Extract(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return failed(SourceNative, err.Error())
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path is the user-supplied image
	if err != nil {
		return failed(SourceNative, err.Error())
	}

	fields, err := ExtractBytes(data)
	if err != nil {
		e.logger.Debug("native metadata extraction failed", "path", path, "error", err)
		return failed(SourceNative, err.Error())
	}
	return newResult(SourceNative, fields)
}

// ExtractBytes parses metadata from an in-memory image.
func ExtractBytes(data []byte) (map[string]string, error) {
	fields := make(map[string]string)

	switch {
	case bytes.HasPrefix(data, pngSignature):
		if err := readPNGText(data, fields); err != nil {
			return nil, err
		}
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		if err := readJPEGSegments(data, fields); err != nil {
			return nil, err
		}
	}

	// Missing or damaged EXIF leaves the container fields usable.
	exifFields, _ := readExif(data)
	for k, v := range exifFields {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}

	return fields, nil
}

// readExif returns the flattened EXIF tags. The first occurrence of a tag
// wins, so IFD0 values take precedence over thumbnail IFD values.
func readExif(data []byte) (fields map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exif parser panic: %v", r)
		}
	}()

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return nil, err
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, err
	}

	fields = make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.TagName == "" {
			continue
		}
		if _, exists := fields[entry.TagName]; exists {
			continue
		}
		fields[entry.TagName] = entry.Formatted
	}
	return fields, nil
}

// readPNGText collects tEXt, zTXt and iTXt chunks.
func readPNGText(data []byte, fields map[string]string) error {
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		start := pos + 8
		end := start + length
		if length < 0 || end+4 > len(data) {
			return fmt.Errorf("%w: %s chunk at offset %d", ErrTruncatedChunk, typ, pos)
		}
		chunk := data[start:end]

		switch typ {
		case "tEXt":
			if key, value, ok := bytes.Cut(chunk, []byte{0}); ok {
				addField(fields, pngKey(string(key)), latin1(value))
			}
		case "zTXt":
			if key, rest, ok := bytes.Cut(chunk, []byte{0}); ok && len(rest) > 0 {
				if text, err := inflate(rest[1:]); err == nil {
					addField(fields, pngKey(string(key)), latin1(text))
				}
			}
		case "iTXt":
			if key, text, ok := parseITXt(chunk); ok {
				addField(fields, pngKey(key), text)
			}
		case "IEND":
			return nil
		}
		pos = end + 4
	}
	return nil
}

// parseITXt decodes an international text chunk.
func parseITXt(chunk []byte) (string, string, bool) {
	key, rest, ok := bytes.Cut(chunk, []byte{0})
	if !ok || len(rest) < 2 {
		return "", "", false
	}
	compressed := rest[0] == 1
	rest = rest[2:]

	// Language tag, then translated keyword.
	for range 2 {
		_, after, found := bytes.Cut(rest, []byte{0})
		if !found {
			return "", "", false
		}
		rest = after
	}

	if compressed {
		text, err := inflate(rest)
		if err != nil {
			return "", "", false
		}
		return string(key), string(text), true
	}
	return string(key), string(rest), true
}

// readJPEGSegments collects COM segments and the XMP APP1 packet.
// Parsing stops at the start of scan.
func readJPEGSegments(data []byte, fields map[string]string) error {
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		if marker == 0xD9 || marker == 0xDA {
			return nil
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}

		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		start := pos + 4
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			return fmt.Errorf("%w: segment 0x%02X at offset %d", ErrTruncatedChunk, marker, pos)
		}
		payload := data[start:end]

		switch {
		case marker == 0xFE:
			addField(fields, "Comment", string(payload))
		case marker == 0xE1 && bytes.HasPrefix(payload, xmpJPEGName):
			addField(fields, "XMP", string(payload[len(xmpJPEGName):]))
		}
		pos = end
	}
	return nil
}

// addField stores value under key, joining repeated keys with a newline.
func addField(fields map[string]string, key, value string) {
	if key == "" {
		return
	}
	if existing, ok := fields[key]; ok {
		fields[key] = existing + "\n" + value
		return
	}
	fields[key] = value
}

// pngKey maps well-known PNG keywords to the names exiftool reports.
func pngKey(keyword string) string {
	if keyword == "XML:com.adobe.xmp" {
		return "XMP"
	}
	return keyword
}

// latin1 converts ISO-8859-1 bytes, the tEXt and zTXt encoding, to UTF-8.
func latin1(b []byte) string {
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(text)
}

// inflate decompresses zlib data up to maxTextChunk bytes.
func inflate(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(io.LimitReader(r, maxTextChunk))
}
