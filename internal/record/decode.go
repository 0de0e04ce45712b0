package record

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/net/html/charset"
)

// DecodePayload reverses a record's Content-Encoding, covering the two
// encodings WARC payloads carry.
func DecodePayload(contentEncoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, nil
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("record: gzip decode: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case "br":
		r := brotli.NewReader(bytes.NewReader(body))
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("record: unsupported content-encoding %q", contentEncoding)
	}
}

// SniffText decodes a text payload to UTF-8, preferring the charset
// declared in contentType and falling back to content-based sniffing.
func SniffText(body []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body, nil
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return body, nil
	}
	return decoded, nil
}

// ContentDigest returns a hex-encoded BLAKE2b-256 digest of content, used
// by the entry sink for collision diagnostics.
func ContentDigest(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}
