package record

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// WARCFileStream reads records from a real .warc or .warc.gz file.
// gzip's reader is multistream-aware by default, so a .warc.gz made of
// one gzip member per record is read transparently as a single
// concatenated stream.
type WARCFileStream struct {
	path string
	file *os.File
	r    *bufio.Reader
	gz   *gzip.Reader
}

// OpenWARCFile opens path for streaming.
func OpenWARCFile(path string) (*WARCFileStream, error) {
	s := &WARCFileStream{path: path}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *WARCFileStream) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("record: opening %q: %w", s.path, err)
	}
	s.file = f

	br := bufio.NewReader(f)
	if strings.HasSuffix(strings.ToLower(s.path), ".gz") {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return fmt.Errorf("record: opening gzip stream %q: %w", s.path, err)
		}
		s.gz = gz
		s.r = bufio.NewReader(gz)
	} else {
		s.r = br
	}
	return nil
}

// Next implements Stream.
func (s *WARCFileStream) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	return s.readRecord()
}

// Reset implements Stream by reopening the underlying file.
func (s *WARCFileStream) Reset() error {
	if err := s.Close(); err != nil {
		return err
	}
	return s.open()
}

// Close implements Stream.
func (s *WARCFileStream) Close() error {
	var err error
	if s.gz != nil {
		err = s.gz.Close()
	}
	if s.file != nil {
		if cerr := s.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// readRecord parses one "WARC/1.0\r\n<headers>\r\n\r\n<payload>\r\n\r\n" block.
func (s *WARCFileStream) readRecord() (Record, error) {
	if err := skipBlankLines(s.r); err != nil {
		if err == io.EOF {
			return Record{}, ErrEndOfStream
		}
		return Record{}, err
	}

	versionLine, err := s.r.ReadString('\n')
	if err != nil {
		return Record{}, ErrEndOfStream
	}
	if !strings.HasPrefix(strings.TrimSpace(versionLine), "WARC/") {
		return Record{}, fmt.Errorf("record: expected WARC version line, got %q", versionLine)
	}

	tp := textproto.NewReader(s.r)
	header, err := tp.ReadMIMEHeader()
	if err != nil {
		return Record{}, fmt.Errorf("record: reading warc headers: %w", err)
	}

	length, _ := strconv.Atoi(header.Get("Content-Length"))
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(s.r, payload); err != nil {
			return Record{}, fmt.Errorf("record: reading warc payload: %w", err)
		}
	}

	// Each record block ends with a trailing CRLF CRLF. The first CRLF is
	// consumed here; skipBlankLines consumes the rest at the next call.
	if _, err := s.r.ReadString('\n'); err != nil && err != io.EOF {
		return Record{}, err
	}

	warcType := header.Get("WARC-Type")
	rec := Record{
		TargetURI:    header.Get("WARC-Target-URI"),
		ResourceType: header.Get("WARC-Resource-Type"),
	}

	if !strings.EqualFold(warcType, "response") {
		// Non-response records (warcinfo, request, metadata, ...) carry
		// no rewritable payload; still yielded so callers can observe
		// resource-type hints recorded in a separate metadata record.
		rec.Payload = func() ([]byte, error) { return payload, nil }
		return rec, nil
	}

	statusCode, contentType, contentEncoding, location, httpBody, err := splitHTTPResponse(payload)
	if err != nil {
		return Record{}, err
	}
	rec.StatusCode = statusCode
	rec.ContentType = contentType
	rec.ContentEncoding = contentEncoding
	rec.Location = resolveLocation(rec.TargetURI, location)
	rec.Payload = func() ([]byte, error) { return httpBody, nil }
	return rec, nil
}

// splitHTTPResponse parses the HTTP response stored as a "response"
// record's payload block.
func splitHTTPResponse(raw []byte) (statusCode int, contentType, contentEncoding, location string, body []byte, err error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
	if err != nil {
		return 0, "", "", "", nil, fmt.Errorf("record: parsing http response: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", "", "", nil, fmt.Errorf("record: reading http body: %w", err)
	}

	return resp.StatusCode, resp.Header.Get("Content-Type"), resp.Header.Get("Content-Encoding"), resp.Header.Get("Location"), body, nil
}

// resolveLocation resolves a possibly-relative Location header against
// the record's own target URI, since WARC captures store it verbatim.
func resolveLocation(targetURI, location string) string {
	if location == "" {
		return ""
	}
	base, err := url.Parse(targetURI)
	if err != nil {
		return location
	}
	rel, err := url.Parse(location)
	if err != nil {
		return location
	}
	return base.ResolveReference(rel).String()
}

func skipBlankLines(r *bufio.Reader) error {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return err
		}
		if b[0] != '\r' && b[0] != '\n' {
			return nil
		}
		if _, err := r.ReadByte(); err != nil {
			return err
		}
	}
}

var _ Stream = (*WARCFileStream)(nil)
