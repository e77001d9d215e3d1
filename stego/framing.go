package stego

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

const (
	// MarkerMaxLen bounds marker length; markers must be strictly shorter.
	MarkerMaxLen = 10
	// MaxExtensionBytes bounds the extension field.
	MaxExtensionBytes = 255
	// DefaultMaxFieldBytes bounds the payload field when no limit is configured.
	DefaultMaxFieldBytes int64 = 64 << 20

	// content bytes packed per carrier read
	chunkBytes = 4096
)

// Field names used in errors and logs.
const (
	FieldHeader    = "header"
	FieldMarker    = "marker"
	FieldExtension = "extension"
	FieldPayload   = "payload"
)

func truncated(field string, want, got int) error {
	return newFieldError(ErrTruncatedStream, field,
		strconv.Itoa(want)+" carrier bytes", strconv.Itoa(got)+" carrier bytes")
}

// readCarrier fills buf from src, turning a short read into ErrTruncatedStream.
func readCarrier(src io.Reader, buf []byte, field string) error {
	n, err := io.ReadFull(src, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return truncated(field, len(buf), n)
	}
	return fmt.Errorf("read carrier %s field: %w", field, err)
}

// fieldWriter embeds framed fields into carrier bytes read from src and
// writes the rewritten bytes to dst, one output byte per input byte.
type fieldWriter struct {
	src     io.Reader
	dst     io.Writer
	offset  int64 // carrier bytes consumed after the header
	changed int64 // carrier bytes whose LSB was flipped
	buf     []byte
	orig    []byte
}

func newFieldWriter(src io.Reader, dst io.Writer) *fieldWriter {
	return &fieldWriter{src: src, dst: dst}
}

func (w *fieldWriter) take(field string, n int) ([]byte, error) {
	if cap(w.buf) < n {
		w.buf = make([]byte, n)
		w.orig = make([]byte, n)
	}
	buf := w.buf[:n]
	if err := readCarrier(w.src, buf, field); err != nil {
		return nil, err
	}
	copy(w.orig[:n], buf)
	return buf, nil
}

func (w *fieldWriter) emit(buf []byte) error {
	for i, b := range buf {
		if b != w.orig[i] {
			w.changed++
		}
	}
	if _, err := w.dst.Write(buf); err != nil {
		return newFileError(ErrOutputCreate, "", err)
	}
	w.offset += int64(len(buf))
	return nil
}

func (w *fieldWriter) writeLength(field string, n uint32) error {
	buf, err := w.take(field, LengthFieldBytes)
	if err != nil {
		return err
	}
	PackLength(n, buf)
	return w.emit(buf)
}

// writeField embeds a length prefix followed by size bytes read from data.
func (w *fieldWriter) writeField(field string, data io.Reader, size int64) error {
	if size < 0 || size > int64(^uint32(0)) {
		return newFieldError(ErrFieldTooLarge, field, "at most 4294967295 bytes", strconv.FormatInt(size, 10)+" bytes")
	}
	if err := w.writeLength(field, uint32(size)); err != nil {
		return err
	}

	content := make([]byte, min(size, chunkBytes))
	for remaining := size; remaining > 0; {
		n := int(min(remaining, chunkBytes))
		if _, err := io.ReadFull(data, content[:n]); err != nil {
			return fmt.Errorf("read %s content: %w", field, err)
		}
		buf, err := w.take(field, n*BitsInByte)
		if err != nil {
			return err
		}
		PackString(content[:n], buf)
		if err := w.emit(buf); err != nil {
			return err
		}
		remaining -= int64(n)
	}

	Logger().Debug("field embedded",
		zap.String("field", field),
		zap.Int64("length", size),
		zap.Int64("offset", w.offset))
	return nil
}

// fieldReader extracts framed fields from carrier bytes read from src.
type fieldReader struct {
	src    io.Reader
	offset int64
	buf    []byte
}

func newFieldReader(src io.Reader) *fieldReader {
	return &fieldReader{src: src}
}

func (r *fieldReader) take(field string, n int) ([]byte, error) {
	if cap(r.buf) < n {
		r.buf = make([]byte, n)
	}
	buf := r.buf[:n]
	if err := readCarrier(r.src, buf, field); err != nil {
		return nil, err
	}
	r.offset += int64(n)
	return buf, nil
}

func (r *fieldReader) readLength(field string) (uint32, error) {
	buf, err := r.take(field, LengthFieldBytes)
	if err != nil {
		return 0, err
	}
	return UnpackLength(buf), nil
}

// readSmallField reads a length prefix and its content, rejecting lengths
// of limit bytes or more before anything is allocated.
func (r *fieldReader) readSmallField(field string, limit int, tooLong error) ([]byte, error) {
	n, err := r.readLength(field)
	if err != nil {
		return nil, err
	}
	if uint64(n) >= uint64(limit) {
		return nil, newFieldError(tooLong, field,
			"fewer than "+strconv.Itoa(limit)+" bytes", strconv.FormatUint(uint64(n), 10)+" bytes")
	}
	buf, err := r.take(field, int(n)*BitsInByte)
	if err != nil {
		return nil, err
	}
	return UnpackString(buf), nil
}

// SecretReader streams the payload field of a carrier. It is returned by
// Decoder.Open once the marker and extension have been read and verified.
type SecretReader struct {
	// Extension is the decoded file extension, including its leading '.'.
	Extension string
	// Size is the payload length declared by the carrier.
	Size int64

	fr        *fieldReader
	remaining int64
}

// Read implements io.Reader over the decoded payload bytes.
func (s *SecretReader) Read(p []byte) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	n := int(min(int64(len(p)), s.remaining, chunkBytes))
	if n == 0 {
		return 0, nil
	}
	buf, err := s.fr.take(FieldPayload, n*BitsInByte)
	if err != nil {
		return 0, err
	}
	unpackInto(p[:n], buf)
	s.remaining -= int64(n)
	if s.remaining == 0 {
		logState("decode", StatePayloadDone, s.fr.offset)
	}
	return n, nil
}

// Remaining reports how many payload bytes have not been read yet.
func (s *SecretReader) Remaining() int64 {
	return s.remaining
}

// WriteTo implements io.WriterTo. Failures writing to w are reported as
// ErrOutputCreate; carrier failures keep their own kind.
func (s *SecretReader) WriteTo(w io.Writer) (int64, error) {
	var written int64
	buf := make([]byte, min(s.remaining, chunkBytes))
	for s.remaining > 0 {
		n, err := s.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, newFileError(ErrOutputCreate, "", werr)
			}
			written += int64(n)
		}
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
