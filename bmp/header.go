// Package bmp knows just enough about 24-bit BMP files to pick carriers.
// The embedding code treats the header as an opaque blob; these helpers
// only serve argument checks and diagnostics.
package bmp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// HeaderSize is the size of the BITMAPFILEHEADER plus BITMAPINFOHEADER.
const HeaderSize = 54

const (
	bitsPerPixel = 24
	biRGB        = 0
)

var (
	ErrNotBMP            = errors.New("not a BMP file")
	ErrUnsupportedFormat = errors.New("unsupported BMP format")
	ErrTruncated         = errors.New("BMP file is shorter than its pixel area")
)

// Info holds the header fields relevant to a 24-bit carrier.
type Info struct {
	FileSize    uint32
	PixelOffset uint32
	Width       int32
	Height      int32
	BitCount    uint16
	Compression uint32
}

// PixelBytes is the size of the pixel area: height rows of width*3 bytes,
// each padded to a multiple of 4.
func (i *Info) PixelBytes() int64 {
	w, h := int64(i.Width), int64(i.Height)
	if h < 0 {
		h = -h
	}
	stride := (w*3 + 3) &^ 3
	return stride * h
}

// CheckSize reports whether a file of fileSize bytes holds the whole pixel
// area the header declares.
func (i *Info) CheckSize(fileSize int64) error {
	want := max(int64(i.PixelOffset), HeaderSize) + i.PixelBytes()
	if fileSize < want {
		return fmt.Errorf("%w: %d bytes, header declares %d", ErrTruncated, fileSize, want)
	}
	return nil
}

// Validate reports whether the header describes an uncompressed 24-bit image.
func (i *Info) Validate() error {
	if i.BitCount != bitsPerPixel {
		return fmt.Errorf("%w: %d bits per pixel, want %d", ErrUnsupportedFormat, i.BitCount, bitsPerPixel)
	}
	if i.Compression != biRGB {
		return fmt.Errorf("%w: compression %d, want none", ErrUnsupportedFormat, i.Compression)
	}
	return nil
}

// ParseHeader decodes the fields of a 54-byte header.
func ParseHeader(header []byte) (*Info, error) {
	if len(header) < HeaderSize {
		return nil, fmt.Errorf("%w: header is %d bytes", ErrNotBMP, len(header))
	}
	if header[0] != 'B' || header[1] != 'M' {
		return nil, ErrNotBMP
	}
	le := binary.LittleEndian
	return &Info{
		FileSize:    le.Uint32(header[2:6]),
		PixelOffset: le.Uint32(header[10:14]),
		Width:       int32(le.Uint32(header[18:22])),
		Height:      int32(le.Uint32(header[22:26])),
		BitCount:    le.Uint16(header[28:30]),
		Compression: le.Uint32(header[30:34]),
	}, nil
}

// ReadHeader reads and parses the header at the start of r.
func ReadHeader(r io.Reader) (*Info, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: shorter than %d bytes", ErrNotBMP, HeaderSize)
		}
		return nil, err
	}
	return ParseHeader(header)
}

// IsBMPPath reports whether name carries a .bmp extension.
func IsBMPPath(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".bmp")
}
