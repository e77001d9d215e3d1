package stego

import (
	"bmp-steganography/models"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

// Decoder recovers a secret embedded by Encoder with the same marker.
type Decoder struct {
	config *models.StegoConfig
}

func NewDecoder(config *models.StegoConfig) *Decoder {
	return &Decoder{config: withDefaults(config)}
}

// Open skips the header, verifies the marker and reads the extension and
// payload length. The returned reader yields the payload bytes.
// carrierSize is the total carrier length, or -1 when unknown; when known,
// a payload longer than the remaining carrier fails here with
// ErrTruncatedStream instead of partway through the read.
func (d *Decoder) Open(carrier io.Reader, carrierSize int64) (*SecretReader, error) {
	if err := ValidateMarker(d.config.Marker); err != nil {
		return nil, err
	}
	logState("decode", StateInit, 0)

	if n, err := io.CopyN(io.Discard, carrier, d.config.HeaderSize); err != nil {
		if err == io.EOF {
			return nil, newFieldError(ErrTruncatedStream, FieldHeader,
				strconv.FormatInt(d.config.HeaderSize, 10)+" bytes", strconv.FormatInt(n, 10)+" bytes")
		}
		return nil, fmt.Errorf("skip header: %w", err)
	}
	logState("decode", StateHeaderSkipped, 0)

	fr := newFieldReader(carrier)
	marker, err := fr.readSmallField(FieldMarker, MarkerMaxLen, ErrMarkerTooLong)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(marker, []byte(d.config.Marker)) {
		return nil, newFieldError(ErrMarkerMismatch, FieldMarker,
			strconv.Quote(d.config.Marker), strconv.Quote(string(marker)))
	}
	logState("decode", StateMarkerDone, fr.offset)

	ext, err := fr.readSmallField(FieldExtension, MaxExtensionBytes+1, ErrFieldTooLarge)
	if err != nil {
		return nil, err
	}
	logState("decode", StateExtensionDone, fr.offset)

	size, err := fr.readLength(FieldPayload)
	if err != nil {
		return nil, err
	}
	if int64(size) > d.config.MaxFieldBytes {
		return nil, newFieldError(ErrFieldTooLarge, FieldPayload,
			"at most "+strconv.FormatInt(d.config.MaxFieldBytes, 10)+" bytes", strconv.FormatUint(uint64(size), 10)+" bytes")
	}
	if carrierSize >= 0 {
		remaining := AvailableCarrierBytes(carrierSize, d.config.HeaderSize) - fr.offset
		if need := int64(size) * BitsInByte; need > remaining {
			return nil, newFieldError(ErrTruncatedStream, FieldPayload,
				strconv.FormatInt(need, 10)+" carrier bytes", strconv.FormatInt(max(remaining, 0), 10)+" carrier bytes")
		}
	}

	sr := &SecretReader{
		Extension: string(ext),
		Size:      int64(size),
		fr:        fr,
		remaining: int64(size),
	}
	if size == 0 {
		logState("decode", StatePayloadDone, fr.offset)
	}
	return sr, nil
}

// Decode reads the whole embedded stream from carrier and writes the
// payload to out. The embedded length is trusted; no size check against
// anything but the carrier itself is made.
func (d *Decoder) Decode(carrier io.Reader, carrierSize int64, out io.Writer) (*models.DecodedSecret, error) {
	sr, err := d.Open(carrier, carrierSize)
	if err != nil {
		return nil, err
	}
	n, err := sr.WriteTo(out)
	if err != nil {
		return nil, err
	}
	logState("decode", StateComplete, sr.fr.offset)
	Logger().Info("secret extracted",
		zap.String("extension", sr.Extension),
		zap.Int64("secret_bytes", n))
	return &models.DecodedSecret{Extension: sr.Extension, Size: n}, nil
}
