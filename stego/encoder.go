package stego

import (
	"bmp-steganography/models"
	"bmp-steganography/quality"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

// Secret is the file to hide: its extension and a reader over exactly Size bytes.
type Secret struct {
	Extension string
	Size      int64
	Data      io.Reader
}

// Encoder embeds a secret into a carrier stream.
type Encoder struct {
	config *models.StegoConfig
}

func NewEncoder(config *models.StegoConfig) *Encoder {
	return &Encoder{config: withDefaults(config)}
}

func withDefaults(config *models.StegoConfig) *models.StegoConfig {
	c := *config
	if c.MaxFieldBytes <= 0 {
		c.MaxFieldBytes = DefaultMaxFieldBytes
	}
	return &c
}

// ValidateMarker checks a marker can be framed and later verified.
func ValidateMarker(marker string) error {
	if marker == "" {
		return newFieldError(ErrEmptyMarker, FieldMarker, "", "")
	}
	if len(marker) >= MarkerMaxLen {
		return newFieldError(ErrMarkerTooLong, FieldMarker,
			"fewer than "+strconv.Itoa(MarkerMaxLen)+" bytes", strconv.Itoa(len(marker))+" bytes")
	}
	return nil
}

func (e *Encoder) validate(secret Secret) error {
	if err := ValidateMarker(e.config.Marker); err != nil {
		return err
	}
	if secret.Extension == "" {
		return ErrNoExtension
	}
	if len(secret.Extension) > MaxExtensionBytes {
		return newFieldError(ErrFieldTooLarge, FieldExtension,
			"at most "+strconv.Itoa(MaxExtensionBytes)+" bytes", strconv.Itoa(len(secret.Extension))+" bytes")
	}
	if secret.Size > e.config.MaxFieldBytes {
		return newFieldError(ErrFieldTooLarge, FieldPayload,
			"at most "+strconv.FormatInt(e.config.MaxFieldBytes, 10)+" bytes", strconv.FormatInt(secret.Size, 10)+" bytes")
	}
	return nil
}

// CheckCapacity runs the capacity precondition for secret against a
// carrier of carrierSize bytes.
func (e *Encoder) CheckCapacity(carrierSize int64, secret Secret) error {
	if err := e.validate(secret); err != nil {
		return err
	}
	return CheckCapacity(carrierSize, e.config.HeaderSize, len(e.config.Marker), len(secret.Extension), secret.Size)
}

// Encode copies carrier to out with the marker, extension and payload
// fields embedded after the header. carrierSize is the total carrier
// length; capacity is checked against it before anything is written.
func (e *Encoder) Encode(carrier io.Reader, carrierSize int64, secret Secret, out io.Writer) (*models.EncodeReport, error) {
	if err := e.CheckCapacity(carrierSize, secret); err != nil {
		return nil, err
	}
	logState("encode", StateInit, 0)

	if n, err := io.CopyN(out, carrier, e.config.HeaderSize); err != nil {
		if err == io.EOF {
			return nil, newFieldError(ErrTruncatedStream, FieldHeader,
				strconv.FormatInt(e.config.HeaderSize, 10)+" bytes", strconv.FormatInt(n, 10)+" bytes")
		}
		return nil, fmt.Errorf("copy header: %w", err)
	}
	logState("encode", StateHeaderCopied, 0)

	fw := newFieldWriter(carrier, out)
	marker := []byte(e.config.Marker)
	if err := fw.writeField(FieldMarker, bytes.NewReader(marker), int64(len(marker))); err != nil {
		return nil, err
	}
	logState("encode", StateMarkerDone, fw.offset)

	ext := []byte(secret.Extension)
	if err := fw.writeField(FieldExtension, bytes.NewReader(ext), int64(len(ext))); err != nil {
		return nil, err
	}
	logState("encode", StateExtensionDone, fw.offset)

	if err := fw.writeField(FieldPayload, secret.Data, secret.Size); err != nil {
		return nil, err
	}
	logState("encode", StatePayloadDone, fw.offset)

	tail, err := io.Copy(out, carrier)
	if err != nil {
		return nil, fmt.Errorf("copy remaining carrier bytes: %w", err)
	}
	logState("encode", StateTailCopied, fw.offset+tail)

	report := &models.EncodeReport{
		MarkerBytes:      len(marker),
		ExtensionBytes:   len(ext),
		SecretBytes:      secret.Size,
		CarrierBytes:     e.config.HeaderSize + fw.offset + tail,
		CarrierBytesUsed: fw.offset,
		ChangedBytes:     fw.changed,
		PSNR:             quality.PSNRFromLSBChanges(fw.changed, fw.offset+tail),
	}
	logState("encode", StateComplete, fw.offset+tail)
	if e.config.MinPSNR > 0 && !quality.ValidatePSNR(report.PSNR, e.config.MinPSNR) {
		Logger().Warn("embedding distortion above configured limit",
			zap.String("psnr", quality.FormatPSNR(report.PSNR)),
			zap.Float64("min_psnr", e.config.MinPSNR))
	}
	Logger().Info("secret embedded",
		zap.Int64("secret_bytes", report.SecretBytes),
		zap.Int64("carrier_bytes_used", report.CarrierBytesUsed),
		zap.Int64("changed_bytes", report.ChangedBytes),
		zap.String("psnr", quality.FormatPSNR(report.PSNR)))
	return report, nil
}
