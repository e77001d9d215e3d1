// Package stego hides a file in the least-significant bits of a carrier
// byte stream and recovers it.
//
// The embedded stream follows the carrier header and holds three framed
// fields in order: marker, extension and payload. Each field is a 32-bit
// length stored one bit per carrier byte, followed by its content stored
// one bit per carrier byte, least-significant bit first.
package stego

import (
	"bmp-steganography/models"
	"bmp-steganography/quality"
	"bytes"
)

// LSBSteganography embeds and extracts secrets held in memory.
type LSBSteganography struct {
	config *models.StegoConfig
}

func NewLSBSteganography(config *models.StegoConfig) *LSBSteganography {
	return &LSBSteganography{
		config: withDefaults(config),
	}
}

// CalculateCapacity returns the largest secret with the given extension
// that fits the carrier.
func (lsb *LSBSteganography) CalculateCapacity(carrier []byte, extension string) *models.CapacityReport {
	size := int64(len(carrier))
	return &models.CapacityReport{
		CarrierBytes:   size,
		UsableBytes:    AvailableCarrierBytes(size, lsb.config.HeaderSize),
		MaxSecretBytes: MaxSecretBytes(size, lsb.config.HeaderSize, len(lsb.config.Marker), len(extension)),
	}
}

func (lsb *LSBSteganography) Embed(carrier []byte, secretData []byte, extension string) ([]byte, *models.EncodeReport, error) {
	secret := Secret{
		Extension: extension,
		Size:      int64(len(secretData)),
		Data:      bytes.NewReader(secretData),
	}

	var out bytes.Buffer
	out.Grow(len(carrier))
	report, err := NewEncoder(lsb.config).Encode(bytes.NewReader(carrier), int64(len(carrier)), secret, &out)
	if err != nil {
		return nil, nil, err
	}

	stego := out.Bytes()
	header := min(lsb.config.HeaderSize, int64(len(carrier)))
	report.PSNR = quality.CalculatePSNR(carrier[header:], stego[header:])
	return stego, report, nil
}

// Extract returns the payload and its extension.
func (lsb *LSBSteganography) Extract(stego []byte) ([]byte, string, error) {
	var out bytes.Buffer
	secret, err := NewDecoder(lsb.config).Decode(bytes.NewReader(stego), int64(len(stego)), &out)
	if err != nil {
		return nil, "", err
	}
	return out.Bytes(), secret.Extension, nil
}
