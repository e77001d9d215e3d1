package audio

import (
	"bmp-steganography/models"
	"bmp-steganography/stego"
	"bytes"
)

// pcmConfig returns config with no header: the WAV container is rebuilt
// around the samples rather than copied.
func pcmConfig(config *models.StegoConfig) *models.StegoConfig {
	c := *config
	c.HeaderSize = 0
	return &c
}

// CalculateCapacity reports how much a WAV carrier can hold.
func CalculateCapacity(wavData []byte, config *models.StegoConfig, extension string) (*models.CapacityReport, error) {
	pcm, _, err := DecodeWAV(bytes.NewReader(wavData))
	if err != nil {
		return nil, err
	}
	return stego.NewLSBSteganography(pcmConfig(config)).CalculateCapacity(pcm, extension), nil
}

// EmbedInWAV hides secretData in the sample bytes of a 16-bit PCM WAV file.
func EmbedInWAV(wavData []byte, secretData []byte, extension string, config *models.StegoConfig) ([]byte, *models.EncodeReport, error) {
	pcm, metadata, err := DecodeWAV(bytes.NewReader(wavData))
	if err != nil {
		return nil, nil, err
	}

	stegoPCM, report, err := stego.NewLSBSteganography(pcmConfig(config)).Embed(pcm, secretData, extension)
	if err != nil {
		return nil, nil, err
	}

	out, err := EncodePCMToWAV(stegoPCM, metadata)
	if err != nil {
		return nil, nil, err
	}
	return out, report, nil
}

// ExtractFromWAV recovers a secret hidden by EmbedInWAV.
func ExtractFromWAV(wavData []byte, config *models.StegoConfig) ([]byte, string, error) {
	pcm, _, err := DecodeWAV(bytes.NewReader(wavData))
	if err != nil {
		return nil, "", err
	}
	return stego.NewLSBSteganography(pcmConfig(config)).Extract(pcm)
}
