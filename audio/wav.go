// Package audio lets 16-bit PCM WAV files act as carriers.
package audio

import (
	"bmp-steganography/models"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	BytesPerSample = 2
	bitDepth       = 16
	pcmFormat      = 1
)

var (
	ErrNotWAV              = errors.New("not a WAV file")
	ErrUnsupportedBitDepth = errors.New("only 16-bit PCM WAV is supported")
)

// IsWAVPath reports whether name carries a .wav extension.
func IsWAVPath(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}

// DecodeWAV flattens the samples of a WAV file into little-endian byte
// pairs, the carrier stream the stego codec works on.
func DecodeWAV(r io.ReadSeeker) ([]byte, *models.AudioMetadata, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, nil, ErrNotWAV
	}
	if decoder.BitDepth != bitDepth || decoder.WavAudioFormat != pcmFormat {
		return nil, nil, fmt.Errorf("%w: got %d-bit format %d", ErrUnsupportedBitDepth, decoder.BitDepth, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	pcm := make([]byte, len(buf.Data)*BytesPerSample)
	for i, sample := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*BytesPerSample:], uint16(int16(sample)))
	}

	channels := int(decoder.NumChans)
	sampleRate := int(decoder.SampleRate)
	var duration float64
	if channels > 0 && sampleRate > 0 {
		duration = float64(len(buf.Data)/channels) / float64(sampleRate)
	}

	metadata := &models.AudioMetadata{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Duration:   duration,
		TotalBytes: len(pcm),
	}
	return pcm, metadata, nil
}

// EncodePCMToWAV wraps little-endian 16-bit PCM bytes in a WAV container.
func EncodePCMToWAV(pcmData []byte, metadata *models.AudioMetadata) ([]byte, error) {
	if len(pcmData)%BytesPerSample != 0 {
		return nil, fmt.Errorf("PCM data length must be even for 16-bit samples")
	}

	sampleCount := len(pcmData) / BytesPerSample
	samples := make([]int, sampleCount)
	for i := 0; i < sampleCount; i++ {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcmData[i*BytesPerSample:])))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: metadata.Channels,
			SampleRate:  metadata.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}

	// wav.NewEncoder needs a WriteSeeker
	tempFile, err := os.CreateTemp("", "temp_*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	encoder := wav.NewEncoder(tempFile, metadata.SampleRate, bitDepth, metadata.Channels, pcmFormat)
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close WAV encoder: %w", err)
	}

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind WAV data: %w", err)
	}
	wavData, err := io.ReadAll(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}
	return wavData, nil
}
