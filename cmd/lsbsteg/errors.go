package main

import (
	"bmp-steganography/audio"
	"bmp-steganography/bmp"
	"bmp-steganography/stego"
	"errors"
)

// userMessage turns a pipeline error into the line shown to the user.
// Every error kind gets its own wording; the detail follows it.
func userMessage(err error) string {
	var prefix string
	switch {
	case errors.Is(err, stego.ErrCarrierOpen):
		prefix = "Unable to open the source image."
	case errors.Is(err, stego.ErrSecretOpen):
		prefix = "Unable to open the secret file."
	case errors.Is(err, stego.ErrOutputCreate):
		prefix = "Unable to write the output file."
	case errors.Is(err, stego.ErrInsufficientCapacity):
		prefix = "Source file size is below the required limit."
	case errors.Is(err, stego.ErrMarkerTooLong):
		prefix = "Magic String is too long."
	case errors.Is(err, stego.ErrMarkerMismatch):
		prefix = "Magic String not matching!"
	case errors.Is(err, stego.ErrEmptyMarker):
		prefix = "Magic String must not be empty."
	case errors.Is(err, stego.ErrTruncatedStream):
		prefix = "The image ends before the hidden data does."
	case errors.Is(err, stego.ErrNoExtension):
		prefix = "The secret file needs an extension."
	case errors.Is(err, stego.ErrFieldTooLarge):
		prefix = "The hidden data is larger than allowed."
	case errors.Is(err, stego.ErrUnsafeExtension):
		prefix = "The hidden file extension is not a plain extension."
	case errors.Is(err, bmp.ErrTruncated):
		prefix = "The image is shorter than its header declares."
	case errors.Is(err, bmp.ErrNotBMP), errors.Is(err, bmp.ErrUnsupportedFormat):
		prefix = "Only 24-bit uncompressed .bmp images are supported."
	case errors.Is(err, audio.ErrNotWAV), errors.Is(err, audio.ErrUnsupportedBitDepth):
		prefix = "Only 16-bit PCM .wav files are supported."
	default:
		return err.Error()
	}
	return prefix + " (" + err.Error() + ")"
}
