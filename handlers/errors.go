package handlers

import (
	"bmp-steganography/audio"
	"bmp-steganography/bmp"
	"bmp-steganography/stego"
	"errors"
	"net/http"
)

// statusFor maps stego failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stego.ErrMarkerMismatch),
		errors.Is(err, stego.ErrMarkerTooLong),
		errors.Is(err, stego.ErrTruncatedStream):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stego.ErrInsufficientCapacity),
		errors.Is(err, stego.ErrEmptyMarker),
		errors.Is(err, stego.ErrNoExtension),
		errors.Is(err, stego.ErrFieldTooLarge),
		errors.Is(err, bmp.ErrNotBMP),
		errors.Is(err, bmp.ErrUnsupportedFormat),
		errors.Is(err, bmp.ErrTruncated),
		errors.Is(err, audio.ErrNotWAV),
		errors.Is(err, audio.ErrUnsupportedBitDepth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
