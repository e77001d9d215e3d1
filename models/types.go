// Package models contain needed models
package models

// StegoConfig represents configuration for steganography operations
type StegoConfig struct {
	Marker        string
	HeaderSize    int64 // opaque carrier bytes copied verbatim before the embedded stream
	MaxFieldBytes int64   // upper bound for any decoded field length
	MinPSNR       float64 // encodes below this many dB are logged as a warning; 0 disables
}

// EncodeReport describes a finished encode
type EncodeReport struct {
	MarkerBytes      int     `json:"marker_bytes"`
	ExtensionBytes   int     `json:"extension_bytes"`
	SecretBytes      int64   `json:"secret_bytes"`
	CarrierBytes     int64   `json:"carrier_bytes"`
	CarrierBytesUsed int64   `json:"carrier_bytes_used"`
	ChangedBytes     int64   `json:"changed_bytes"`
	PSNR             float64 `json:"-"`
}

// DecodedSecret is the payload recovered from a carrier
type DecodedSecret struct {
	Extension string
	Size      int64
}

// CapacityReport describes how much a carrier can hold
type CapacityReport struct {
	CarrierBytes   int64 `json:"carrier_bytes"`
	UsableBytes    int64 `json:"usable_bytes"`
	MaxSecretBytes int64 `json:"max_secret_bytes"`
}

// StegoResponse represents the response after insertion
type StegoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ExtractResponse represents the response after extraction
type ExtractResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CapacityResponse represents the response of a capacity query
type CapacityResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Report  *CapacityReport `json:"report,omitempty"`
}

// AudioMetadata represents metadata about a PCM WAV carrier
type AudioMetadata struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
	TotalBytes int
}
