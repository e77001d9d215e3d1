package stego

// FramedFields is the number of length-prefixed fields in the embedded stream.
const FramedFields = 3

// RequiredCarrierBytes returns how many carrier bytes the framed stream
// occupies: three 32-byte length prefixes plus 8 carrier bytes per content byte.
func RequiredCarrierBytes(markerLen, extensionLen int, secretLen int64) int64 {
	content := int64(markerLen) + int64(extensionLen) + secretLen
	return FramedFields*LengthFieldBytes + BitsInByte*content
}

// AvailableCarrierBytes returns the carrier bytes usable after the header.
func AvailableCarrierBytes(carrierSize, headerSize int64) int64 {
	if carrierSize < headerSize {
		return 0
	}
	return carrierSize - headerSize
}

// CheckCapacity fails with a *CapacityError when the framed stream does not
// fit after the header. Exact fit is accepted.
func CheckCapacity(carrierSize, headerSize int64, markerLen, extensionLen int, secretLen int64) error {
	available := AvailableCarrierBytes(carrierSize, headerSize)
	required := RequiredCarrierBytes(markerLen, extensionLen, secretLen)
	if available < required {
		return &CapacityError{Available: available, Required: required}
	}
	return nil
}

// MaxSecretBytes returns the largest secret file that fits the carrier
// alongside the given marker and extension, or 0 when nothing fits.
func MaxSecretBytes(carrierSize, headerSize int64, markerLen, extensionLen int) int64 {
	spare := AvailableCarrierBytes(carrierSize, headerSize) - RequiredCarrierBytes(markerLen, extensionLen, 0)
	if spare <= 0 {
		return 0
	}
	return spare / BitsInByte
}
