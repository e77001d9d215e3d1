package stego

const (
	// LengthFieldBytes is the number of carrier bytes holding one 32-bit length prefix.
	LengthFieldBytes = 32
	// BitsInByte is the number of carrier bytes needed per content byte.
	BitsInByte = 8
)

// PackLength stores value in the least-significant bits of carrier[0:32],
// bit 0 of value going to carrier[0]. The upper seven bits of every
// carrier byte are left untouched. carrier must hold at least 32 bytes.
func PackLength(value uint32, carrier []byte) {
	_ = carrier[LengthFieldBytes-1]
	for i := 0; i < LengthFieldBytes; i++ {
		carrier[i] = carrier[i]&^1 | byte(value>>i)&1
	}
}

// UnpackLength is the inverse of PackLength.
func UnpackLength(carrier []byte) uint32 {
	_ = carrier[LengthFieldBytes-1]
	var value uint32
	for i := 0; i < LengthFieldBytes; i++ {
		value |= uint32(carrier[i]&1) << i
	}
	return value
}

// PackString spreads every bit of data over carrier, one bit per carrier
// byte, least-significant bit of each data byte first. carrier must hold
// at least 8*len(data) bytes.
func PackString(data []byte, carrier []byte) {
	if len(data) == 0 {
		return
	}
	_ = carrier[len(data)*BitsInByte-1]
	k := 0
	for _, b := range data {
		for j := 0; j < BitsInByte; j++ {
			carrier[k] = carrier[k]&^1 | (b>>j)&1
			k++
		}
	}
}

// UnpackString collects one byte per 8 carrier bytes. Trailing carrier
// bytes that do not form a full group are ignored.
func UnpackString(carrier []byte) []byte {
	out := make([]byte, len(carrier)/BitsInByte)
	unpackInto(out, carrier)
	return out
}

func unpackInto(dst []byte, carrier []byte) {
	k := 0
	for i := range dst {
		var b byte
		for j := 0; j < BitsInByte; j++ {
			b |= (carrier[k] & 1) << j
			k++
		}
		dst[i] = b
	}
}
