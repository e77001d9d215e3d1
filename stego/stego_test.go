package stego

import (
	"bmp-steganography/models"
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"strings"
	"testing"
)

const testHeaderSize = 54

// testCarrier returns a fake BMP: a recognisable header followed by
// pixelBytes of varied pixel data.
func testCarrier(pixelBytes int) []byte {
	carrier := make([]byte, testHeaderSize+pixelBytes)
	copy(carrier, "BM")
	for i := 2; i < testHeaderSize; i++ {
		carrier[i] = byte(i)
	}
	for i := testHeaderSize; i < len(carrier); i++ {
		carrier[i] = byte(i*31 + 7)
	}
	return carrier
}

func testConfig(marker string) *models.StegoConfig {
	return &models.StegoConfig{Marker: marker, HeaderSize: testHeaderSize}
}

func encode(t *testing.T, carrier []byte, marker, ext string, secret []byte) ([]byte, *models.EncodeReport) {
	t.Helper()
	var out bytes.Buffer
	report, err := NewEncoder(testConfig(marker)).Encode(bytes.NewReader(carrier), int64(len(carrier)), Secret{
		Extension: ext,
		Size:      int64(len(secret)),
		Data:      bytes.NewReader(secret),
	}, &out)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return out.Bytes(), report
}

func decode(stego []byte, marker string) ([]byte, string, error) {
	var out bytes.Buffer
	secret, err := NewDecoder(testConfig(marker)).Decode(bytes.NewReader(stego), int64(len(stego)), &out)
	if err != nil {
		return nil, "", err
	}
	return out.Bytes(), secret.Extension, nil
}

func TestScenario_HiTxt(t *testing.T) {
	carrier := testCarrier(10000)
	stego, report := encode(t, carrier, "#*", ".txt", []byte("hi"))

	if len(stego) != 10054 {
		t.Fatalf("stego length = %d, want 10054", len(stego))
	}
	if report.CarrierBytesUsed != RequiredCarrierBytes(2, 4, 2) {
		t.Errorf("CarrierBytesUsed = %d, want %d", report.CarrierBytesUsed, RequiredCarrierBytes(2, 4, 2))
	}

	data, ext, err := decode(stego, "#*")
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if ext != ".txt" {
		t.Errorf("extension = %q, want %q", ext, ".txt")
	}
	if string(data) != "hi" {
		t.Errorf("payload = %q, want %q", data, "hi")
	}

	_, _, err = decode(stego, "no")
	if !errors.Is(err, ErrMarkerMismatch) {
		t.Errorf("decode with wrong marker error = %v, want ErrMarkerMismatch", err)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name   string
		marker string
		ext    string
		size   int
	}{
		{name: "empty payload", marker: "M", ext: ".bin", size: 0},
		{name: "single byte", marker: "#*", ext: ".txt", size: 1},
		{name: "chunk boundary", marker: "ABC", ext: ".dat", size: chunkBytes},
		{name: "multi chunk", marker: "123456789", ext: ".tar.gz"[4:], size: 3*chunkBytes + 17},
		{name: "long extension", marker: "k", ext: "." + strings.Repeat("x", 40), size: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := make([]byte, tt.size)
			rng.Read(secret)
			carrier := testCarrier(int(RequiredCarrierBytes(len(tt.marker), len(tt.ext), int64(tt.size))) + 500)

			stego, _ := encode(t, carrier, tt.marker, tt.ext, secret)
			data, ext, err := decode(stego, tt.marker)
			if err != nil {
				t.Fatalf("decode() error = %v", err)
			}
			if ext != tt.ext {
				t.Errorf("extension = %q, want %q", ext, tt.ext)
			}
			if !bytes.Equal(data, secret) {
				t.Errorf("payload mismatch: got %d bytes, want %d", len(data), len(secret))
			}
		})
	}
}

func TestEncode_PreservesCarrier(t *testing.T) {
	carrier := testCarrier(4000)
	secret := []byte("the quick brown fox")
	stego, report := encode(t, carrier, "ABC", ".txt", secret)

	if len(stego) != len(carrier) {
		t.Fatalf("stego length = %d, want %d", len(stego), len(carrier))
	}
	if !bytes.Equal(stego[:testHeaderSize], carrier[:testHeaderSize]) {
		t.Error("header was modified")
	}

	end := testHeaderSize + report.CarrierBytesUsed
	for i := testHeaderSize; i < int(end); i++ {
		if diff := stego[i] ^ carrier[i]; diff > 1 {
			t.Fatalf("byte %d changed beyond the LSB: %#02x -> %#02x", i, carrier[i], stego[i])
		}
	}
	if !bytes.Equal(stego[end:], carrier[end:]) {
		t.Error("bytes after the embedded region were modified")
	}
}

func TestEncode_Report(t *testing.T) {
	carrier := testCarrier(2000)
	stego, report := encode(t, carrier, "AB", ".md", []byte("notes"))

	var changed int64
	for i := range carrier {
		if carrier[i] != stego[i] {
			changed++
		}
	}
	if report.ChangedBytes != changed {
		t.Errorf("ChangedBytes = %d, want %d", report.ChangedBytes, changed)
	}
	if report.CarrierBytes != int64(len(carrier)) {
		t.Errorf("CarrierBytes = %d, want %d", report.CarrierBytes, len(carrier))
	}
	if report.MarkerBytes != 2 || report.ExtensionBytes != 3 || report.SecretBytes != 5 {
		t.Errorf("field sizes = %d/%d/%d, want 2/3/5", report.MarkerBytes, report.ExtensionBytes, report.SecretBytes)
	}
	if math.IsInf(report.PSNR, 0) || report.PSNR <= 0 {
		t.Errorf("PSNR = %v, want a positive finite value", report.PSNR)
	}
}

func TestEncode_InsufficientCapacity(t *testing.T) {
	secret := []byte("0123456789")
	required := int(RequiredCarrierBytes(2, 4, int64(len(secret))))

	t.Run("exact fit succeeds", func(t *testing.T) {
		carrier := testCarrier(required)
		stego, _ := encode(t, carrier, "AB", ".txt", secret)
		data, _, err := decode(stego, "AB")
		if err != nil {
			t.Fatalf("decode() error = %v", err)
		}
		if !bytes.Equal(data, secret) {
			t.Errorf("payload = %q, want %q", data, secret)
		}
	})

	t.Run("one byte short fails before writing", func(t *testing.T) {
		carrier := testCarrier(required - 1)
		var out bytes.Buffer
		_, err := NewEncoder(testConfig("AB")).Encode(bytes.NewReader(carrier), int64(len(carrier)), Secret{
			Extension: ".txt",
			Size:      int64(len(secret)),
			Data:      bytes.NewReader(secret),
		}, &out)
		if !errors.Is(err, ErrInsufficientCapacity) {
			t.Fatalf("Encode() error = %v, want ErrInsufficientCapacity", err)
		}
		if out.Len() != 0 {
			t.Errorf("Encode() wrote %d bytes before failing", out.Len())
		}
	})
}

func TestEncode_Validation(t *testing.T) {
	carrier := testCarrier(1000)
	tests := []struct {
		name   string
		marker string
		secret Secret
		want   error
	}{
		{name: "empty marker", marker: "", secret: Secret{Extension: ".txt"}, want: ErrEmptyMarker},
		{name: "marker of ten bytes", marker: "0123456789", secret: Secret{Extension: ".txt"}, want: ErrMarkerTooLong},
		{name: "no extension", marker: "AB", secret: Secret{}, want: ErrNoExtension},
		{name: "extension too long", marker: "AB", secret: Secret{Extension: "." + strings.Repeat("e", MaxExtensionBytes)}, want: ErrFieldTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.secret.Data = bytes.NewReader(nil)
			_, err := NewEncoder(testConfig(tt.marker)).Encode(bytes.NewReader(carrier), int64(len(carrier)), tt.secret, io.Discard)
			if !errors.Is(err, tt.want) {
				t.Errorf("Encode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncode_PayloadAboveLimit(t *testing.T) {
	carrier := testCarrier(10000)
	cfg := &models.StegoConfig{Marker: "AB", HeaderSize: testHeaderSize, MaxFieldBytes: 8}
	secret := []byte("nine byte")
	_, err := NewEncoder(cfg).Encode(bytes.NewReader(carrier), int64(len(carrier)), Secret{
		Extension: ".txt",
		Size:      int64(len(secret)),
		Data:      bytes.NewReader(secret),
	}, io.Discard)
	if !errors.Is(err, ErrFieldTooLarge) {
		t.Errorf("Encode() error = %v, want ErrFieldTooLarge", err)
	}
}

func TestDecode_MarkerRejection(t *testing.T) {
	stego, _ := encode(t, testCarrier(2000), "ABC", ".txt", []byte("secret"))

	tests := []struct {
		name   string
		marker string
		want   error
	}{
		{name: "correct marker", marker: "ABC", want: nil},
		{name: "different marker", marker: "XYZ", want: ErrMarkerMismatch},
		{name: "prefix of marker", marker: "AB", want: ErrMarkerMismatch},
		{name: "longer marker", marker: "ABCD", want: ErrMarkerMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decode(stego, tt.marker)
			if !errors.Is(err, tt.want) {
				t.Errorf("decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_MismatchDetails(t *testing.T) {
	stego, _ := encode(t, testCarrier(2000), "ABC", ".txt", []byte("secret"))
	_, _, err := decode(stego, "XYZ")

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error should be a *FieldError, got %T", err)
	}
	if fe.Field != FieldMarker || fe.Expected != `"XYZ"` || fe.Actual != `"ABC"` {
		t.Errorf("FieldError = %+v", fe)
	}
}

// craftedCarrier embeds raw length values without going through Encoder.
func craftedCarrier(markerLen uint32, marker string) []byte {
	carrier := testCarrier(4000)
	body := carrier[testHeaderSize:]
	PackLength(markerLen, body)
	PackString([]byte(marker), body[LengthFieldBytes:])
	return carrier
}

func TestDecode_MarkerTooLong(t *testing.T) {
	for _, n := range []uint32{10, 11, 1 << 30} {
		_, _, err := decode(craftedCarrier(n, ""), "ABC")
		if !errors.Is(err, ErrMarkerTooLong) {
			t.Errorf("marker length %d: error = %v, want ErrMarkerTooLong", n, err)
		}
	}
}

func TestDecode_UnmarkedCarrier(t *testing.T) {
	carrier := testCarrier(4000)
	_, _, err := decode(carrier, "#*")
	if err == nil {
		t.Fatal("decode() of an unmarked carrier should fail")
	}
	if !errors.Is(err, ErrMarkerMismatch) && !errors.Is(err, ErrMarkerTooLong) {
		t.Errorf("decode() error = %v, want a marker error", err)
	}
}

func TestDecode_Truncated(t *testing.T) {
	secret := bytes.Repeat([]byte("x"), 200)
	stego, report := encode(t, testCarrier(3000), "AB", ".txt", secret)
	cut := stego[:testHeaderSize+report.CarrierBytesUsed-8]

	t.Run("known size fails at open", func(t *testing.T) {
		_, err := NewDecoder(testConfig("AB")).Open(bytes.NewReader(cut), int64(len(cut)))
		if !errors.Is(err, ErrTruncatedStream) {
			t.Errorf("Open() error = %v, want ErrTruncatedStream", err)
		}
	})

	t.Run("unknown size fails while reading", func(t *testing.T) {
		var out bytes.Buffer
		_, err := NewDecoder(testConfig("AB")).Decode(bytes.NewReader(cut), -1, &out)
		if !errors.Is(err, ErrTruncatedStream) {
			t.Errorf("Decode() error = %v, want ErrTruncatedStream", err)
		}
		var fe *FieldError
		if errors.As(err, &fe) && fe.Field != FieldPayload {
			t.Errorf("Field = %q, want %q", fe.Field, FieldPayload)
		}
	})

	t.Run("header only", func(t *testing.T) {
		_, _, err := decode(stego[:testHeaderSize+10], "AB")
		if !errors.Is(err, ErrTruncatedStream) {
			t.Errorf("decode() error = %v, want ErrTruncatedStream", err)
		}
	})

	t.Run("shorter than header", func(t *testing.T) {
		_, _, err := decode(stego[:20], "AB")
		if !errors.Is(err, ErrTruncatedStream) {
			t.Errorf("decode() error = %v, want ErrTruncatedStream", err)
		}
	})
}

func TestDecode_PayloadAboveLimit(t *testing.T) {
	stego, _ := encode(t, testCarrier(3000), "AB", ".txt", bytes.Repeat([]byte("y"), 100))
	cfg := &models.StegoConfig{Marker: "AB", HeaderSize: testHeaderSize, MaxFieldBytes: 99}

	var out bytes.Buffer
	_, err := NewDecoder(cfg).Decode(bytes.NewReader(stego), int64(len(stego)), &out)
	if !errors.Is(err, ErrFieldTooLarge) {
		t.Errorf("Decode() error = %v, want ErrFieldTooLarge", err)
	}
	if out.Len() != 0 {
		t.Errorf("Decode() wrote %d bytes before failing", out.Len())
	}
}

func TestSecretReader_Streams(t *testing.T) {
	secret := make([]byte, 2*chunkBytes+3)
	for i := range secret {
		secret[i] = byte(i)
	}
	stego, _ := encode(t, testCarrier(int(RequiredCarrierBytes(2, 4, int64(len(secret))))), "AB", ".bin", secret)

	sr, err := NewDecoder(testConfig("AB")).Open(bytes.NewReader(stego), -1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if sr.Extension != ".bin" || sr.Size != int64(len(secret)) {
		t.Fatalf("Open() = %q/%d, want .bin/%d", sr.Extension, sr.Size, len(secret))
	}

	small := make([]byte, 7)
	var got []byte
	for {
		n, err := sr.Read(small)
		got = append(got, small[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
	if !bytes.Equal(got, secret) {
		t.Error("streamed payload does not match")
	}
	if sr.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", sr.Remaining())
	}
}

func TestLSBSteganography(t *testing.T) {
	lsb := NewLSBSteganography(testConfig("#*"))
	carrier := testCarrier(5000)

	capacity := lsb.CalculateCapacity(carrier, ".txt")
	if capacity.UsableBytes != 5000 {
		t.Errorf("UsableBytes = %d, want 5000", capacity.UsableBytes)
	}
	if want := MaxSecretBytes(int64(len(carrier)), testHeaderSize, 2, 4); capacity.MaxSecretBytes != want {
		t.Errorf("MaxSecretBytes = %d, want %d", capacity.MaxSecretBytes, want)
	}

	secret := []byte("in-memory secret")
	stego, report, err := lsb.Embed(carrier, secret, ".txt")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(stego) != len(carrier) {
		t.Errorf("Embed() length = %d, want %d", len(stego), len(carrier))
	}

	streamed, streamedReport := encode(t, carrier, "#*", ".txt", secret)
	if !bytes.Equal(stego, streamed) {
		t.Error("Embed() and Encode() disagree")
	}
	if math.Abs(report.PSNR-streamedReport.PSNR) > 1e-9 {
		t.Errorf("PSNR = %v, streamed PSNR = %v", report.PSNR, streamedReport.PSNR)
	}

	data, ext, err := lsb.Extract(stego)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if ext != ".txt" || !bytes.Equal(data, secret) {
		t.Errorf("Extract() = %q %q, want %q %q", data, ext, secret, ".txt")
	}
}
