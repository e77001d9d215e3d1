package stego

import (
	"bmp-steganography/models"
	"bufio"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultDecodedBaseName names the recovered file when the caller gives none.
const DefaultDecodedBaseName = "default_decoded_secret"

// DefaultStegoOutput names the stego image when the caller gives none.
const DefaultStegoOutput = "default_stego_img.bmp"

type EncodeFileOptions struct {
	CarrierPath string
	SecretPath  string
	OutputPath  string // DefaultStegoOutput when empty
}

type DecodeFileOptions struct {
	StegoPath string
	// BaseName is the output path without extension; the decoded
	// extension is appended as is. DefaultDecodedBaseName when empty.
	BaseName string
}

// EncodeFile hides the secret file in the carrier file and writes the
// result to the output path. The output is created only after the capacity
// check passes and is removed again if encoding fails.
func (e *Encoder) EncodeFile(opts EncodeFileOptions) (report *models.EncodeReport, err error) {
	if opts.OutputPath == "" {
		opts.OutputPath = DefaultStegoOutput
	}
	ext, ok := ExtensionOf(opts.SecretPath)
	if !ok {
		return nil, newFileError(ErrNoExtension, opts.SecretPath, nil)
	}
	if samePath(opts.CarrierPath, opts.OutputPath) {
		return nil, newFileError(ErrOutputCreate, opts.OutputPath, errors.New("output would overwrite the carrier"))
	}

	carrier, err := os.Open(opts.CarrierPath)
	if err != nil {
		return nil, newFileError(ErrCarrierOpen, opts.CarrierPath, err)
	}
	defer carrier.Close()
	carrierInfo, err := carrier.Stat()
	if err != nil {
		return nil, newFileError(ErrCarrierOpen, opts.CarrierPath, err)
	}

	secretFile, err := os.Open(opts.SecretPath)
	if err != nil {
		return nil, newFileError(ErrSecretOpen, opts.SecretPath, err)
	}
	defer secretFile.Close()
	secretInfo, err := secretFile.Stat()
	if err != nil {
		return nil, newFileError(ErrSecretOpen, opts.SecretPath, err)
	}

	secret := Secret{
		Extension: ext,
		Size:      secretInfo.Size(),
		Data:      bufio.NewReader(secretFile),
	}
	if err := e.CheckCapacity(carrierInfo.Size(), secret); err != nil {
		return nil, err
	}

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return nil, newFileError(ErrOutputCreate, opts.OutputPath, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = newFileError(ErrOutputCreate, opts.OutputPath, closeErr)
		}
		if err != nil {
			removePartial(opts.OutputPath)
		}
	}()

	w := bufio.NewWriter(out)
	report, err = e.Encode(bufio.NewReader(carrier), carrierInfo.Size(), secret, w)
	if err != nil {
		var fe *FileError
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = opts.OutputPath
		}
		return nil, err
	}
	if err = w.Flush(); err != nil {
		return nil, newFileError(ErrOutputCreate, opts.OutputPath, err)
	}

	Logger().Info("stego image written",
		zap.String("carrier", opts.CarrierPath),
		zap.String("secret", opts.SecretPath),
		zap.String("output", opts.OutputPath))
	return report, nil
}

// DecodeFile recovers the secret from a stego image. The output file,
// BaseName followed by the decoded extension, is created only once the
// marker has been verified and is removed again if decoding fails.
func (d *Decoder) DecodeFile(opts DecodeFileOptions) (path string, secret *models.DecodedSecret, err error) {
	if opts.BaseName == "" {
		opts.BaseName = DefaultDecodedBaseName
	}

	in, err := os.Open(opts.StegoPath)
	if err != nil {
		return "", nil, newFileError(ErrCarrierOpen, opts.StegoPath, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return "", nil, newFileError(ErrCarrierOpen, opts.StegoPath, err)
	}

	sr, err := d.Open(bufio.NewReader(in), info.Size())
	if err != nil {
		return "", nil, err
	}
	if !IsSafeExtension(sr.Extension) {
		return "", nil, newFieldError(ErrUnsafeExtension, FieldExtension, "a plain file extension", sr.Extension)
	}

	path = opts.BaseName + sr.Extension
	out, err := os.Create(path)
	if err != nil {
		return "", nil, newFileError(ErrOutputCreate, path, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = newFileError(ErrOutputCreate, path, closeErr)
		}
		if err != nil {
			removePartial(path)
			path = ""
		}
	}()

	w := bufio.NewWriter(out)
	n, err := sr.WriteTo(w)
	if err != nil {
		var fe *FileError
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = path
		}
		return path, nil, err
	}
	if err = w.Flush(); err != nil {
		return path, nil, newFileError(ErrOutputCreate, path, err)
	}

	logState("decode", StateComplete, sr.fr.offset)
	Logger().Info("secret file written",
		zap.String("stego", opts.StegoPath),
		zap.String("output", path),
		zap.Int64("secret_bytes", n))
	return path, &models.DecodedSecret{Extension: sr.Extension, Size: n}, nil
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		Logger().Warn("could not remove partial output", zap.String("path", path), zap.Error(err))
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if absA == absB {
		return true
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
