package main

import (
	"bmp-steganography/audio"
	"bmp-steganography/bmp"
	"bmp-steganography/models"
	"bmp-steganography/quality"
	"bmp-steganography/stego"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

const defaultStegoAudioOutput = "default_stego_audio.wav"

func (env *environment) stegoConfig(marker string, headerSize int64) *models.StegoConfig {
	return &models.StegoConfig{
		Marker:        marker,
		HeaderSize:    headerSize,
		MaxFieldBytes: env.cfg.Stego.MaxFieldBytes,
		MinPSNR:       env.cfg.Stego.MinPSNR,
	}
}

func usageError(env *environment, flagSet *pflag.FlagSet, format string, args ...any) error {
	fmt.Fprintf(env.stderr, "Error! "+format+"\n", args...)
	flagSet.Usage()
	return errUsage
}

func isCarrierPath(name string) bool {
	return bmp.IsBMPPath(name) || audio.IsWAVPath(name)
}

func runEncode(env *environment, args []string) error {
	flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	imagePath := flagSet.StringP("image", "i", "", "source carrier (.bmp, or .wav)")
	secretPath := flagSet.StringP("secret", "s", "", "secret file to hide; its extension is stored too")
	outputPath := flagSet.StringP("output", "o", "", "stego output path (default: "+stego.DefaultStegoOutput+")")
	markerFlag := flagSet.StringP("marker", "m", "", "marker written ahead of the secret (prompted when omitted)")
	addCommonFlags(flagSet)
	if err := parseFlags(env, flagSet, args); err != nil {
		return err
	}

	if *imagePath == "" || *secretPath == "" {
		return usageError(env, flagSet, "--image and --secret are required")
	}
	if !isCarrierPath(*imagePath) {
		return usageError(env, flagSet, "Pass <.BMP file> as --image")
	}
	if *outputPath != "" && !strings.EqualFold(filepath.Ext(*outputPath), filepath.Ext(*imagePath)) {
		return usageError(env, flagSet, "--output must have the same extension as --image (%s)", filepath.Ext(*imagePath))
	}

	marker, err := markerFrom(env, *markerFlag)
	if err != nil {
		return err
	}
	if err := stego.ValidateMarker(marker); err != nil {
		return err
	}

	if audio.IsWAVPath(*imagePath) {
		output := *outputPath
		if output == "" {
			output = defaultStegoAudioOutput
		}
		return encodeWAV(env, marker, *imagePath, *secretPath, output)
	}

	if env.cfg.Stego.StrictBMP {
		if err := checkBMP(*imagePath); err != nil {
			return err
		}
	}
	output := *outputPath
	if output == "" {
		output = env.cfg.Stego.DefaultStegoOutput
	}

	report, err := stego.NewEncoder(env.stegoConfig(marker, bmp.HeaderSize)).EncodeFile(stego.EncodeFileOptions{
		CarrierPath: *imagePath,
		SecretPath:  *secretPath,
		OutputPath:  output,
	})
	if err != nil {
		return err
	}
	printEncodeReport(env, output, report)
	return nil
}

func encodeWAV(env *environment, marker, carrierPath, secretPath, outputPath string) error {
	extension, ok := stego.ExtensionOf(secretPath)
	if !ok {
		return &stego.FileError{Err: stego.ErrNoExtension, Path: secretPath}
	}
	carrier, err := os.ReadFile(carrierPath)
	if err != nil {
		return &stego.FileError{Err: stego.ErrCarrierOpen, Path: carrierPath, Cause: err}
	}
	secret, err := os.ReadFile(secretPath)
	if err != nil {
		return &stego.FileError{Err: stego.ErrSecretOpen, Path: secretPath, Cause: err}
	}

	out, report, err := audio.EmbedInWAV(carrier, secret, extension, env.stegoConfig(marker, 0))
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		os.Remove(outputPath)
		return &stego.FileError{Err: stego.ErrOutputCreate, Path: outputPath, Cause: err}
	}
	printEncodeReport(env, outputPath, report)
	return nil
}

func checkBMP(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &stego.FileError{Err: stego.ErrCarrierOpen, Path: path, Cause: err}
	}
	defer f.Close()

	info, err := bmp.ReadHeader(f)
	if err != nil {
		return err
	}
	if err := info.Validate(); err != nil {
		return err
	}
	stat, err := f.Stat()
	if err != nil {
		return &stego.FileError{Err: stego.ErrCarrierOpen, Path: path, Cause: err}
	}
	return info.CheckSize(stat.Size())
}

func printEncodeReport(env *environment, output string, report *models.EncodeReport) {
	fmt.Fprintf(env.stdout, "Encoding secret data completed: %s\n", output)
	fmt.Fprintf(env.stdout, "  secret bytes:       %d\n", report.SecretBytes)
	fmt.Fprintf(env.stdout, "  carrier bytes used: %d of %d\n", report.CarrierBytesUsed, report.CarrierBytes)
	fmt.Fprintf(env.stdout, "  PSNR:               %s dB\n", quality.FormatPSNR(report.PSNR))
}

func runDecode(env *environment, args []string) error {
	flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	imagePath := flagSet.StringP("image", "i", "", "stego carrier (.bmp, or .wav)")
	outputName := flagSet.StringP("output", "o", "", "output name; anything from its first '.' is replaced by the hidden extension (default: "+stego.DefaultDecodedBaseName+")")
	markerFlag := flagSet.StringP("marker", "m", "", "marker the secret was hidden with (prompted when omitted)")
	addCommonFlags(flagSet)
	if err := parseFlags(env, flagSet, args); err != nil {
		return err
	}

	if *imagePath == "" {
		return usageError(env, flagSet, "--image is required")
	}
	if !isCarrierPath(*imagePath) {
		return usageError(env, flagSet, "Invalid file format. Only .bmp is supported.")
	}

	baseName := env.cfg.Stego.DecodedBaseName
	if *outputName != "" {
		stem := stego.StemOf(*outputName)
		if _, file := filepath.Split(stem); file != "" {
			baseName = stem
		}
	}

	marker, err := markerFrom(env, *markerFlag)
	if err != nil {
		return err
	}
	if err := stego.ValidateMarker(marker); err != nil {
		return err
	}

	if audio.IsWAVPath(*imagePath) {
		return decodeWAV(env, marker, *imagePath, baseName)
	}

	path, secret, err := stego.NewDecoder(env.stegoConfig(marker, bmp.HeaderSize)).DecodeFile(stego.DecodeFileOptions{
		StegoPath: *imagePath,
		BaseName:  baseName,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Decoding secret data completed: %s (%d bytes)\n", path, secret.Size)
	return nil
}

func decodeWAV(env *environment, marker, stegoPath, baseName string) error {
	data, err := os.ReadFile(stegoPath)
	if err != nil {
		return &stego.FileError{Err: stego.ErrCarrierOpen, Path: stegoPath, Cause: err}
	}
	secret, extension, err := audio.ExtractFromWAV(data, env.stegoConfig(marker, 0))
	if err != nil {
		return err
	}
	if !stego.IsSafeExtension(extension) {
		return &stego.FieldError{Err: stego.ErrUnsafeExtension, Field: stego.FieldExtension, Expected: "a plain file extension", Actual: extension}
	}

	path := baseName + extension
	if err := os.WriteFile(path, secret, 0o644); err != nil {
		os.Remove(path)
		return &stego.FileError{Err: stego.ErrOutputCreate, Path: path, Cause: err}
	}
	fmt.Fprintf(env.stdout, "Decoding secret data completed: %s (%d bytes)\n", path, len(secret))
	return nil
}

func runCapacity(env *environment, args []string) error {
	flagSet := pflag.NewFlagSet("capacity", pflag.ContinueOnError)
	imagePath := flagSet.StringP("image", "i", "", "carrier to measure (.bmp, or .wav)")
	markerFlag := flagSet.StringP("marker", "m", "", "marker that will be used (prompted when omitted)")
	extension := flagSet.StringP("extension", "e", ".txt", "extension of the secret file, including the dot")
	addCommonFlags(flagSet)
	if err := parseFlags(env, flagSet, args); err != nil {
		return err
	}

	if *imagePath == "" {
		return usageError(env, flagSet, "--image is required")
	}
	if !isCarrierPath(*imagePath) {
		return usageError(env, flagSet, "Pass <.BMP file> as --image")
	}
	if len(*extension) < 2 || !strings.HasPrefix(*extension, ".") || !stego.IsSafeExtension(*extension) {
		return usageError(env, flagSet, "--extension must be a '.' followed by a name, got %q", *extension)
	}

	marker, err := markerFrom(env, *markerFlag)
	if err != nil {
		return err
	}
	if err := stego.ValidateMarker(marker); err != nil {
		return err
	}

	var report *models.CapacityReport
	if audio.IsWAVPath(*imagePath) {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return &stego.FileError{Err: stego.ErrCarrierOpen, Path: *imagePath, Cause: err}
		}
		report, err = audio.CalculateCapacity(data, env.stegoConfig(marker, 0), *extension)
		if err != nil {
			return err
		}
	} else {
		if env.cfg.Stego.StrictBMP {
			if err := checkBMP(*imagePath); err != nil {
				return err
			}
		}
		info, err := os.Stat(*imagePath)
		if err != nil {
			return &stego.FileError{Err: stego.ErrCarrierOpen, Path: *imagePath, Cause: err}
		}
		size := info.Size()
		report = &models.CapacityReport{
			CarrierBytes:   size,
			UsableBytes:    stego.AvailableCarrierBytes(size, bmp.HeaderSize),
			MaxSecretBytes: stego.MaxSecretBytes(size, bmp.HeaderSize, len(marker), len(*extension)),
		}
	}

	fmt.Fprintf(env.stdout, "%s\n", *imagePath)
	fmt.Fprintf(env.stdout, "  carrier bytes:    %d\n", report.CarrierBytes)
	fmt.Fprintf(env.stdout, "  usable bytes:     %d\n", report.UsableBytes)
	fmt.Fprintf(env.stdout, "  max secret bytes: %d\n", report.MaxSecretBytes)
	return nil
}
