// Package quality measures the distortion embedding leaves on a carrier
package quality

import (
	"math"
	"strconv"
)

// MaxSignalValue is the peak value of an 8-bit channel or sample byte.
const MaxSignalValue = 255.0

// CalculatePSNR compares two equally sized byte streams
func CalculatePSNR(original, stego []byte) float64 {
	if len(original) != len(stego) {
		return 0.0
	}

	if len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	return PSNRFromMSE(mse)
}

// PSNRFromLSBChanges computes PSNR when changed of total bytes differ by
// exactly one level, which is all LSB embedding can do.
func PSNRFromLSBChanges(changed, total int64) float64 {
	if total <= 0 {
		return 0.0
	}
	return PSNRFromMSE(float64(changed) / float64(total))
}

// PSNRFromMSE converts a mean squared error to decibels
func PSNRFromMSE(mse float64) float64 {
	// If MSE is 0, signals are identical
	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE))
	return 20 * math.Log10(MaxSignalValue/math.Sqrt(mse))
}

// ValidatePSNR reports whether psnr meets minDB. An unchanged carrier
// (+Inf) always does.
func ValidatePSNR(psnr, minDB float64) bool {
	return math.IsInf(psnr, 1) || psnr >= minDB
}

// FormatPSNR renders a PSNR value for headers and logs
func FormatPSNR(psnr float64) string {
	if math.IsInf(psnr, 1) {
		return "inf"
	}
	return strconv.FormatFloat(psnr, 'f', 2, 64)
}
