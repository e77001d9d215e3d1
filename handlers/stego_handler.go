// Package handlers is made to handle requests
package handlers

import (
	"bmp-steganography/audio"
	"bmp-steganography/bmp"
	"bmp-steganography/config"
	"bmp-steganography/models"
	"bmp-steganography/quality"
	"bmp-steganography/stego"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

var errUnsupportedCarrier = errors.New("unsupported carrier format: only .bmp and .wav files are accepted")

type StegoHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewStegoHandler(cfg *config.Config, logger *zap.Logger) *StegoHandler {
	return &StegoHandler{
		cfg:    cfg,
		logger: logger,
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": Version,
	})
}

func (h *StegoHandler) stegoConfig(marker string, headerSize int64) *models.StegoConfig {
	return &models.StegoConfig{
		Marker:        marker,
		HeaderSize:    headerSize,
		MaxFieldBytes: h.cfg.Stego.MaxFieldBytes,
		MinPSNR:       h.cfg.Stego.MinPSNR,
	}
}

// readUpload returns the named multipart file and its original name.
func (h *StegoHandler) readUpload(c *gin.Context, field string) ([]byte, string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%s is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", field, err)
	}
	return data, header.Filename, nil
}

// checkCarrier rejects carriers the stego code cannot work with.
func (h *StegoHandler) checkCarrier(name string, data []byte) error {
	switch {
	case bmp.IsBMPPath(name):
		if !h.cfg.Stego.StrictBMP {
			return nil
		}
		info, err := bmp.ParseHeader(data)
		if err != nil {
			return err
		}
		if err := info.Validate(); err != nil {
			return err
		}
		return info.CheckSize(int64(len(data)))
	case audio.IsWAVPath(name):
		return nil
	default:
		return errUnsupportedCarrier
	}
}

// validExtension accepts a '.' followed by a non-empty plain name.
func validExtension(ext string) bool {
	return len(ext) > 1 && len(ext) <= stego.MaxExtensionBytes && strings.HasPrefix(ext, ".") && stego.IsSafeExtension(ext)
}

// attachment builds a Content-Disposition value, quoting name as needed.
func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

func (h *StegoHandler) parseForm(c *gin.Context) bool {
	if err := c.Request.ParseMultipartForm(h.cfg.Server.MaxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return false
	}
	return true
}

func (h *StegoHandler) Capacity(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}

	marker := c.PostForm("marker")
	if err := stego.ValidateMarker(marker); err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{Success: false, Message: fmt.Sprintf("Invalid marker: %v", err)})
		return
	}
	extension := c.PostForm("extension")
	if !validExtension(extension) {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid extension %q: want a leading '.' followed by a plain name", extension),
		})
		return
	}

	carrier, carrierName, err := h.readUpload(c, "carrier_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.checkCarrier(carrierName, carrier); err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{Success: false, Message: err.Error()})
		return
	}

	var report *models.CapacityReport
	if audio.IsWAVPath(carrierName) {
		report, err = audio.CalculateCapacity(carrier, h.stegoConfig(marker, 0), extension)
		if err != nil {
			c.JSON(statusFor(err), models.CapacityResponse{Success: false, Message: err.Error()})
			return
		}
	} else {
		report = stego.NewLSBSteganography(h.stegoConfig(marker, bmp.HeaderSize)).CalculateCapacity(carrier, extension)
	}

	c.JSON(http.StatusOK, models.CapacityResponse{Success: true, Report: report})
}

func (h *StegoHandler) InsertMessage(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}

	marker := c.PostForm("marker")
	if err := stego.ValidateMarker(marker); err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid marker: %v", err),
		})
		return
	}

	carrier, carrierName, err := h.readUpload(c, "carrier_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{Success: false, Message: err.Error()})
		return
	}
	if err := h.checkCarrier(carrierName, carrier); err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{Success: false, Message: err.Error()})
		return
	}

	secretData, secretName, err := h.readUpload(c, "secret_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{Success: false, Message: err.Error()})
		return
	}
	extension, ok := stego.ExtensionOf(secretName)
	if !ok {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Secret file %q has no extension", secretName),
		})
		return
	}

	var (
		stegoData   []byte
		report      *models.EncodeReport
		contentType string
	)
	if audio.IsWAVPath(carrierName) {
		stegoData, report, err = audio.EmbedInWAV(carrier, secretData, extension, h.stegoConfig(marker, 0))
		contentType = "audio/wav"
	} else {
		stegoData, report, err = stego.NewLSBSteganography(h.stegoConfig(marker, bmp.HeaderSize)).Embed(carrier, secretData, extension)
		contentType = "image/bmp"
	}
	if err != nil {
		h.logger.Warn("embed failed", zap.String("carrier", carrierName), zap.Error(err))
		c.JSON(statusFor(err), models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to embed secret data: %v", err),
		})
		return
	}

	baseFilename := strings.TrimSuffix(carrierName, filepath.Ext(carrierName))
	outputFilename := fmt.Sprintf("%s_stego%s", baseFilename, filepath.Ext(carrierName))

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", attachment(outputFilename))

	// Include metadata about the steganography operation
	c.Header("X-Stego-Method", "LSB")
	c.Header("X-Stego-Message", "Secret file successfully embedded")
	c.Header("X-Stego-PSNR", quality.FormatPSNR(report.PSNR))
	c.Header("X-Stego-Capacity", fmt.Sprintf("%d", report.CarrierBytes))
	c.Header("X-Stego-Used", fmt.Sprintf("%d", report.CarrierBytesUsed))

	c.Data(http.StatusOK, contentType, stegoData)
}

func (h *StegoHandler) ExtractMessage(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}

	marker := c.PostForm("marker")
	if err := stego.ValidateMarker(marker); err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid marker: %v", err),
		})
		return
	}

	stegoData, stegoName, err := h.readUpload(c, "stego_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{Success: false, Message: err.Error()})
		return
	}
	if !bmp.IsBMPPath(stegoName) && !audio.IsWAVPath(stegoName) {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{Success: false, Message: errUnsupportedCarrier.Error()})
		return
	}

	var (
		secretData []byte
		extension  string
	)
	if audio.IsWAVPath(stegoName) {
		secretData, extension, err = audio.ExtractFromWAV(stegoData, h.stegoConfig(marker, 0))
	} else {
		secretData, extension, err = stego.NewLSBSteganography(h.stegoConfig(marker, bmp.HeaderSize)).Extract(stegoData)
	}
	if err != nil {
		h.logger.Warn("extract failed", zap.String("stego", stegoName), zap.Error(err))
		c.JSON(statusFor(err), models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to extract secret data: %v", err),
		})
		return
	}

	secretFilename := h.cfg.Stego.DecodedBaseName + extension
	if !stego.IsSafeExtension(extension) {
		secretFilename = h.cfg.Stego.DecodedBaseName
	}

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", attachment(filepath.Base(secretFilename)))
	c.Header("X-Stego-Extension", extension)

	c.Data(http.StatusOK, "application/octet-stream", secretData)
}
