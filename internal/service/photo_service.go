// Package service implements the business rules of the application.
package service

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"campusfind/internal/config"
	"campusfind/internal/models"
	"campusfind/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"image/jpeg"

	_ "image/gif" // Register GIF decoder
	_ "image/png" // Register PNG decoder

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir       = "/tmp/campusfind/uploads"
	DefaultMaxUploadSizeMB = 5
	MaxPhotoDimension      = 4096
	StoredMaxSize          = 2048
	JPEGQuality            = 82
	WebPQuality            = 70
)

// PhotoUpload carries a raw multipart photo before validation.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PhotoService validates uploaded photos and stores a bounded JPEG master
// plus a WebP variant under the configured upload directory.
type PhotoService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewPhotoService returns a PhotoService configured from cfg.
func NewPhotoService(cfg *config.Config) *PhotoService {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.MaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadSizeMB
		}
	}

	return &PhotoService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Save validates and stores the upload. It returns the relative photo path
// to persist on the item and a cleanup function the caller must invoke if
// the surrounding database write fails, so the record and the files commit
// or roll back together.
func (s *PhotoService) Save(in PhotoUpload) (string, func(), error) {
	if len(in.Content) == 0 {
		observability.PhotoUploadFailures.WithLabelValues("empty").Inc()
		return "", nil, models.NewPhotoError("No photo uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		observability.PhotoUploadFailures.WithLabelValues("too_large").Inc()
		return "", nil, models.NewPhotoError(fmt.Sprintf("Photo too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedPhotoMIME(detectedType) {
		observability.PhotoUploadFailures.WithLabelValues("bad_type").Inc()
		return "", nil, models.NewPhotoError("Only png, jpg, jpeg, gif and webp photos are allowed")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		observability.PhotoUploadFailures.WithLabelValues("undecodable").Inc()
		return "", nil, models.NewPhotoError("Invalid photo file")
	}

	bounds := decoded.Bounds()
	if bounds.Dx() > MaxPhotoDimension || bounds.Dy() > MaxPhotoDimension {
		observability.PhotoUploadFailures.WithLabelValues("too_big").Inc()
		return "", nil, models.NewPhotoError(fmt.Sprintf("Photo dimensions exceed %dx%d pixels", MaxPhotoDimension, MaxPhotoDimension))
	}

	master := resizeToFit(decoded, StoredMaxSize, StoredMaxSize)

	encodedJPG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	encodedWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}

	name := time.Now().UTC().Format("20060102_150405_") + uuid.NewString()
	// The webp variant shares the jpg path minus the extension; only the
	// jpg path is persisted on the item.
	jpgRel := filepath.ToSlash(filepath.Join("photos", name+".jpg"))
	jpgAbs := filepath.Join(s.uploadDir, "photos", name+".jpg")
	webpAbs := filepath.Join(s.uploadDir, "photos", name+".webp")
	written := []string{jpgAbs, webpAbs}
	cleanup := func() { removeFiles(written) }

	if err := writeBytesToFile(jpgAbs, encodedJPG); err != nil {
		observability.PhotoUploadFailures.WithLabelValues("write").Inc()
		return "", nil, models.NewInternalError(err)
	}
	if err := writeBytesToFile(webpAbs, encodedWebP); err != nil {
		observability.PhotoUploadFailures.WithLabelValues("write").Inc()
		cleanup()
		return "", nil, models.NewInternalError(err)
	}

	observability.PhotoUploadBytes.Observe(float64(len(in.Content)))
	return jpgRel, cleanup, nil
}

// Resolve maps a stored photo path to an absolute file path, refusing
// anything that escapes the upload directory.
func (s *PhotoService) Resolve(photoPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(photoPath))
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", models.NewValidationError("Invalid photo path")
	}
	abs := filepath.Join(s.uploadDir, cleaned)
	if _, err := os.Stat(abs); err != nil {
		return "", models.NewNotFoundError("Photo", photoPath)
	}
	return abs, nil
}

func isAllowedPhotoMIME(mime string) bool {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return true
	}
	return false
}

func resizeToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func removeFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
