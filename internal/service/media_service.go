package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a stored media file.
type Upload struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// MediaService handles file upload operations.
type MediaService struct {
	dir      string
	maxBytes int64
	audit    auditor
	log      zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config, rec ActivityRecorder, log zerolog.Logger) *MediaService {
	return &MediaService{
		dir:      cfg.UploadDir,
		maxBytes: cfg.MaxUploadBytes,
		audit:    auditor{rec: rec, resource: model.ResourceMedia},
		log:      log.With().Str("component", "media_service").Logger(),
	}
}

// SaveUpload saves an uploaded image to local storage with a UUID filename
// and returns its public URL. The type is sniffed from the content, not
// taken from the client header.
func (s *MediaService) SaveUpload(ctx context.Context, actor Actor, file multipart.File, header *multipart.FileHeader) (*Upload, error) {
	if header.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.maxBytes)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.dir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	// The header size is client-supplied; the copy enforces the limit for real.
	written, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}
	if err != nil {
		_ = os.Remove(destPath)
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write file: %w", err)
	}

	up := &Upload{
		URL:         "/uploads/" + filename,
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
	}
	s.audit.record(ctx, actor, model.ActivityCreate, filename, nil, up)
	return up, nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
