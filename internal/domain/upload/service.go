package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxFileSize = 15 * 1024 * 1024
	UploadsBaseDir     = "./uploads"
	StaticURLBase      = "/static/uploads"
)

// AllowedMimeTypes lists the evidence image formats accepted.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// Service stores evidence photos on local disk: save file -> record in DB ->
// return ID + URL.
type Service struct {
	repo       Repository
	baseDir    string
	staticBase string
	maxSize    int64
	log        *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, baseDir, staticBase string, maxSize int64, log *zap.Logger) *Service {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, baseDir: baseDir, staticBase: strings.TrimRight(staticBase, "/"), maxSize: maxSize, log: log, now: time.Now}
}

// ReadPhoto loads a multipart file into memory, enforcing the size limit and
// image type before anything touches the disk.
func (s *Service) ReadPhoto(fileHeader *multipart.FileHeader) (*Photo, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	photo := &Photo{Filename: fileHeader.Filename, Data: data}
	if _, err := s.check(photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Save writes the photo to disk and records it. The file is removed again if
// the record cannot be stored.
func (s *Service) Save(ctx context.Context, operatorID int64, photo *Photo) (*Upload, error) {
	mimeType, err := s.check(photo)
	if err != nil {
		return nil, err
	}

	// uploads/YYYY/MM/DD/
	now := s.now().UTC()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New().String()
	filename := fmt.Sprintf("%s_%s%s", id, sanitizeName(photo.Filename), mimeToExt(mimeType))
	absPath := filepath.Join(absDir, filename)
	if err := os.WriteFile(absPath, photo.Data, 0o644); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	relPath := filepath.ToSlash(filepath.Join(relDir, filename))
	upload := &Upload{
		ID:           id,
		OperatorID:   operatorID,
		OriginalName: photo.Filename,
		FilePath:     relPath,
		FileURL:      s.staticBase + "/" + relPath,
		MimeType:     mimeType,
		Size:         int64(len(photo.Data)),
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		_ = os.Remove(absPath) // rollback file on DB error
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	s.log.Debug("evidence stored", zap.String("upload_id", id), zap.Int64("operator_id", operatorID), zap.Int64("size", upload.Size))
	return upload, nil
}

// Discard removes a stored photo and its record.
func (s *Service) Discard(ctx context.Context, id string) error {
	upload, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(upload.FilePath))); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("failed to remove evidence file", zap.String("upload_id", id), zap.Error(err))
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) check(photo *Photo) (string, error) {
	if photo == nil || len(photo.Data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(photo.Data)) > s.maxSize {
		return "", ErrFileTooLarge
	}
	mimeType := DetectMimeType(photo.Data)
	if !AllowedMimeTypes[mimeType] {
		return "", ErrInvalidMimeType
	}
	return mimeType, nil
}

// DetectMimeType sniffs the first bytes of data. HEIC is not known to
// net/http, so its ISO-BMFF brand is checked first.
func DetectMimeType(data []byte) string {
	if len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) {
		switch string(data[8:12]) {
		case "heic", "heix", "heim", "heis", "mif1":
			return "image/heic"
		}
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Split(http.DetectContentType(head), ";")[0]
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "_" {
		return "photo"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".bin"
	}
}
