// Package imaging is the upload-processing collaborator for listing photos.
// The core only needs a stored filename back; resizing and optimization can
// live behind the Processor interface.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"marketbot/pkg/logger"
)

var (
	ErrUnsupportedFile = errors.New("imaging: unsupported file type")
	ErrFileTooLarge    = errors.New("imaging: file exceeds upload limit")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type Processor interface {
	// Process validates and stores an upload, returning the stored filename.
	Process(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// DiskProcessor stores uploads on local disk under a random name. It does
// not resize; an image-processing service can replace it behind Processor.
type DiskProcessor struct {
	dir      string
	maxBytes int64
	log      logger.ILogger
}

func NewDiskProcessor(dir string, maxBytes int64, log logger.ILogger) *DiskProcessor {
	return &DiskProcessor{dir: dir, maxBytes: maxBytes, log: log}
}

func (p *DiskProcessor) Process(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedFile
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		p.log.Error("failed to create upload dir", logger.Error(err))
		return "", err
	}

	storedName := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	f, err := os.Create(filepath.Join(p.dir, storedName))
	if err != nil {
		p.log.Error("failed to create upload file", logger.Error(err))
		return "", err
	}
	defer f.Close()

	// One byte past the cap distinguishes "at the limit" from "over it".
	n, err := io.Copy(f, io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		os.Remove(f.Name())
		p.log.Error("failed to store upload", logger.Error(err))
		return "", err
	}
	if n > p.maxBytes {
		os.Remove(f.Name())
		return "", ErrFileTooLarge
	}

	return storedName, nil
}
