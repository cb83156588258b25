package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is one incoming binary attachment, decoded from a multipart part
type Upload struct {
	OriginalName string
	ContentType  string
	SizeBytes    int64
	Reader       io.Reader
}

// Saved describes where an upload landed on disk
type Saved struct {
	Path      string // relative to the store root
	SizeBytes int64
}

// Store persists binary attachments
type Store interface {
	Save(kind, recordID string, up Upload) (*Saved, error)
	Remove(path string) error
}

var photoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var documentExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// DiskStore writes uploads under root/<kind>/<recordID>/
type DiskStore struct {
	root     string
	maxBytes int64
}

func NewDiskStore(root string, maxBytes int64) *DiskStore {
	return &DiskStore{root: root, maxBytes: maxBytes}
}

// Save streams the upload to disk under a generated filename. The original
// extension is kept; the rest of the name is never trusted.
func (s *DiskStore) Save(kind, recordID string, up Upload) (*Saved, error) {
	ext := strings.ToLower(filepath.Ext(up.OriginalName))

	allowed := photoExts
	if kind == "documents" {
		allowed = documentExts
	}
	if !allowed[ext] {
		return nil, fmt.Errorf("file type %q is not allowed", ext)
	}
	if s.maxBytes > 0 && up.SizeBytes > s.maxBytes {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", s.maxBytes)
	}

	relDir := filepath.Join(kind, recordID)
	if err := os.MkdirAll(filepath.Join(s.root, relDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	relPath := filepath.Join(relDir, uuid.New().String()+ext)
	dst, err := os.Create(filepath.Join(s.root, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	var written int64
	if s.maxBytes > 0 {
		// SizeBytes from the multipart header is advisory; cap the copy too
		written, err = io.Copy(dst, io.LimitReader(up.Reader, s.maxBytes+1))
		if err == nil && written > s.maxBytes {
			os.Remove(filepath.Join(s.root, relPath))
			return nil, fmt.Errorf("file exceeds maximum size of %d bytes", s.maxBytes)
		}
	} else {
		written, err = io.Copy(dst, up.Reader)
	}
	if err != nil {
		os.Remove(filepath.Join(s.root, relPath))
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &Saved{Path: relPath, SizeBytes: written}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *DiskStore) Remove(path string) error {
	err := os.Remove(filepath.Join(s.root, path))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
