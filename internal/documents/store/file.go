// Package store keeps uploaded statements on the local filesystem.
//
// Layout: <dir>/<sha256(user)[:16]>/<kind>.pdf with a <kind>.json sidecar
// holding the original filename and upload time. Writes go through temp
// files and renames so readers never see a partial document.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aadya-khanna/OpenScore/internal/documents"
	"github.com/aadya-khanna/OpenScore/internal/scoring"
	"github.com/aadya-khanna/OpenScore/pkg/platform/sentinel"
)

type metadata struct {
	Filename   string    `json:"filename"`
	SHA256     string    `json:"sha256"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// FileStore persists documents under a root directory.
type FileStore struct {
	dir   string
	stage func(dir, name string, data []byte) (string, error)
}

// NewFileStore creates the root directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("documents directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}
	return &FileStore{dir: dir, stage: stageFile}, nil
}

// SaveAll stores every file, replacing earlier uploads of the same kinds.
// All contents and sidecars are written to temp files first and renamed into
// place only once every write succeeded, so a failed write leaves the
// earlier uploads untouched.
func (s *FileStore) SaveAll(ctx context.Context, userID string, files []documents.File, uploadedAt time.Time) ([]documents.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range files {
		if !f.Kind.Valid() {
			return nil, fmt.Errorf("unknown document kind %q", f.Kind)
		}
	}

	userDir := s.userDir(userID)
	if err := os.MkdirAll(userDir, 0o750); err != nil {
		return nil, fmt.Errorf("create user directory: %w", err)
	}

	var staged []stagedFile
	discard := func() {
		for _, f := range staged {
			_ = os.Remove(f.tmp)
		}
	}

	docs := make([]documents.Document, 0, len(files))
	for _, file := range files {
		sum := sha256.Sum256(file.Content)
		meta := metadata{
			Filename:   file.Filename,
			SHA256:     hex.EncodeToString(sum[:]),
			UploadedAt: uploadedAt.UTC(),
		}
		metaBytes, err := json.Marshal(meta)
		if err != nil {
			discard()
			return nil, fmt.Errorf("encode document metadata: %w", err)
		}

		for _, part := range []struct {
			name string
			data []byte
		}{
			{contentName(file.Kind), file.Content},
			{metaName(file.Kind), metaBytes},
		} {
			tmp, err := s.stage(userDir, part.name, part.data)
			if err != nil {
				discard()
				return nil, err
			}
			staged = append(staged, stagedFile{tmp: tmp, final: filepath.Join(userDir, part.name)})
		}

		docs = append(docs, documents.Document{
			UserID:     userID,
			Kind:       file.Kind,
			Filename:   meta.Filename,
			Size:       int64(len(file.Content)),
			SHA256:     meta.SHA256,
			UploadedAt: meta.UploadedAt,
		})
	}

	for i, f := range staged {
		if err := os.Rename(f.tmp, f.final); err != nil {
			for _, rest := range staged[i:] {
				_ = os.Remove(rest.tmp)
			}
			return nil, fmt.Errorf("rename %s: %w", filepath.Base(f.final), err)
		}
	}
	return docs, nil
}

// Read returns the stored bytes. Returns sentinel.ErrNotFound when the user
// never uploaded a document of kind.
func (s *FileStore) Read(ctx context.Context, userID string, kind scoring.DocumentKind) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(filepath.Join(s.userDir(userID), contentName(kind)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s for user: %w", kind, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return content, nil
}

// Stat returns the stored document description without its content.
func (s *FileStore) Stat(ctx context.Context, userID string, kind scoring.DocumentKind) (*documents.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	userDir := s.userDir(userID)
	info, err := os.Stat(filepath.Join(userDir, contentName(kind)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s for user: %w", kind, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", kind, err)
	}

	doc := &documents.Document{UserID: userID, Kind: kind, Size: info.Size(), UploadedAt: info.ModTime().UTC()}
	raw, err := os.ReadFile(filepath.Join(userDir, metaName(kind)))
	if err == nil {
		var meta metadata
		if json.Unmarshal(raw, &meta) == nil {
			doc.Filename = meta.Filename
			doc.SHA256 = meta.SHA256
			doc.UploadedAt = meta.UploadedAt
		}
	}
	return doc, nil
}

func (s *FileStore) userDir(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:8]))
}

func contentName(kind scoring.DocumentKind) string { return string(kind) + ".pdf" }
func metaName(kind scoring.DocumentKind) string    { return string(kind) + ".json" }

type stagedFile struct {
	tmp   string
	final string
}

// stageFile writes data to a temp file next to name and returns its path.
func stageFile(dir, name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return tmpName, nil
}
