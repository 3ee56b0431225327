package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
)

// Storage archives completed digests on disk under dated directories
// (processed/YYYY/MM/DD), one JSON file per run.
type Storage struct {
	basePath string
	mu       sync.RWMutex
	now      func() time.Time
	uploader *R2Uploader
}

func NewStorage(basePath string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "processed"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Storage{basePath: basePath, now: time.Now}, nil
}

// SetUploader enables best-effort mirroring of every saved digest to R2.
func (s *Storage) SetUploader(u *R2Uploader) {
	s.uploader = u
}

// SaveDigest archives one pipeline run and returns the stored record with
// its generated ID.
func (s *Storage) SaveDigest(ctx context.Context, title string, style models.StyleProfile, result models.DigestResult) (*models.ArchivedDigest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	archived := &models.ArchivedDigest{
		ID:        uuid.New().String(),
		Title:     title,
		Style:     style,
		Result:    result,
		CreatedAt: s.now(),
	}

	datePath := filepath.Join(s.basePath, "processed", archived.CreatedAt.Format("2006/01/02"))
	if err := os.MkdirAll(datePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create date directory: %w", err)
	}

	filename := fmt.Sprintf("%d_%s.json", archived.CreatedAt.Unix(), archived.ID)
	filePath := filepath.Join(datePath, filename)

	data, err := json.MarshalIndent(archived, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal digest: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write digest file: %w", err)
	}

	archived.FilePath = filePath

	if s.uploader != nil {
		if err := s.uploader.Upload(ctx, archived.ID, data); err != nil {
			logger.Warn().Err(err).Str("id", archived.ID).Msg("R2 mirror failed, local archive kept")
		}
	}
	return archived, nil
}

// GetDigestByID retrieves an archived digest by its ID.
func (s *Storage) GetDigestByID(ctx context.Context, id string) (*models.ArchivedDigest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByID(id)
}

func (s *Storage) findByID(id string) (*models.ArchivedDigest, error) {
	var found *models.ArchivedDigest
	err := filepath.WalkDir(filepath.Join(s.basePath, "processed"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		if strings.Contains(d.Name(), id) {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", path, err)
			}
			var archived models.ArchivedDigest
			if err := json.Unmarshal(data, &archived); err != nil {
				return fmt.Errorf("failed to unmarshal digest: %w", err)
			}
			archived.FilePath = path
			found = &archived
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("digest with ID %s not found", id)
	}
	return found, nil
}

// ListDigests returns a page of archived digests, newest first.
func (s *Storage) ListDigests(ctx context.Context, page, pageSize int) ([]*models.ArchivedDigest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []string
	err := filepath.WalkDir(filepath.Join(s.basePath, "processed"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path: %w", err)
	}

	// Filenames lead with the creation timestamp, so path order within a
	// date directory is chronological; sort by modification time to be
	// safe across directories.
	sort.Slice(files, func(i, j int) bool {
		fi, _ := os.Stat(files[i])
		fj, _ := os.Stat(files[j])
		if fi == nil || fj == nil {
			return files[i] > files[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start >= len(files) {
		return []*models.ArchivedDigest{}, nil
	}
	end := start + pageSize
	if end > len(files) {
		end = len(files)
	}

	digests := make([]*models.ArchivedDigest, 0, end-start)
	for _, file := range files[start:end] {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file %s: %w", file, err)
		}
		var archived models.ArchivedDigest
		if err := json.Unmarshal(data, &archived); err != nil {
			return nil, fmt.Errorf("error unmarshaling digest: %w", err)
		}
		archived.FilePath = file
		digests = append(digests, &archived)
	}
	return digests, nil
}

// DeleteDigest removes an archived digest by its ID.
func (s *Storage) DeleteDigest(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	archived, err := s.findByID(id)
	if err != nil {
		return err
	}
	if err := os.Remove(archived.FilePath); err != nil {
		return fmt.Errorf("failed to delete digest file: %w", err)
	}
	return nil
}
