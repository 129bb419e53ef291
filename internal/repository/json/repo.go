package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"psparser/internal/domain/models"
	"psparser/internal/repository"
)

// file is a JSON document replaced atomically on every write.
type file struct {
	Path string
	Log  *slog.Logger
	mu   sync.Mutex
}

func newFile(path string, log *slog.Logger) *file {
	if log == nil {
		log = slog.Default()
	}
	return &file{Path: path, Log: log}
}

// read decodes the file into v. ok is false when the file does not exist
// or is empty.
func (f *file) read(v any) (ok bool, err error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &repository.PersistenceError{Op: "read", Path: f.Path, Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, &repository.PersistenceError{Op: "decode", Path: f.Path, Err: err}
	}
	return true, nil
}

func (f *file) write(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Path == "" {
		return &repository.PersistenceError{Op: "write", Err: fmt.Errorf("empty path")}
	}
	if err := writeAtomic(f.Path, v); err != nil {
		return &repository.PersistenceError{Op: "write", Path: f.Path, Err: err}
	}
	return nil
}

func writeAtomic(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// CatalogRepo is the append-only catalog dataset keyed by product link.
type CatalogRepo struct {
	f *file
}

func NewCatalog(path string, log *slog.Logger) *CatalogRepo {
	return &CatalogRepo{f: newFile(path, log)}
}

func (r *CatalogRepo) Path() string { return r.f.Path }

func (r *CatalogRepo) Load(ctx context.Context) ([]models.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.load()
}

func (r *CatalogRepo) load() ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	if _, err := r.f.read(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// MergeAppend appends items whose link is not stored yet and rewrites the
// file. Existing entries are never modified, so repeating a merge is a no-op.
func (r *CatalogRepo) MergeAppend(ctx context.Context, items []models.CatalogItem) (repository.MergeResult, error) {
	if err := ctx.Err(); err != nil {
		return repository.MergeResult{}, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	stored, err := r.load()
	if err != nil {
		return repository.MergeResult{}, err
	}

	seen := make(map[string]struct{}, len(stored)+len(items))
	for _, it := range stored {
		seen[it.Link] = struct{}{}
	}

	var res repository.MergeResult
	for _, it := range items {
		if it.Link == "" {
			res.Skipped++
			continue
		}
		if _, ok := seen[it.Link]; ok {
			res.Skipped++
			continue
		}
		seen[it.Link] = struct{}{}
		stored = append(stored, it)
		res.Added++
	}
	res.Total = len(stored)

	if res.Added == 0 {
		if _, statErr := os.Stat(r.f.Path); statErr == nil {
			return res, nil
		}
	}

	if err := r.f.write(ctx, stored); err != nil {
		return repository.MergeResult{}, err
	}
	r.f.Log.Debug("catalog saved", "path", r.f.Path, "added", res.Added, "total", res.Total)
	return res, nil
}

// PricingRepo holds the subscription offers rebuilt on every run.
type PricingRepo struct {
	f *file
}

func NewPricing(path string, log *slog.Logger) *PricingRepo {
	return &PricingRepo{f: newFile(path, log)}
}

func (r *PricingRepo) Path() string { return r.f.Path }

func (r *PricingRepo) Save(ctx context.Context, offers []models.PricingOffer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	if offers == nil {
		offers = []models.PricingOffer{}
	}
	if err := r.f.write(ctx, offers); err != nil {
		return err
	}
	r.f.Log.Info("subscriptions saved", "path", r.f.Path, "count", len(offers))
	return nil
}

func (r *PricingRepo) Load(ctx context.Context) ([]models.PricingOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	offers := []models.PricingOffer{}
	if _, err := r.f.read(&offers); err != nil {
		return nil, err
	}
	return offers, nil
}
