package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psparser/internal/domain/models"
	"psparser/internal/repository"
)

func item(link, title string) models.CatalogItem {
	return models.CatalogItem{Link: link, Title: title, Platforms: []string{}}
}

func TestMergeAppend_MissingFileStartsEmpty(t *testing.T) {
	repo := NewCatalog(filepath.Join(t.TempDir(), "out", "games.json"), nil)

	res, err := repo.MergeAppend(context.Background(), []models.CatalogItem{item("a", "A"), item("b", "B")})
	require.NoError(t, err)
	assert.Equal(t, repository.MergeResult{Added: 2, Total: 2}, res)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMergeAppend_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	repo := NewCatalog(path, nil)
	ctx := context.Background()
	batch := []models.CatalogItem{item("a", "A"), item("b", "B")}

	_, err := repo.MergeAppend(ctx, batch)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := repo.MergeAppend(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 2, res.Skipped)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestMergeAppend_NeverOverwritesAndDedupsBatch(t *testing.T) {
	repo := NewCatalog(filepath.Join(t.TempDir(), "games.json"), nil)
	ctx := context.Background()

	_, err := repo.MergeAppend(ctx, []models.CatalogItem{item("a", "old title")})
	require.NoError(t, err)

	res, err := repo.MergeAppend(ctx, []models.CatalogItem{
		item("a", "new title"),
		item("c", "C"),
		item("c", "C again"),
		item("", "no link"),
	})
	require.NoError(t, err)
	assert.Equal(t, repository.MergeResult{Added: 1, Skipped: 3, Total: 2}, res)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "old title", got[0].Title)
	assert.Equal(t, "C", got[1].Title)
}

func TestMergeAppend_CorruptFileIsPersistenceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewCatalog(path, nil).MergeAppend(context.Background(), []models.CatalogItem{item("a", "A")})

	var pe *repository.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "decode", pe.Op)

	b, _ := os.ReadFile(path)
	assert.Equal(t, "{not json", string(b))
}

func TestPricingRepo_SaveReplaces(t *testing.T) {
	repo := NewPricing(filepath.Join(t.TempDir(), "subscriptions.json"), nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []models.PricingOffer{{Service: "PlayStation Plus", Region: "TR", Tier: "Essential"}}))
	require.NoError(t, repo.Save(ctx, []models.PricingOffer{{Service: "EA Play", Region: "IN"}}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EA Play", got[0].Service)
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")

	release, err := Lock(path, time.Hour)
	require.NoError(t, err)

	_, err = Lock(path, time.Hour)
	assert.ErrorIs(t, err, ErrLocked)

	release()
	release2, err := Lock(path, time.Hour)
	require.NoError(t, err)
	release2()
}

func TestLock_StaleReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	require.NoError(t, os.WriteFile(path+".lock", []byte("{}"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path+".lock", old, old))

	release, err := Lock(path, time.Hour)
	require.NoError(t, err)
	release()
}
