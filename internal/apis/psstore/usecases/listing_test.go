package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psparser/internal/apis/psstore"
	"psparser/internal/apis/psstore/mapper"
	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/logger"
	"psparser/internal/normalize"
	"psparser/internal/repository"
)

type fakeService struct {
	mu        sync.Mutex
	pages     map[int][]psstore.Stub
	pageErr   map[int]error
	detailErr map[string]error
	listed    []int

	inFlight, peak atomic.Int32
}

func (f *fakeService) ListPage(_ context.Context, _ string, page int, _ string) ([]psstore.Stub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, page)
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeService) GetDetail(_ context.Context, link, _ string) (psstore.Detail, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if err := f.detailErr[link]; err != nil {
		return psstore.Detail{}, err
	}
	return psstore.Detail{
		ReleaseDate: extract.Found("2024", extract.SourceMarkup),
		Platforms:   extract.Found([]string{"PS5"}, extract.SourceMarkup),
	}, nil
}

type fakeStore struct {
	batches [][]models.CatalogItem
	err     error
}

func (s *fakeStore) MergeAppend(_ context.Context, items []models.CatalogItem) (repository.MergeResult, error) {
	if s.err != nil {
		return repository.MergeResult{}, s.err
	}
	s.batches = append(s.batches, items)
	return repository.MergeResult{Added: len(items), Total: len(items)}, nil
}

func stub(link, price string) psstore.Stub {
	return psstore.Stub{
		Link:  link,
		Title: extract.Found("T "+link, extract.SourceMarkup),
		Price: extract.Found(price, extract.SourceMarkup),
	}
}

func stubs(prefix string, n int) []psstore.Stub {
	out := make([]psstore.Stub, n)
	for i := range out {
		out[i] = stub(fmt.Sprintf("%s-%d", prefix, i), "Rs 499")
	}
	return out
}

func newCrawler(svc psstore.Service, store CatalogStore, concurrency int) *ListingCrawler {
	log := logger.Discard()
	return NewListingCrawler(svc, NewDetailEnricher(svc, concurrency, log, nil), store, CrawlerOptions{Logger: log})
}

func src(maxPages int) Source {
	return Source{Region: "in", URL: "https://store.example.com/en-in/pages/browse/{page}", Format: normalize.FormatIN, MaxPages: maxPages}
}

func TestCrawler_StopsOnEmptyPage(t *testing.T) {
	svc := &fakeService{pages: map[int][]psstore.Stub{
		1: stubs("p1", 2),
		2: stubs("p2", 2),
		3: nil,
		4: stubs("p4", 2),
	}}
	store := &fakeStore{}

	sum, err := newCrawler(svc, store, 4).Run(context.Background(), []Source{src(10)})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, svc.listed)
	assert.Len(t, store.batches, 2)
	assert.Equal(t, 2, sum.Pages)
	assert.Equal(t, 4, sum.Added)
}

func TestCrawler_RespectsMaxPages(t *testing.T) {
	svc := &fakeService{pages: map[int][]psstore.Stub{
		1: stubs("p1", 1), 2: stubs("p2", 1), 3: stubs("p3", 1), 4: stubs("p4", 1),
	}}

	_, err := newCrawler(svc, &fakeStore{}, 2).Run(context.Background(), []Source{src(3)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, svc.listed)
}

func TestCrawler_SkipsUnavailablePage(t *testing.T) {
	svc := &fakeService{
		pages:   map[int][]psstore.Stub{1: stubs("p1", 1), 3: stubs("p3", 1)},
		pageErr: map[int]error{2: errors.New("connection reset")},
	}
	store := &fakeStore{}

	sum, err := newCrawler(svc, store, 2).Run(context.Background(), []Source{src(3)})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, svc.listed)
	assert.Equal(t, 1, sum.FailedPages)
	assert.Len(t, store.batches, 2)
}

func TestCrawler_FiltersFreeItems(t *testing.T) {
	svc := &fakeService{pages: map[int][]psstore.Stub{1: {
		stub("paid", "Rs 499"),
		stub("free", "Free"),
		stub("empty", ""),
		stub("tr-free", "Ücretsiz"),
	}}}
	store := &fakeStore{}

	sum, err := newCrawler(svc, store, 2).Run(context.Background(), []Source{src(1)})
	require.NoError(t, err)

	require.Len(t, store.batches, 1)
	require.Len(t, store.batches[0], 1)
	assert.Equal(t, "paid", store.batches[0][0].Link)
	assert.Equal(t, 3, sum.Free)
}

func TestCrawler_PersistenceErrorDoesNotStopRun(t *testing.T) {
	svc := &fakeService{pages: map[int][]psstore.Stub{1: stubs("p1", 1), 2: stubs("p2", 1)}}
	store := &fakeStore{err: &repository.PersistenceError{Op: "write", Path: "games.json", Err: errors.New("disk full")}}

	sum, err := newCrawler(svc, store, 2).Run(context.Background(), []Source{src(2)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, svc.listed)
	assert.Equal(t, 0, sum.Added)
}

func TestCrawler_CanceledContext(t *testing.T) {
	svc := &fakeService{pages: map[int][]psstore.Stub{1: stubs("p1", 1)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCrawler(svc, &fakeStore{}, 2).Run(ctx, []Source{src(3)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnricher_PartialFailureKeepsStub(t *testing.T) {
	svc := &fakeService{detailErr: map[string]error{"b": errors.New("timeout")}}
	e := NewDetailEnricher(svc, 3, logger.Discard(), nil)

	items := e.Enrich(context.Background(), []psstore.Stub{stub("a", "Rs 1"), stub("b", "Rs 2"), stub("c", "Rs 3")},
		"", mapper.Options{Region: "in", Format: normalize.FormatIN, Vocab: normalize.RU})

	require.Len(t, items, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].Link, items[1].Link, items[2].Link})

	assert.Equal(t, "2024", items[0].ReleaseDate)
	assert.Equal(t, "2024", items[2].ReleaseDate)

	assert.Equal(t, "T b", items[1].Title)
	assert.Equal(t, "Rs 2", items[1].Price)
	assert.Equal(t, "", items[1].ReleaseDate)
	assert.Empty(t, items[1].Platforms)
}

func TestEnricher_BoundedConcurrency(t *testing.T) {
	svc := &fakeService{}
	e := NewDetailEnricher(svc, 3, logger.Discard(), nil)

	items := e.Enrich(context.Background(), stubs("x", 20), "", mapper.Options{Vocab: normalize.RU})

	assert.Len(t, items, 20)
	assert.LessOrEqual(t, svc.peak.Load(), int32(3))
	assert.Equal(t, int32(0), svc.inFlight.Load())
}
