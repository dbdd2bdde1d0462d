package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/iliyamo/tiered-catalog/internal/media"
	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/queue"
	"github.com/iliyamo/tiered-catalog/internal/repository"
)

type fakeUploader struct {
	mu    sync.Mutex
	calls []media.Kind
	fail  map[media.Kind]bool
}

func (f *fakeUploader) Upload(_ context.Context, kind media.Kind, data []byte) (media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind)
	if f.fail[kind] {
		return media.Asset{}, errors.New("media host rejected " + string(kind))
	}
	url := "https://cdn.test/" + string(kind) + "/" + string(data)
	return media.Asset{Kind: kind, URL: url, PublicID: string(data)}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.CatalogEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// countingMovies counts every store call.
type countingMovies struct {
	MovieStore
	calls atomic.Int32
}

func (c *countingMovies) ListByTiers(ctx context.Context, tiers []string, o repository.Order, limit int) ([]model.Movie, error) {
	c.calls.Add(1)
	return c.MovieStore.ListByTiers(ctx, tiers, o, limit)
}

func (c *countingMovies) SampleByTiers(ctx context.Context, tiers []string, n int) ([]model.Movie, error) {
	c.calls.Add(1)
	return c.MovieStore.SampleByTiers(ctx, tiers, n)
}

func (c *countingMovies) ListAll(ctx context.Context) ([]model.Movie, error) {
	c.calls.Add(1)
	return c.MovieStore.ListAll(ctx)
}

func (c *countingMovies) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	c.calls.Add(1)
	return c.MovieStore.GetByID(ctx, id)
}

func (c *countingMovies) Create(ctx context.Context, m *model.Movie) error {
	c.calls.Add(1)
	return c.MovieStore.Create(ctx, m)
}

func (c *countingMovies) Replace(ctx context.Context, m *model.Movie) error {
	c.calls.Add(1)
	return c.MovieStore.Replace(ctx, m)
}

func (c *countingMovies) Delete(ctx context.Context, id string) error {
	c.calls.Add(1)
	return c.MovieStore.Delete(ctx, id)
}
