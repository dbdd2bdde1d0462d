package service

import (
	"context"

	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/queue"
	"github.com/iliyamo/tiered-catalog/internal/repository"
)

// MovieStore is satisfied by repository.MongoMovieRepo and repository.MovieRepo.
type MovieStore interface {
	ListByTiers(ctx context.Context, tiers []string, order repository.Order, limit int) ([]model.Movie, error)
	SampleByTiers(ctx context.Context, tiers []string, n int) ([]model.Movie, error)
	ListAll(ctx context.Context) ([]model.Movie, error)
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
	Replace(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id string) error
}

// UserStore is satisfied by repository.MongoUserRepo and repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	List(ctx context.Context) ([]model.User, error)
}

// GenreStore is satisfied by repository.MongoGenreRepo and repository.GenreRepo.
type GenreStore interface {
	Create(ctx context.Context, g *model.Genre) error
	GetByID(ctx context.Context, id string) (*model.Genre, error)
	List(ctx context.Context) ([]model.Genre, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher receives catalog events after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.CatalogEvent) error
}
