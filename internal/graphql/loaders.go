package graphql

import (
	"context"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/stackpad/backend/internal/models"
	"github.com/stackpad/backend/internal/services"
)

type contextKey int

const (
	loadersKey contextKey = iota
	currentUserKey
)

// Loaders batches the per-request relationship lookups. A fresh set is
// built for every request so the loader cache never outlives it.
type Loaders struct {
	Users *dataloader.Loader[uuid.UUID, *models.User]
}

func NewLoaders(users *services.UserService) *Loaders {
	return &Loaders{
		Users: dataloader.NewBatchedLoader(func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[*models.User] {
			results := make([]*dataloader.Result[*models.User], len(keys))

			found, err := users.GetByIDs(keys)
			if err != nil {
				for i := range results {
					results[i] = &dataloader.Result[*models.User]{Error: err}
				}
				return results
			}

			byID := make(map[uuid.UUID]*models.User, len(found))
			for i := range found {
				byID[found[i].ID] = &found[i]
			}
			// One result per key, in key order; missing ids yield nil.
			for i, key := range keys {
				results[i] = &dataloader.Result[*models.User]{Data: byID[key]}
			}
			return results
		}),
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

func LoadersFrom(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

func WithCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

func CurrentUserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(currentUserKey).(*models.User)
	return user
}
