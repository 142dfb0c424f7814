package graphql

import (
	"context"
	"errors"

	"github.com/google/uuid"
	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/stackpad/backend/internal/models"
	"github.com/stackpad/backend/internal/services"
)

type Resolver struct {
	users *services.UserService
	items *services.ItemService
}

func NewResolver(users *services.UserService, items *services.ItemService) *Resolver {
	return &Resolver{users: users, items: items}
}

type ItemsArgs struct {
	Skip      int32
	Limit     int32
	Search    *string
	SortBy    string
	SortOrder string
}

func (r *Resolver) Items(ctx context.Context, args ItemsArgs) ([]*ItemResolver, error) {
	items, _, err := r.items.List(services.ListParams{
		Skip:      int(args.Skip),
		Limit:     int(args.Limit),
		Search:    stringValue(args.Search),
		SortBy:    args.SortBy,
		SortOrder: args.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	resolvers := make([]*ItemResolver, len(items))
	for i := range items {
		resolvers[i] = &ItemResolver{item: items[i]}
	}
	return resolvers, nil
}

func (r *Resolver) ItemsCount(ctx context.Context, args struct{ Search *string }) (int32, error) {
	count, err := r.items.Count(stringValue(args.Search))
	if err != nil {
		return 0, err
	}
	return int32(count), nil
}

func (r *Resolver) Item(ctx context.Context, args struct{ ID graphqlgo.ID }) (*ItemResolver, error) {
	id, err := uuid.Parse(string(args.ID))
	if err != nil {
		return nil, nil
	}

	item, err := r.items.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ItemResolver{item: *item}, nil
}

func (r *Resolver) Users(ctx context.Context, args struct{ Skip, Limit int32 }) ([]*UserResolver, error) {
	users, _, err := r.users.List(services.ListParams{
		Skip:  int(args.Skip),
		Limit: int(args.Limit),
	})
	if err != nil {
		return nil, err
	}

	resolvers := make([]*UserResolver, len(users))
	for i := range users {
		resolvers[i] = &UserResolver{user: users[i]}
	}
	return resolvers, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID graphqlgo.ID }) (*UserResolver, error) {
	id, err := uuid.Parse(string(args.ID))
	if err != nil {
		return nil, nil
	}

	user, err := r.users.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &UserResolver{user: *user}, nil
}

func (r *Resolver) Me(ctx context.Context) (*UserResolver, error) {
	user := CurrentUserFrom(ctx)
	if user == nil {
		return nil, nil
	}
	return &UserResolver{user: *user}, nil
}

type ItemResolver struct {
	item models.Item
}

func (r *ItemResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(r.item.ID.String())
}

func (r *ItemResolver) Title() string {
	return r.item.Title
}

func (r *ItemResolver) Description() *string {
	return r.item.Description
}

func (r *ItemResolver) OwnerID() graphqlgo.ID {
	return graphqlgo.ID(r.item.OwnerID.String())
}

// Owner goes through the request's dataloader so sibling items resolve
// their owners with a single query.
func (r *ItemResolver) Owner(ctx context.Context) (*UserResolver, error) {
	loaders := LoadersFrom(ctx)
	if loaders == nil {
		return nil, errors.New("no loaders in request context")
	}

	user, err := loaders.Users.Load(ctx, r.item.OwnerID)()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &UserResolver{user: *user}, nil
}

type UserResolver struct {
	user models.User
}

func (r *UserResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(r.user.ID.String())
}

func (r *UserResolver) Email() string {
	return r.user.Email
}

func (r *UserResolver) Username() *string {
	return r.user.Username
}

func (r *UserResolver) FullName() *string {
	return r.user.FullName
}

func (r *UserResolver) IsActive() bool {
	return r.user.IsActive
}

func (r *UserResolver) IsSuperuser() bool {
	return r.user.IsSuperuser
}

func (r *UserResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: r.user.CreatedAt}
}

func (r *UserResolver) LastLogin() graphqlgo.Time {
	return graphqlgo.Time{Time: r.user.LastLogin}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
