package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpad/backend/internal/dto"
)

func TestItemService_Create(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	owner := createUser(t, users, "owner@example.com", "strongpass")

	item, err := items.Create(owner.ID, &dto.CreateItemRequest{
		Title:       "  Plasma Lamp  ",
		Description: strPtr("decorative"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, "Plasma Lamp", item.Title, "title is stored trimmed")
	assert.Equal(t, "decorative", *item.Description)
	assert.Equal(t, owner.ID, item.OwnerID)
}

func TestItemService_Create_Validation(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	owner := createUser(t, users, "owner@example.com", "strongpass")

	_, err := items.Create(owner.ID, &dto.CreateItemRequest{Title: ""})
	require.Error(t, err)

	_, err = items.Create(owner.ID, &dto.CreateItemRequest{Title: "   "})
	require.Error(t, err)

	_, err = items.Create(owner.ID, &dto.CreateItemRequest{Title: strings.Repeat("t", 256)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 255")

	_, err = items.Create(owner.ID, &dto.CreateItemRequest{
		Title:       "ok",
		Description: strPtr(strings.Repeat("d", 256)),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 255")
}

func TestItemService_Create_OwnerMustExist(t *testing.T) {
	items := NewItemService(newTestDB(t))

	_, err := items.Create(uuid.New(), &dto.CreateItemRequest{Title: "orphan"})
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestItemService_Get(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	owner := createUser(t, users, "owner@example.com", "strongpass")

	created, err := items.Create(owner.ID, &dto.CreateItemRequest{Title: "thing"})
	require.NoError(t, err)

	got, err := items.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "thing", got.Title)

	_, err = items.Get(uuid.New())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemService_List(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	owner := createUser(t, users, "owner@example.com", "strongpass")

	for _, spec := range []struct{ title, desc string }{
		{"Brass Compass", "navigation aid"},
		{"Star Chart", "celestial navigation"},
		{"Tea Kettle", "galley equipment"},
	} {
		_, err := items.Create(owner.ID, &dto.CreateItemRequest{Title: spec.title, Description: strPtr(spec.desc)})
		require.NoError(t, err)
	}

	// Search matches title or description, case-insensitively.
	got, count, err := items.List(ListParams{Search: "NAVIGATION", SortBy: "title"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.Len(t, got, 2)
	assert.Equal(t, "Brass Compass", got[0].Title)
	assert.Equal(t, "Star Chart", got[1].Title)

	got, count, err = items.List(ListParams{SortBy: "title", SortOrder: "desc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Equal(t, "Tea Kettle", got[0].Title)

	// Unknown sort columns fall back to id.
	got, _, err = items.List(ListParams{SortBy: "owner_id; drop table items"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, count, err = items.List(ListParams{Skip: 2, Limit: 2, SortBy: "title"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Len(t, got, 1)
}

func TestItemService_Count(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	owner := createUser(t, users, "owner@example.com", "strongpass")

	_, err := items.Create(owner.ID, &dto.CreateItemRequest{Title: "alpha"})
	require.NoError(t, err)
	_, err = items.Create(owner.ID, &dto.CreateItemRequest{Title: "beta"})
	require.NoError(t, err)

	total, err := items.Count("")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	total, err = items.Count("alp")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestItemService_Update(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	owner := createUser(t, users, "owner@example.com", "strongpass")

	created, err := items.Create(owner.ID, &dto.CreateItemRequest{
		Title:       "original",
		Description: strPtr("keep me"),
	})
	require.NoError(t, err)

	// Partial update: only the supplied field changes.
	updated, err := items.Update(created.ID, &dto.UpdateItemRequest{Title: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "keep me", *updated.Description)

	updated, err = items.Update(created.ID, &dto.UpdateItemRequest{Description: strPtr("replaced")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "replaced", *updated.Description)

	// An empty patch is a no-op.
	updated, err = items.Update(created.ID, &dto.UpdateItemRequest{})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	_, err = items.Update(created.ID, &dto.UpdateItemRequest{Title: strPtr("  ")})
	require.Error(t, err)

	_, err = items.Update(uuid.New(), &dto.UpdateItemRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemService_Delete(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	owner := createUser(t, users, "owner@example.com", "strongpass")

	created, err := items.Create(owner.ID, &dto.CreateItemRequest{Title: "doomed"})
	require.NoError(t, err)

	require.NoError(t, items.Delete(created.ID))
	_, err = items.Get(created.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	assert.ErrorIs(t, items.Delete(created.ID), ErrItemNotFound)
}

func TestItemService_CountByOwner(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	items := NewItemService(db)
	alice := createUser(t, users, "alice@example.com", "strongpass")
	bob := createUser(t, users, "bob@example.com", "strongpass")

	for i := 0; i < 3; i++ {
		_, err := items.Create(alice.ID, &dto.CreateItemRequest{Title: "alice item"})
		require.NoError(t, err)
	}
	_, err := items.Create(bob.ID, &dto.CreateItemRequest{Title: "bob item"})
	require.NoError(t, err)

	count, err := items.CountByOwner(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = items.CountByOwner(uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
