package repository

import (
	"context"
	"testing"

	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string `gorm:"primaryKey"`
	Name  string
	Kind  string
}

func setupStore(t *testing.T) Repository[widget] {
	t.Helper()
	conn := dbtest.Open(t)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return ProvideStore[widget](conn)
}

func TestStoreFindByIDMissingReturnsNil(t *testing.T) {
	s := setupStore(t)
	got, err := s.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreCreateSaveFind(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	require.NoError(t, s.Create(ctx, &widget{ID: "w1", Name: "b", Kind: "x"}))
	require.NoError(t, s.Create(ctx, &widget{ID: "w2", Name: "a", Kind: "x"}))
	require.NoError(t, s.Create(ctx, &widget{ID: "w3", Name: "c", Kind: "y"}))

	require.NoError(t, s.Save(ctx, &widget{ID: "w3", Name: "c2", Kind: "x"}))

	rows, err := s.Find(ctx, &widget{Kind: "x"}, "name asc")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Name)
	assert.Equal(t, "c2", rows[2].Name)

	count, err := s.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
