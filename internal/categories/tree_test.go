package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shavkat07/Moneta/internal/domain"
)

func parent(id int64) *int64 { return &id }

func TestBuildTree(t *testing.T) {
	flat := []domain.Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Groceries", ParentID: parent(1)},
		{ID: 3, Name: "Restaurants", ParentID: parent(1)},
		{ID: 4, Name: "Transport"},
		{ID: 5, Name: "Taxi", ParentID: parent(4)},
		{ID: 6, Name: "Coffee", ParentID: parent(3)},
	}

	roots := BuildTree(flat)
	require.Len(t, roots, 2)

	food := roots[0]
	assert.Equal(t, "Food", food.Name)
	require.Len(t, food.Children, 2)
	assert.Equal(t, "Groceries", food.Children[0].Name)

	restaurants := food.Children[1]
	require.Len(t, restaurants.Children, 1)
	assert.Equal(t, "Coffee", restaurants.Children[0].Name)

	transport := roots[1]
	require.Len(t, transport.Children, 1)
	assert.Equal(t, "Taxi", transport.Children[0].Name)
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	flat := []domain.Category{
		{ID: 1, Name: "Food"},
		{ID: 9, Name: "Orphan", ParentID: parent(404)},
	}

	roots := BuildTree(flat)
	require.Len(t, roots, 2)
	assert.Equal(t, "Orphan", roots[1].Name)
}

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
}

func TestBuildTreeLeavesHaveEmptyChildren(t *testing.T) {
	roots := BuildTree([]domain.Category{{ID: 1, Name: "Misc"}})
	require.Len(t, roots, 1)
	assert.NotNil(t, roots[0].Children, "children marshals as [] not null")
}
