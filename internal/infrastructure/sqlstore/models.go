package sqlstore

import (
	"time"

	"github.com/zjrosen/mise/internal/cookbook"
)

// RecipeModel is a row of the recipes table. Times are Unix seconds.
type RecipeModel struct {
	ID        string
	Name      string
	Author    string
	Source    []byte
	Derived   []byte
	CreatedAt int64
	UpdatedAt int64
}

func toRecipeModel(r *cookbook.StoredRecipe) *RecipeModel {
	return &RecipeModel{
		ID:        r.ID,
		Name:      r.Name,
		Author:    r.Author,
		Source:    r.Source,
		Derived:   r.Derived,
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: r.UpdatedAt.Unix(),
	}
}

func (m *RecipeModel) toStored() *cookbook.StoredRecipe {
	return &cookbook.StoredRecipe{
		ID:        m.ID,
		Name:      m.Name,
		Author:    m.Author,
		Source:    m.Source,
		Derived:   m.Derived,
		CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(m.UpdatedAt, 0).UTC(),
	}
}
