package cookbook

import (
	"context"
	"errors"
	"time"
)

// ErrRecipeNotFound is returned by repositories for unknown ids.
var ErrRecipeNotFound = errors.New("recipe not found")

// StoredRecipe is a saved recipe: its source document plus the derived JSON.
type StoredRecipe struct {
	ID        string
	Name      string
	Author    string
	Source    []byte
	Derived   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository persists recipes by id.
type Repository interface {
	// Save inserts or replaces the recipe with the same id. CreatedAt of an
	// existing row is preserved.
	Save(ctx context.Context, r *StoredRecipe) error
	FindByID(ctx context.Context, id string) (*StoredRecipe, error)
	// List returns recipes ordered by name, then id.
	List(ctx context.Context) ([]*StoredRecipe, error)
	Delete(ctx context.Context, id string) error
}
