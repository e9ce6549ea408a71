package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/mise/internal/cookbook"
)

const recipeColumns = `id, name, author, source, derived, created_at, updated_at`

// recipeRepository implements cookbook.Repository.
type recipeRepository struct {
	db      *sql.DB
	dialect dialect
}

func newRecipeRepository(db *sql.DB, d dialect) *recipeRepository {
	return &recipeRepository{db: db, dialect: d}
}

var _ cookbook.Repository = (*recipeRepository)(nil)

func scanRecipe(scanner interface{ Scan(...any) error }) (*RecipeModel, error) {
	var m RecipeModel
	err := scanner.Scan(&m.ID, &m.Name, &m.Author, &m.Source, &m.Derived, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

// Save upserts by id. Zero timestamps are filled in; an existing row keeps
// its created_at.
func (r *recipeRepository) Save(ctx context.Context, recipe *cookbook.StoredRecipe) error {
	if recipe.ID == "" {
		return errors.New("recipe id required")
	}
	now := time.Now().UTC()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now

	m := toRecipeModel(recipe)
	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`
		INSERT INTO recipes (`+recipeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			author = excluded.author,
			source = excluded.source,
			derived = excluded.derived,
			updated_at = excluded.updated_at`),
		m.ID, m.Name, m.Author, m.Source, m.Derived, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", recipe.ID, err)
	}
	return nil
}

func (r *recipeRepository) FindByID(ctx context.Context, id string) (*cookbook.StoredRecipe, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`), id)
	m, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, cookbook.ErrRecipeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe %s: %w", id, err)
	}
	return m.toStored(), nil
}

func (r *recipeRepository) List(ctx context.Context) ([]*cookbook.StoredRecipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*cookbook.StoredRecipe
	for rows.Next() {
		m, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out = append(out, m.toStored())
	}
	return out, rows.Err()
}

func (r *recipeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM recipes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, cookbook.ErrRecipeNotFound)
	}
	return nil
}
