package presentation

import (
	"fmt"
	"time"

	"github.com/zjrosen/mise/internal/recipe"
	technique "github.com/zjrosen/mise/internal/technique/domain"
)

// RecipeDTO is a derived recipe ready for output.
type RecipeDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Author      string          `json:"author,omitempty"`
	Description string          `json:"description,omitempty"`
	Ingredients []EntityDTO     `json:"ingredients"`
	Equipment   []EntityDTO     `json:"equipment"`
	Products    []EntityDTO     `json:"products"`
	Steps       []StepDTO       `json:"steps"`
	Warnings    []string        `json:"warnings,omitempty"`
	Unresolved  []UnresolvedDTO `json:"unresolved,omitempty"`
}

// EntityDTO is an ingredient, piece of equipment or product.
type EntityDTO struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Amount string   `json:"amount,omitempty"` // e.g. "200 grams"
	Tags   []string `json:"tags,omitempty"`
}

// StepDTO is one rendered instruction. Error is set instead of Text when
// rendering failed.
type StepDTO struct {
	Number    int    `json:"number"`
	Text      string `json:"text,omitempty"`
	Technique string `json:"technique,omitempty"`
	Error     string `json:"error,omitempty"`
}

// UnresolvedDTO names a reference no entity matched.
type UnresolvedDTO struct {
	Step  int    `json:"step"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// TechniqueDTO is a catalog entry.
type TechniqueDTO struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels"`
	Parameters  []string `json:"parameters,omitempty"`
	Source      string   `json:"source"`
}

// StoredRecipeDTO summarizes a saved recipe.
type StoredRecipeDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Author    string    `json:"author,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromRecipe renders every instruction of r. It does not derive; callers
// run r.Update first.
func FromRecipe(r *recipe.Recipe) RecipeDTO {
	dto := RecipeDTO{
		ID:          r.ID(),
		Name:        r.Name(),
		Author:      r.Author(),
		Description: r.Description(),
		Ingredients: fromEntities(r.Ingredients()),
		Equipment:   fromEntities(r.Equipment()),
		Products:    fromEntities(r.Products()),
		Steps:       make([]StepDTO, 0),
	}

	for i, instr := range r.Instructions() {
		step := StepDTO{Number: i + 1}
		if t := instr.Technique(); t != nil {
			step.Technique = t.Key()
		}
		text, err := instr.Render()
		if err != nil {
			step.Error = err.Error()
		} else {
			step.Text = text
		}
		dto.Steps = append(dto.Steps, step)
	}

	last := r.LastDerivation()
	for _, w := range last.Warnings {
		dto.Warnings = append(dto.Warnings, w.String())
	}
	for _, u := range last.Unresolved {
		dto.Unresolved = append(dto.Unresolved, UnresolvedDTO{Step: u.Index + 1, Field: u.Field, Value: fmt.Sprint(u.Value)})
	}
	return dto
}

func fromEntities(entities []*recipe.Entity) []EntityDTO {
	out := make([]EntityDTO, len(entities))
	for i, e := range entities {
		out[i] = EntityDTO{Key: e.Key, Name: e.Name, Amount: e.Amount(), Tags: e.Tags}
	}
	return out
}

// FromTechnique converts a catalog entry.
func FromTechnique(t *technique.Technique) TechniqueDTO {
	labels := t.Labels()
	if labels == nil {
		labels = []string{}
	}
	return TechniqueDTO{
		Key:         t.Key(),
		Name:        t.Name(),
		Description: t.Description(),
		Labels:      labels,
		Parameters:  t.Parameters(),
		Source:      t.Source().String(),
	}
}

// FromTechniques converts a slice of catalog entries.
func FromTechniques(ts []*technique.Technique) []TechniqueDTO {
	dtos := make([]TechniqueDTO, len(ts))
	for i, t := range ts {
		dtos[i] = FromTechnique(t)
	}
	return dtos
}
