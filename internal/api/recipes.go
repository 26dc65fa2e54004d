package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pantryhub/pantry/internal/models"
)

type RecipesService struct {
	c *Client
}

// List returns recipes; healthyOnly is always sent so the backend never
// falls back to its own default.
func (s *RecipesService) List(ctx context.Context, healthyOnly bool) ([]models.Recipe, error) {
	query := url.Values{"healthy_only": {strconv.FormatBool(healthyOnly)}}

	var out []models.Recipe
	if err := s.c.Get(ctx, "/recipes/", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RecipesService) Get(ctx context.Context, id int) (*models.Recipe, error) {
	var out models.Recipe
	if err := s.c.Get(ctx, fmt.Sprintf("/recipes/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RecipesService) Create(ctx context.Context, in models.RecipeInput) (*models.Recipe, error) {
	var out models.Recipe
	if err := s.c.Post(ctx, "/recipes/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RecipesService) Delete(ctx context.Context, id int) error {
	return s.c.Delete(ctx, fmt.Sprintf("/recipes/%d", id), nil)
}

// Match returns recipes that can be cooked from the current pantry
func (s *RecipesService) Match(ctx context.Context) ([]models.Recipe, error) {
	var out []models.Recipe
	if err := s.c.Get(ctx, "/recipes/match/ingredients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SeedSample asks the backend to insert its sample recipes. The response
// shape is backend-defined and returned as-is.
func (s *RecipesService) SeedSample(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := s.c.Post(ctx, "/recipes/seed-sample", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Generate asks the backend to compose a new recipe from the pantry contents
func (s *RecipesService) Generate(ctx context.Context) (*models.Recipe, error) {
	var out models.Recipe
	if err := s.c.Post(ctx, "/recipes/generate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
