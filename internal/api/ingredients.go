package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pantryhub/pantry/internal/models"
)

// DefaultExpiringDays is the window used by ExpiringSoon when days <= 0
const DefaultExpiringDays = 7

type IngredientsService struct {
	c *Client
}

// List returns all ingredients, optionally filtered by storage location
func (s *IngredientsService) List(ctx context.Context, location string) ([]models.Ingredient, error) {
	query := url.Values{}
	if location != "" {
		query.Set("location", location)
	}

	var out []models.Ingredient
	if err := s.c.Get(ctx, "/ingredients/", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *IngredientsService) Get(ctx context.Context, id int) (*models.Ingredient, error) {
	var out models.Ingredient
	if err := s.c.Get(ctx, fmt.Sprintf("/ingredients/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *IngredientsService) Create(ctx context.Context, in models.IngredientInput) (*models.Ingredient, error) {
	var out models.Ingredient
	if err := s.c.Post(ctx, "/ingredients/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *IngredientsService) Update(ctx context.Context, id int, in models.IngredientInput) (*models.Ingredient, error) {
	var out models.Ingredient
	if err := s.c.Put(ctx, fmt.Sprintf("/ingredients/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *IngredientsService) Delete(ctx context.Context, id int) error {
	return s.c.Delete(ctx, fmt.Sprintf("/ingredients/%d", id), nil)
}

// ExpiringSoon returns ingredients whose expiry date falls within the next days
func (s *IngredientsService) ExpiringSoon(ctx context.Context, days int) ([]models.Ingredient, error) {
	if days <= 0 {
		days = DefaultExpiringDays
	}
	query := url.Values{"days": {strconv.Itoa(days)}}

	var out []models.Ingredient
	if err := s.c.Get(ctx, "/ingredients/expiring/soon", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}
