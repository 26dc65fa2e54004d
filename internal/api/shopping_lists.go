package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pantryhub/pantry/internal/models"
)

type ShoppingListsService struct {
	c *Client
}

func (s *ShoppingListsService) List(ctx context.Context) ([]models.ShoppingList, error) {
	var out []models.ShoppingList
	if err := s.c.Get(ctx, "/shopping-lists/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ShoppingListsService) Get(ctx context.Context, id int) (*models.ShoppingList, error) {
	var out models.ShoppingList
	if err := s.c.Get(ctx, fmt.Sprintf("/shopping-lists/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ShoppingListsService) Create(ctx context.Context, in models.ShoppingListInput) (*models.ShoppingList, error) {
	var out models.ShoppingList
	if err := s.c.Post(ctx, "/shopping-lists/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ShoppingListsService) Delete(ctx context.Context, id int) error {
	return s.c.Delete(ctx, fmt.Sprintf("/shopping-lists/%d", id), nil)
}

func (s *ShoppingListsService) AddItem(ctx context.Context, listID int, item models.ShoppingItemInput) (*models.ShoppingItem, error) {
	var out models.ShoppingItem
	if err := s.c.Post(ctx, fmt.Sprintf("/shopping-lists/%d/items", listID), item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem toggles the purchased flag. The flag travels as a query
// parameter and the request has no body.
func (s *ShoppingListsService) UpdateItem(ctx context.Context, itemID int, purchased bool) (*models.ShoppingItem, error) {
	query := url.Values{"is_purchased": {strconv.FormatBool(purchased)}}

	var out models.ShoppingItem
	if err := s.c.Do(ctx, http.MethodPut, fmt.Sprintf("/shopping-lists/items/%d", itemID), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ShoppingListsService) DeleteItem(ctx context.Context, itemID int) error {
	return s.c.Delete(ctx, fmt.Sprintf("/shopping-lists/items/%d", itemID), nil)
}
