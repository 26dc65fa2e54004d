package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pantryhub/pantry/internal/models"
)

const defaultNewsLimit = 10

type NewsService struct {
	c *Client
}

// ListPublic returns published posts. A limit <= 0 uses the default page size.
func (s *NewsService) ListPublic(ctx context.Context, skip, limit int) ([]models.NewsPublic, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	query := url.Values{
		"skip":  {strconv.Itoa(skip)},
		"limit": {strconv.Itoa(limit)},
	}

	var out []models.NewsPublic
	if err := s.c.Get(ctx, "/news/public", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NewsService) GetBySlug(ctx context.Context, slug string) (*models.NewsPublic, error) {
	var out models.NewsPublic
	if err := s.c.Get(ctx, "/news/public/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every post including drafts. Admin only.
func (s *NewsService) List(ctx context.Context) ([]models.News, error) {
	var out []models.News
	if err := s.c.Get(ctx, "/news/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NewsService) Create(ctx context.Context, in models.NewsInput) (*models.News, error) {
	var out models.News
	if err := s.c.Post(ctx, "/news/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *NewsService) Update(ctx context.Context, id int, in models.NewsInput) (*models.News, error) {
	var out models.News
	if err := s.c.Put(ctx, fmt.Sprintf("/news/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *NewsService) Delete(ctx context.Context, id int) error {
	return s.c.Delete(ctx, fmt.Sprintf("/news/%d", id), nil)
}
