package api

import (
	"context"
	"net/url"

	"github.com/pantryhub/pantry/internal/models"
)

type PagesService struct {
	c *Client
}

// GetPublic returns the public view of a static page such as "about"
func (s *PagesService) GetPublic(ctx context.Context, key string) (*models.PagePublic, error) {
	var out models.PagePublic
	if err := s.c.Get(ctx, "/pages/public/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PagesService) List(ctx context.Context) ([]models.Page, error) {
	var out []models.Page
	if err := s.c.Get(ctx, "/pages/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PagesService) Create(ctx context.Context, in models.PageInput) (*models.Page, error) {
	var out models.Page
	if err := s.c.Post(ctx, "/pages/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PagesService) Update(ctx context.Context, key string, in models.PageInput) (*models.Page, error) {
	in.PageKey = ""

	var out models.Page
	if err := s.c.Put(ctx, "/pages/"+url.PathEscape(key), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PagesService) Delete(ctx context.Context, key string) error {
	return s.c.Delete(ctx, "/pages/"+url.PathEscape(key), nil)
}
