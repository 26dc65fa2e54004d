package api

import (
	"context"
	"fmt"

	"github.com/pantryhub/pantry/internal/models"
)

// AdminService groups the user management endpoints
type AdminService struct {
	c *Client
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	var out []models.AdminUser
	if err := s.c.Get(ctx, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AdminService) Stats(ctx context.Context) (*models.UserStats, error) {
	var out models.UserStats
	if err := s.c.Get(ctx, "/admin/users/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) GetUser(ctx context.Context, id int) (*models.AdminUser, error) {
	var out models.AdminUser
	if err := s.c.Get(ctx, fmt.Sprintf("/admin/users/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, id int, patch models.AdminUserUpdate) (*models.AdminUser, error) {
	var out models.AdminUser
	if err := s.c.Patch(ctx, fmt.Sprintf("/admin/users/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id int) error {
	return s.c.Delete(ctx, fmt.Sprintf("/admin/users/%d", id), nil)
}
