// Package users управление учётными записями из админки.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/vpn-store/internal/lib/apperr"
	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

// Repository хранилище пользователей.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Service операции администратора над пользователями.
type Service struct {
	log  *slog.Logger
	repo Repository
}

// NewService создаёт Service.
func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

// List возвращает страницу пользователей с поиском по имени и email.
func (s *Service) List(ctx context.Context, search string, p models.Pagination) (*models.UserPage, error) {
	const op = "users.List"

	p = p.Normalize()
	list, total, err := s.repo.ListUsers(ctx, models.UserFilter{
		Search: strings.TrimSpace(search),
		Limit:  p.Limit,
		Offset: p.Offset(),
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	if list == nil {
		list = []*models.User{}
	}
	return &models.UserPage{
		Users:      list,
		Total:      total,
		Page:       p.Page,
		TotalPages: p.TotalPages(total),
	}, nil
}

// Get возвращает пользователя по id.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "users.Get"

	user, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return user, nil
}

// Update меняет имя, роль или активность пользователя.
// Администратор не может понизить или заблокировать сам себя.
func (s *Service) Update(ctx context.Context, actorID, id string, upd models.UserUpdate) (*models.User, error) {
	const op = "users.Update"

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		upd.Name = &name
	}
	if upd.Role != nil && *upd.Role != models.RoleUser && *upd.Role != models.RoleAdmin {
		return nil, apperr.Validation("role must be user or admin")
	}
	if actorID == id {
		if upd.Role != nil && *upd.Role != models.RoleAdmin {
			return nil, apperr.PreconditionFailed("cannot remove your own admin role")
		}
		if upd.IsActive != nil && !*upd.IsActive {
			return nil, apperr.PreconditionFailed("cannot deactivate your own account")
		}
	}

	user, err := s.repo.UpdateUser(ctx, id, upd)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("user updated",
		slog.String("op", op),
		slog.String("user_id", id),
		slog.String("admin_id", actorID),
	)
	return user, nil
}

// Delete удаляет покупателя. Учётные записи администраторов не удаляются.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	const op = "users.Delete"

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return apperr.PreconditionFailed("admin accounts cannot be deleted")
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info("user deleted",
		slog.String("op", op),
		slog.String("user_id", id),
		slog.String("admin_id", actorID),
	)
	return nil
}
