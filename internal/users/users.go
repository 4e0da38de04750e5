// Package users 用户管理（管理员）与修改本人密码
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
)

// Store 用户接口（client.Client 实现）
type Store interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	RegisterUser(ctx context.Context, u domain.NewUser) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, id int64, newPassword string) error
	ChangePassword(ctx context.Context, newPassword string) error
}

type Service struct {
	store  Store
	actor  domain.Actor
	logger *zap.Logger
}

func NewService(store Store, actor domain.Actor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, actor: actor, logger: logger}
}

func (s *Service) requireAdmin() error {
	if !s.actor.IsAdmin() {
		return fmt.Errorf("%w: only administrators can manage users", ErrPermissionDenied)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// Create 角色为空时默认 user
func (s *Service) Create(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" || u.Password == "" {
		return nil, fmt.Errorf("%w: Nombre de usuario y contraseña son requeridos.", ErrValidation)
	}
	switch u.Role {
	case "":
		u.Role = domain.RoleUser
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, u.Role)
	}

	created, err := s.store.RegisterUser(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("username", s.actor.Username),
		zap.String("new_username", created.Username),
		zap.String("role", u.Role),
	)
	return created, nil
}

// Delete 不允许删除当前登录的账号
func (s *Service) Delete(ctx context.Context, id int64) (*domain.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	target, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Username == s.actor.Username {
		return nil, fmt.Errorf("%w: No puedes eliminar tu propia cuenta.", ErrValidation)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("User deleted", zap.String("username", s.actor.Username), zap.Int64("user_id", id))
	return target, nil
}

// ResetPassword 设置临时密码
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if strings.TrimSpace(password) == "" || len(password) < domain.MinTempPasswordLength {
		return fmt.Errorf("%w: la nueva contraseña no puede estar vacía y debe tener al menos %d caracteres",
			ErrValidation, domain.MinTempPasswordLength)
	}
	if err := s.store.ResetPassword(ctx, id, password); err != nil {
		return err
	}
	s.logger.Info("User password reset", zap.String("username", s.actor.Username), zap.Int64("user_id", id))
	return nil
}

// ChangeOwnPassword 任何登录用户可用
func (s *Service) ChangeOwnPassword(ctx context.Context, password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("%w: Las contraseñas no coinciden.", ErrValidation)
	}
	if len(password) < domain.MinPasswordLength {
		return fmt.Errorf("%w: La contraseña debe tener al menos %d caracteres.", ErrValidation, domain.MinPasswordLength)
	}
	if err := s.store.ChangePassword(ctx, password); err != nil {
		return err
	}
	s.logger.Info("Password changed", zap.String("username", s.actor.Username))
	return nil
}

func (s *Service) find(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid user id %d", ErrValidation, id)
	}
	list, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: user %d not found", ErrValidation, id)
}
