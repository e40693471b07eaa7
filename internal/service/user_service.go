package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-user-service/internal/model"
	"go-user-service/pkg/apierror"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByName(ctx context.Context, name string) ([]model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
	Search(ctx context.Context, term string, sortBy string, orderBy string, page int64, pageSize int64) ([]model.User, int64, error)
}

type UserService struct {
	users userStore
}

func NewUserService(users userStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.PublicUser, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	role := strings.ToLower(strings.TrimSpace(req.Role))

	if name == "" || email == "" || req.Password == "" {
		return model.PublicUser{}, apierror.BadRequest("name, email and password are required")
	}
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return model.PublicUser{}, apierror.New("BAD_REQUEST", "invalid role", role, 400)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.PublicUser{}, err
	}
	if exists {
		return model.PublicUser{}, apierror.Conflict("user email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return model.PublicUser{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Avatar:       req.Avatar,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		ModifiedAt:   now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// GetByIDOrName resolves users by exactly one of id or name. An ID
// lookup yields at most one user; a name lookup may yield several.
func (s *UserService) GetByIDOrName(ctx context.Context, id string, name string) ([]model.PublicUser, error) {
	switch {
	case id != "":
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []model.PublicUser{user.Public()}, nil
	case name != "":
		users, err := s.users.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return publicViews(users), nil
	default:
		return nil, apierror.BadRequest("please provide either an id or a name")
	}
}

func (s *UserService) Search(ctx context.Context, req model.SearchRequest) ([]model.PublicUser, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 10
	}

	users, total, err := s.users.Search(ctx, req.SearchTerm, req.SortBy, req.OrderBy, req.Page, req.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return publicViews(users), total, nil
}

func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(req.Email); email != "" && !strings.EqualFold(email, user.Email) {
		exists, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return model.PublicUser{}, err
		}
		if exists {
			return model.PublicUser{}, apierror.Conflict("user email already exists")
		}
		user.Email = email
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if role := strings.ToLower(strings.TrimSpace(req.Role)); role != "" {
		if role != model.RoleAdmin && role != model.RoleUser {
			return model.PublicUser{}, apierror.New("BAD_REQUEST", "invalid role", role, 400)
		}
		user.Role = role
	}
	user.ModifiedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// Delete soft-deletes the user and returns the removed view.
func (s *UserService) Delete(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	if newPassword == "" {
		return apierror.BadRequest("new password is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apierror.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func publicViews(users []model.User) []model.PublicUser {
	views := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		views = append(views, u.Public())
	}
	return views
}
