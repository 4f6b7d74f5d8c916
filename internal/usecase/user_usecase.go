package usecase

import (
	"context"
	"net/mail"
	"strings"

	"github.com/techmart/backend/internal/auth"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

const minPasswordLen = 8

// UserUseCase реализует регистрацию, вход и администрирование пользователей.
type UserUseCase struct {
	userRepo UserRepository
	tokens   *auth.TokenManager
	logger   logger.Logger
}

func NewUserUC(userRepo UserRepository, tokens *auth.TokenManager, logger logger.Logger) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Signup создаёт пользователя и сразу выдаёт токен.
// Повторная регистрация на занятый email возвращает e.ErrEmailTaken.
func (u *UserUseCase) Signup(ctx context.Context, req *SignupReq) (*AuthRes, error) {
	const op = "UserUseCase.Signup"

	if err := validateCredentials(req.Name, req.Email, req.Password); err != nil {
		return nil, e.Wrap(op, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user, err := u.userRepo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return u.authRes(user, op)
}

// Signin проверяет пару email/пароль. Неверный email и неверный пароль
// неразличимы для клиента: оба дают e.ErrUnauthorized.
func (u *UserUseCase) Signin(ctx context.Context, req *SigninReq) (*AuthRes, error) {
	const op = "UserUseCase.Signin"

	user, err := u.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !ok {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	return u.authRes(user, op)
}

// UpdateProfile меняет имя/email и, если передан, пароль. Возвращает свежий
// токен, потому что email входит в claims.
func (u *UserUseCase) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileReq) (*AuthRes, error) {
	const op = "UserUseCase.UpdateProfile"

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := normalizeEmail(req.Email); email != "" {
		if _, err = mail.ParseAddress(email); err != nil {
			return nil, e.Wrap(op, e.WrapField("email", e.ErrValidation))
		}
		user.Email = email
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLen {
			return nil, e.Wrap(op, e.WrapField("password", e.ErrValidation))
		}
		hash, herr := auth.HashPassword(req.Password)
		if herr != nil {
			return nil, e.Wrap(op, herr)
		}
		user.PasswordHash = hash
	}

	updated, err := u.userRepo.Update(ctx, user)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return u.authRes(updated, op)
}

func (u *UserUseCase) ListUsers(ctx context.Context, page int) (*UserPage, error) {
	const (
		op       = "UserUseCase.ListUsers"
		pageSize = 20
	)

	if page < 1 {
		page = 1
	}

	users, total, err := u.userRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	infos := make([]UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, NewUserInfo(&users[i]))
	}

	return &UserPage{
		Users:     infos,
		Total:     total,
		Page:      page,
		PageCount: pageCount(total, pageSize),
	}, nil
}

func (u *UserUseCase) GetUser(ctx context.Context, id int64) (*UserInfo, error) {
	const op = "UserUseCase.GetUser"

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewUserInfo(user)
	return &info, nil
}

func (u *UserUseCase) AdminUpdateUser(ctx context.Context, id int64, req *AdminUpdateUserReq) (*UserInfo, error) {
	const op = "UserUseCase.AdminUpdateUser"

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := normalizeEmail(req.Email); email != "" {
		user.Email = email
	}
	user.IsAdmin = req.IsAdmin

	updated, err := u.userRepo.Update(ctx, user)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewUserInfo(updated)
	return &info, nil
}

// DeleteUser удаляет пользователя. Администраторов удалять нельзя.
func (u *UserUseCase) DeleteUser(ctx context.Context, id int64) error {
	const op = "UserUseCase.DeleteUser"

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	if user.IsAdmin {
		return e.Wrap(op, e.WrapField("cannot delete admin user", e.ErrValidation))
	}

	if err = u.userRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (u *UserUseCase) authRes(user *domain.User, op string) (*AuthRes, error) {
	token, err := u.tokens.Issue(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &AuthRes{User: NewUserInfo(user), Token: token}, nil
}

func validateCredentials(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return e.WrapField("name", e.ErrValidation)
	}
	if _, err := mail.ParseAddress(normalizeEmail(email)); err != nil {
		return e.WrapField("email", e.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return e.WrapField("password", e.ErrValidation)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
