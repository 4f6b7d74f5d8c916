package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/logger"
)

type UserHandler struct {
	userUC usecase.UserUC
	logger logger.Logger
}

func NewUserHandler(userUC usecase.UserUC, logger logger.Logger) *UserHandler {
	return &UserHandler{userUC: userUC, logger: logger}
}

// signup
//
//	@Summary	Регистрация пользователя
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SignupRequest	true	"Данные регистрации"
//	@Success	201		{object}	AuthResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/users/signup [post]
func (u *UserHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := u.userUC.Signup(r.Context(), &usecase.SignupReq{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, AuthResponse{User: toUserResponse(&res.User), Token: res.Token})
}

// signin
//
//	@Summary	Вход по email и паролю
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SigninRequest	true	"Учётные данные"
//	@Success	200		{object}	AuthResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/users/signin [post]
func (u *UserHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := u.userUC.Signin(r.Context(), &usecase.SigninReq{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, AuthResponse{User: toUserResponse(&res.User), Token: res.Token})
}

// updateProfile
//
//	@Summary	Обновление собственного профиля
//	@Description	Возвращает профиль и свежий токен
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		UpdateProfileRequest	true	"Новые данные"
//	@Success	200		{object}	AuthResponse
//	@Security	BearerAuth
//	@Router		/users/profile [put]
func (u *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromCtx(r.Context())

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := u.userUC.UpdateProfile(r.Context(), claims.UserID, &usecase.UpdateProfileReq{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, AuthResponse{User: toUserResponse(&res.User), Token: res.Token})
}

// listUsers
//
//	@Summary	Список пользователей (админ)
//	@Tags		users
//	@Produce	json
//	@Param		page	query		int	false	"Номер страницы"
//	@Success	200		{object}	UserPageResponse
//	@Security	BearerAuth
//	@Router		/users [get]
func (u *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := u.userUC.ListUsers(r.Context(), parsePage(r))
	if err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	users := make([]UserResponse, 0, len(page.Users))
	for i := range page.Users {
		users = append(users, toUserResponse(&page.Users[i]))
	}

	WriteSuccess(w, http.StatusOK, UserPageResponse{
		Users:     users,
		Total:     page.Total,
		Page:      page.Page,
		PageCount: page.PageCount,
	})
}

// getUser
//
//	@Summary	Пользователь по ID (админ)
//	@Tags		users
//	@Produce	json
//	@Param		id	path		int	true	"ID пользователя"
//	@Success	200	{object}	UserResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/users/{id} [get]
func (u *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := u.userUC.GetUser(r.Context(), id)
	if err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toUserResponse(info))
}

// adminUpdateUser
//
//	@Summary	Обновление пользователя администратором
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"ID пользователя"
//	@Param		request	body		AdminUpdateUserRequest	true	"Новые данные"
//	@Success	200		{object}	UserResponse
//	@Failure	404		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/users/{id} [put]
func (u *UserHandler) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	var req AdminUpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	info, err := u.userUC.AdminUpdateUser(r.Context(), id, &usecase.AdminUpdateUserReq{
		Name:    req.Name,
		Email:   req.Email,
		IsAdmin: req.IsAdmin,
	})
	if err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toUserResponse(info))
}

// deleteUser
//
//	@Summary	Удаление пользователя (админ)
//	@Description	Администратора удалить нельзя
//	@Tags		users
//	@Param		id	path	int	true	"ID пользователя"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/users/{id} [delete]
func (u *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := u.userUC.DeleteUser(r.Context(), id); err != nil {
		u.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
