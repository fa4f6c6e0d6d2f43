package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/service"
	"github.com/iliyamo/event-planner/internal/utils"
)

// UserService is the account API the handlers call.
type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (model.User, error)
	Login(ctx context.Context, userName, password string) (service.LoginResult, error)
	Logout(ctx context.Context, userID string) (model.User, error)
	UpdateEmail(ctx context.Context, userID, newEmail string) (model.User, error)
	UpdateFullName(ctx context.Context, userID, newName string) (model.User, error)
	ChangePasswordForLoginUser(ctx context.Context, userID, newPassword string) (model.User, error)
	ChangePasswordWithoutLogin(ctx context.Context, userID, oldPassword, newPassword string) (model.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type UserHandler struct {
	users   UserService
	cookies utils.CookieFactory
}

func NewUserHandler(users UserService, cookies utils.CookieFactory) *UserHandler {
	return &UserHandler{users: users, cookies: cookies}
}

type registerReq struct {
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type updateEmailReq struct {
	NewEmail string `json:"newEmail"`
}

type updateNameReq struct {
	NewName string `json:"newName"`
}

type changePasswordReq struct {
	NewPassword string `json:"newPassword"`
}

type resetPasswordReq struct {
	UserID      string `json:"userId"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *UserHandler) Register(c echo.Context) (Response, error) {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	u, err := h.users.Register(c.Request().Context(), service.RegisterInput{
		UserName: req.UserName,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusCreated, Data: u, Message: "user registered successfully"}, nil
}

// Login answers with the user; the tokens travel only as cookies.
func (h *UserHandler) Login(c echo.Context) (Response, error) {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	res, err := h.users.Login(c.Request().Context(), req.UserName, req.Password)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status:  http.StatusOK,
		Data:    res.User,
		Message: "user logged in successfully",
		Cookies: []*http.Cookie{h.cookies.Access(res.AccessToken), h.cookies.Refresh(res.RefreshToken)},
	}, nil
}

func (h *UserHandler) Logout(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	u, err := h.users.Logout(c.Request().Context(), uid)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Data: u, Message: "user logged out successfully", Cookies: h.cookies.Clear()}, nil
}

func (h *UserHandler) UpdateEmail(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	var req updateEmailReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	u, err := h.users.UpdateEmail(c.Request().Context(), uid, req.NewEmail)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusAccepted, Data: u, Message: "email updated successfully"}, nil
}

func (h *UserHandler) UpdateFullName(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	var req updateNameReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	u, err := h.users.UpdateFullName(c.Request().Context(), uid, req.NewName)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusAccepted, Data: u, Message: "full name updated successfully"}, nil
}

func (h *UserHandler) ChangePasswordForLoginUser(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	var req changePasswordReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	u, err := h.users.ChangePasswordForLoginUser(c.Request().Context(), uid, req.NewPassword)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Data: u, Message: "password changed successfully"}, nil
}

func (h *UserHandler) ChangePasswordWithoutLogin(c echo.Context) (Response, error) {
	var req resetPasswordReq
	if err := bind(c, &req); err != nil {
		return Response{}, err
	}
	u, err := h.users.ChangePasswordWithoutLogin(c.Request().Context(), req.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Data: u, Message: "password changed successfully"}, nil
}

func (h *UserHandler) DeleteUser(c echo.Context) (Response, error) {
	uid, err := identity(c)
	if err != nil {
		return Response{}, err
	}
	if err := h.users.DeleteUser(c.Request().Context(), uid); err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Message: "user deleted successfully", Cookies: h.cookies.Clear()}, nil
}
