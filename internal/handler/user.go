package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/service"
	"github.com/iliyamo/review-catalog/internal/utils"
	"github.com/iliyamo/review-catalog/internal/validation"
)

// UserHandler serves /v1/users.
type UserHandler struct {
	Cfg config.Config
	Svc *service.ReviewService
}

func NewUserHandler(cfg config.Config, svc *service.ReviewService) *UserHandler {
	return &UserHandler{Cfg: cfg, Svc: svc}
}

type registerUserReq struct {
	Name string `json:"name" validate:"required,max=200"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type registerUserResp struct {
	User   service.UserSummary `json:"user"`
	Access tokenPart           `json:"access"`
}

// Register creates a user and returns the access token they review with.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerUserReq
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return invalidRequest(c, err)
	}

	u := h.Svc.RegisterUser(c.Request().Context(), req.Name)
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.String(), u.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusCreated, registerUserResp{
		User:   u,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// List returns every user in registration order.
func (h *UserHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Svc.Users()})
}

// Get returns one user with review count and tier.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	u, err := h.Svc.User(id)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
