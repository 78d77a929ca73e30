package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/config"
	"bookstore-api/internal/middleware"
	"bookstore-api/internal/usecase/user"
	"bookstore-api/pkg/utils"
)

const resetPasswordPath = "/api/v1/user/reset-password/"

type UserHandler struct {
	service *user.Service
	cookie  cookieSettings
}

type cookieSettings struct {
	name   string
	maxAge int
	secure bool
}

func NewUserHandler(service *user.Service, cfg *config.Config) *UserHandler {
	return &UserHandler{
		service: service,
		cookie: cookieSettings{
			name:   cfg.JWT.CookieName,
			maxAge: int(cfg.JWT.CookieTTL().Seconds()),
			secure: cfg.IsProduction(),
		},
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	userGroup := router.Group("/user")
	{
		userGroup.POST("/signup", h.Signup)
		userGroup.POST("/login", h.Login)
		userGroup.POST("/forgot-password", h.ForgotPassword)
		userGroup.PATCH("/reset-password/:token", h.ResetPassword)
	}
}

// RegisterProtectedRoutes expects router to run Authenticate.
func (h *UserHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	userGroup := router.Group("/user")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.POST("/updateMyPassword", h.UpdateMyPassword)
		userGroup.PATCH("/updateMe", h.UpdateMe)
		userGroup.DELETE("/deleteMe", h.DeleteMe)

		userGroup.GET("", h.GetAllUsers)
		userGroup.GET("/:id", h.GetUser)
		userGroup.PATCH("/:id", h.UpdateUser)
	}
}

// RegisterAdminRoutes expects router to run Authenticate and AdminOnly.
func (h *UserHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.DELETE("/user/:id", h.DeleteUser)
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req user.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, res)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, res)
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), &req, resetURLBase(c)); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.MessageResponse("Token sent to email!"))
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, res)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	current, _ := middleware.CurrentUser(c)

	u, err := h.service.Get(c.Request.Context(), current.HexID())
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"user": u}))
}

func (h *UserHandler) UpdateMyPassword(c *gin.Context) {
	var req user.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	current, _ := middleware.CurrentUser(c)

	res, err := h.service.UpdateMyPassword(c.Request.Context(), current.HexID(), &req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	h.sendToken(c, http.StatusOK, res)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req user.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	current, _ := middleware.CurrentUser(c)

	u, err := h.service.UpdateMe(c.Request.Context(), current.HexID(), &req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"user": u}))
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	current, _ := middleware.CurrentUser(c)

	if err := h.service.DeleteMe(c.Request.Context(), current.HexID()); err != nil {
		middleware.Fail(c, err)
		return
	}

	h.clearCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	current, _ := middleware.CurrentUser(c)

	users, err := h.service.List(c.Request.Context(), current, c.Request.URL.Query())
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.ListResponse(len(users), gin.H{"users": users}))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"user": u}))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req user.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	current, _ := middleware.CurrentUser(c)

	u, err := h.service.Update(c.Request.Context(), current, c.Param("id"), &req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse(gin.H{"user": u}))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// sendToken sets the session cookie and echoes the token with the user.
func (h *UserHandler) sendToken(c *gin.Context, status int, res *user.AuthResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.name, res.Token, h.cookie.maxAge, "/", "", h.cookie.secure, true)
	c.JSON(status, utils.TokenResponse(res.Token, gin.H{"user": res.User}))
}

func (h *UserHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.name, "", -1, "/", "", h.cookie.secure, true)
}

func resetURLBase(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, resetPasswordPath)
}
