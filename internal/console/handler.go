// Package console serves the browser-facing session endpoints and proxies
// admin screens' API calls to the BuyTown backend.
package console

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buytown/admin-console/internal/auth"
	"github.com/buytown/admin-console/internal/catalog"
)

// Sessions is the part of auth.Manager the console drives.
type Sessions interface {
	State() auth.State
	Login(ctx context.Context, identity, password string) error
	Logout(ctx context.Context)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// Forwarder replays a request against the backend with the shared credentials.
type Forwarder interface {
	Forward(ctx context.Context, in *http.Request, path string) (*http.Response, error)
}

type Handler struct {
	sessions Sessions
	backend  Forwarder
	catalog  *catalog.Service
	logger   *zap.Logger
}

func NewHandler(sessions Sessions, backend Forwarder, catalog *catalog.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, backend: backend, catalog: catalog, logger: logger.Named("console")}
}

// Register mounts the console routes. guard protects everything that reaches
// the backend on the administrator's behalf.
func (h *Handler) Register(r gin.IRouter, guard gin.HandlerFunc) {
	session := r.Group("/session")
	{
		session.GET("", h.Session)
		session.POST("/login", h.Login)
		session.POST("/logout", h.Logout)
		session.POST("/forgot-password", h.ForgotPassword)
		session.POST("/reset-password", h.ResetPassword)
	}

	protected := r.Group("", guard)
	{
		protected.GET("/catalog/category-tree", h.CategoryTree)
		protected.POST("/catalog/banners/move", h.MoveBanner)
		protected.Any("/api/*path", h.Proxy)
	}
}

type sessionView struct {
	Status          string       `json:"status"`
	IsAuthenticated bool         `json:"is_authenticated"`
	Loading         bool         `json:"loading"`
	User            *auth.Claims `json:"user"`
}

func viewOf(s auth.State) sessionView {
	return sessionView{
		Status:          s.Status.String(),
		IsAuthenticated: s.IsAuthenticated,
		Loading:         s.Loading,
		User:            s.User,
	}
}

func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(h.sessions.State()))
}

type LoginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	err := h.sessions.Login(c.Request.Context(), req.Identity, req.Password)
	result := auth.ResultOf(err)
	if err != nil {
		h.logger.Info("login failed", zap.String("identity", req.Identity), zap.Error(err))
		c.JSON(loginStatus(err), result)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": h.sessions.State().User})
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrCredentialExchange):
		return http.StatusBadGateway
	case errors.Is(err, auth.ErrLoginRejected):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, viewOf(h.sessions.State()))
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sessions.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": auth.Message(err)})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sessions.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": auth.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (h *Handler) CategoryTree(c *gin.Context) {
	tree, err := h.catalog.CategoryTree(c.Request.Context())
	if err != nil {
		h.logger.Warn("category tree", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tree})
}

type MoveBannerRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

func (h *Handler) MoveBanner(c *gin.Context) {
	var req MoveBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	banners, err := h.catalog.MoveBanner(c.Request.Context(), *req.From, *req.To)
	if errors.Is(err, catalog.ErrPositionOutOfRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Warn("move banner", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reorder banners"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": banners})
}

// Proxy forwards /api/<path> to <backend>/<path> and streams the answer back.
func (h *Handler) Proxy(c *gin.Context) {
	resp, err := h.backend.Forward(c.Request.Context(), c.Request, c.Param("path"))
	if err != nil {
		h.logger.Warn("proxy call failed", zap.String("path", c.Param("path")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to contact BuyTown API"})
		return
	}
	defer resp.Body.Close()

	extra := map[string]string{}
	for _, k := range []string{"Cache-Control", "ETag", "Last-Modified", "Location", "X-Request-ID"} {
		if v := resp.Header.Get(k); v != "" {
			extra[k] = v
		}
	}
	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, extra)
}
