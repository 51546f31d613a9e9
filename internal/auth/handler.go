package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/users"
)

type Handler struct {
	directory *users.Directory
	secret    string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewHandler(directory *users.Directory, secret string, tokenTTL time.Duration, logger *zap.Logger) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Handler{directory: directory, secret: secret, tokenTTL: tokenTTL, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	group := r.Group("/auth")
	{
		group.POST("/login", h.Login)
	}
}

type loginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.directory.Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(h.tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed, "user": user})
}
