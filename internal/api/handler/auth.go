package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"rtigo/backend/internal/config"
	"rtigo/backend/internal/models"
)

const issuer = "rtigo-service"

// generateToken генерує JWT з ідентифікатором та роллю користувача.
func generateToken(secret []byte, user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(config.TokenLifetime).Unix(),
		"iss":     issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// parseToken validates a bearer token and returns (userID, role).
func parseToken(secret []byte, tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	return userID, role, nil
}

// RequireRole gates a route group on a valid token carrying the given role.
func (h *Handler) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, tokenRole, err := parseToken(h.JWTSecret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if tokenRole != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "wrong role"})
			return
		}
		c.Set("user_id", userID)
		c.Set("role", tokenRole)
		c.Next()
	}
}

type registerForm struct {
	Name           string `json:"name" binding:"required"`
	IdentityNumber string `json:"identityNumber" binding:"required"`
	Role           string `json:"role" binding:"required"`
	WalletAddress  string `json:"walletAddress"`
}

// Register creates a user and returns the one-time sign-in key. Only the
// key's hash is kept; losing the key means re-registering.
func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(form.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	signinKey, err := models.GenerateSigninKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate sign-in key"})
		return
	}
	user := &models.User{
		Name:           form.Name,
		IdentityNumber: form.IdentityNumber,
		Role:           form.Role,
		SigninKeyHash:  models.HashSigninKey(signinKey),
		WalletAddress:  form.WalletAddress,
	}
	if err := h.Storage.CreateUser(user); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "signinKey": signinKey})
}

type loginForm struct {
	UserID    string `json:"userId" binding:"required"`
	SigninKey string `json:"signinKey" binding:"required"`
}

// Login verifies the sign-in key (constant-time against the stored hash) and
// issues a token.
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Storage.FindUserByID(form.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	if user == nil || !models.VerifySigninKey(user.SigninKeyHash, form.SigninKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id or sign-in key"})
		return
	}
	token, err := generateToken(h.JWTSecret, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
}
