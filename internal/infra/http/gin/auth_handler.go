package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	authsvc "stayhub/internal/app/services/auth"
	domainuser "stayhub/internal/domain/user"
)

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type registerRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	WantToHost bool   `json:"wantToHost"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authEnvelope carries the session token next to the standard success
// fields on register/login.
type authEnvelope struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	Data    dto.UserView `json:"data"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	result, err := h.Service.Register(c.Request.Context(), authsvc.RegisterParams{
		Email:      req.Email,
		Name:       req.Name,
		Password:   req.Password,
		WantToHost: req.WantToHost,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authEnvelope{Success: true, Token: result.Token, Data: dto.MapUserView(result.User)})
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, authEnvelope{Success: true, Token: result.Token, Data: dto.MapUserView(result.User)})
}

// Logout invalidates the presented token. Idempotent: a missing or
// already-expired session still logs out cleanly.
func (h AuthHandler) Logout(c *gin.Context) {
	token := bearerTokenFromContext(c)
	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	user, err := h.Service.Users.ByID(c.Request.Context(), p.ID)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapUserView(user))
}

func (h AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, authsvc.ErrPasswordTooShort):
		respondError(c, http.StatusBadRequest, "Please add a password with at least 8 characters")
	case errors.Is(err, domainuser.ErrEmailRequired):
		respondError(c, http.StatusBadRequest, "Please add an email")
	case errors.Is(err, domainuser.ErrNameRequired):
		respondError(c, http.StatusBadRequest, "Please add a name")
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		respondError(c, http.StatusBadRequest, "Duplicate field value entered")
	default:
		if h.Logger != nil {
			h.Logger.Error("auth request failed", "error", err)
		}
		respondError(c, http.StatusInternalServerError, "Server Error")
	}
}
