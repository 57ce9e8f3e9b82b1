package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"grumini-backend/internal/auth"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/models"
	"grumini-backend/internal/supabase"
)

const oauthStateKey = "oauthState"

type AuthHandler struct {
	users     *supabase.Client
	google    *auth.GoogleOAuth
	clientURL string
}

func NewAuthHandler(users *supabase.Client, google *auth.GoogleOAuth, clientURL string) *AuthHandler {
	return &AuthHandler{
		users:     users,
		google:    google,
		clientURL: clientURL,
	}
}

func establishSession(c *gin.Context, userID int64) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, userID)
	return session.Save()
}

// Register creates a local-password account. Duplicate emails answer 409.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "email, password and username are required"})
		return
	}

	_, err := h.users.GetUserByEmail(req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	}
	if !errors.Is(err, supabase.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to check existing user", Message: err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to hash password", Message: err.Error()})
		return
	}

	user, err := h.users.CreateUser(models.User{
		Email:    req.Email,
		Password: hash,
		Username: req.Username,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create user", Message: err.Error()})
		return
	}

	// Auto login after register, as the SPA expects.
	if err := establishSession(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed after registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Sanitized()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "email and password are required"})
		return
	}

	user, err := h.users.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, supabase.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect email."})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to look up user", Message: err.Error()})
		return
	}

	if user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please log in with Google."})
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect password."})
		return
	}

	if err := establishSession(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to establish session", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Sanitized()})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to destroy session", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// CurrentUser reports the session's user, or 401 with authenticated:false.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	session := sessions.Default(c)
	raw := session.Get(middleware.SessionUserKey)
	userID, ok := raw.(int64)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{User: user.Sanitized(), Authenticated: true})
}

// GoogleLogin starts the OAuth flow with a session-bound state value.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save session", Message: err.Error()})
		return
	}
	c.Redirect(http.StatusFound, h.google.AuthURL(state))
}

// GoogleCallback finishes the OAuth flow: find by subject id, else link by
// email, else create. Failures bounce back to the SPA login page.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	expectedState, _ := session.Get(oauthStateKey).(string)
	session.Delete(oauthStateKey)
	session.Save()

	if expectedState == "" || c.Query("state") != expectedState || c.Query("code") == "" {
		c.Redirect(http.StatusFound, h.clientURL+"/login")
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		c.Redirect(http.StatusFound, h.clientURL+"/login")
		return
	}

	user, err := h.users.GetUserByGoogleID(profile.ID)
	if errors.Is(err, supabase.ErrUserNotFound) {
		existing, emailErr := h.users.GetUserByEmail(profile.Email)
		switch {
		case emailErr == nil:
			user, err = h.users.LinkGoogleID(existing.ID, profile.ID)
		case errors.Is(emailErr, supabase.ErrUserNotFound):
			user, err = h.users.CreateUser(models.User{
				Email:     profile.Email,
				GoogleID:  profile.ID,
				Username:  profile.Name,
				AvatarURL: profile.Picture,
			})
		default:
			err = emailErr
		}
	}
	if err != nil {
		c.Redirect(http.StatusFound, h.clientURL+"/login")
		return
	}

	if err := establishSession(c, user.ID); err != nil {
		c.Redirect(http.StatusFound, h.clientURL+"/login")
		return
	}
	c.Redirect(http.StatusFound, h.clientURL+"/dashboard")
}

// Root redirects to the SPA dashboard or login depending on session state.
func (h *AuthHandler) Root(c *gin.Context) {
	session := sessions.Default(c)
	if _, ok := session.Get(middleware.SessionUserKey).(int64); ok {
		c.Redirect(http.StatusFound, h.clientURL+"/dashboard")
		return
	}
	c.Redirect(http.StatusFound, h.clientURL+"/login")
}
