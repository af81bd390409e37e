package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ecotrack/internal/adapter/api/middleware"
	"ecotrack/internal/infrastructure/oauth"
	"ecotrack/internal/usecase"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
	"ecotrack/pkg/response"
)

const oauthStateCookie = "oauth_state"

// CookieConfig controls the session cookie and where OAuth redirects land.
type CookieConfig struct {
	Secure      bool
	FrontendURL string
}

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
	google      *oauth.GoogleProvider
	cookies     CookieConfig
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase, google *oauth.GoogleProvider, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		google:      google,
		cookies:     cookies,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.Error(c, err)
	}

	h.setSession(c, result.Token, result.ExpiresIn)
	return response.Created(c, authResponse{Token: result.Token, User: result.User})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	h.setSession(c, result.Token, result.ExpiresIn)
	return response.SuccessMessage(c, "Login successful", authResponse{Token: result.Token, User: result.User})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.setSession(c, "", -1)
	return response.SuccessMessage(c, "Logged out", nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.authUseCase.Me(c.Request().Context(), actor.ID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.SendOTP(c.Request().Context(), req.Email); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "OTP sent to your email", nil)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Email       string `json:"email" validate:"required,email"`
		OTP         string `json:"otp" validate:"required,len=6,numeric"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Password reset successful", nil)
}

func (h *AuthHandler) SetPassword(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req struct {
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.SetPassword(c.Request().Context(), actor.ID, req.NewPassword); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessMessage(c, "Password set successfully", nil)
}

func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req struct {
		IDToken string `json:"idToken" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return response.Error(c, err)
	}

	h.setSession(c, result.Token, result.ExpiresIn)
	return response.SuccessMessage(c, "Login successful", authResponse{Token: result.Token, User: result.User})
}

// GoogleLogin starts the OAuth dance; the state is echoed back via a cookie.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	if h.google == nil || !h.google.Enabled() {
		return response.Error(c, errors.New("SERVICE_UNAVAILABLE", "Google login is not configured", http.StatusServiceUnavailable, nil))
	}

	state, err := oauth.NewState()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to start Google login", err))
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	failure := h.cookies.FrontendURL + "/login"
	if h.google == nil || !h.google.Enabled() {
		return c.Redirect(http.StatusFound, failure)
	}

	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		logger.Warn("google callback: state mismatch from %s", c.RealIP())
		return c.Redirect(http.StatusFound, failure)
	}
	c.SetCookie(&http.Cookie{Name: oauthStateCookie, Path: "/api/auth/google", MaxAge: -1})

	ctx := c.Request().Context()
	identity, err := h.google.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		logger.Warn("google callback: exchange failed: %v", err)
		return c.Redirect(http.StatusFound, failure)
	}

	result, err := h.authUseCase.FederatedLogin(ctx, *identity)
	if err != nil {
		logger.Warn("google callback: login for %s failed: %v", identity.Email, err)
		return c.Redirect(http.StatusFound, failure)
	}

	h.setSession(c, result.Token, result.ExpiresIn)
	return c.Redirect(http.StatusFound, h.cookies.FrontendURL+"/oauth/success")
}

// setSession writes the token cookie; a negative ttl clears it.
func (h *AuthHandler) setSession(c echo.Context, token string, ttl time.Duration) {
	sameSite := http.SameSiteLaxMode
	if h.cookies.Secure {
		sameSite = http.SameSiteNoneMode
	}

	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: sameSite,
	})
}
