package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/infonest/campus-backend/internal/config"
	"github.com/infonest/campus-backend/internal/mailer"
	"github.com/infonest/campus-backend/internal/middleware"
	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/repository"
	"github.com/infonest/campus-backend/internal/utils"
)

// AuthHandler bundles dependencies for signup, login, token refresh
// and password reset. Signup is a two-step flow: the request is parked
// in the OTP store until the emailed code is verified, and only then
// does a row reach the users table.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	OTP    *repository.OTPStore
	Mail   *mailer.Mailer
}

// NewAuthHandler constructs an AuthHandler. OTP may be nil when Redis
// is unreachable; signup then reports verification as unavailable.
func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo, otp *repository.OTPStore, mail *mailer.Mailer) *AuthHandler {
	if users == nil || tokens == nil || mail == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, OTP: otp, Mail: mail}
}

// ----- DTOs -----

type signupReq struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	ClubID    *string `json:"clubId"`
}

type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordReq struct {
	Email string `json:"email"`
}

type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Signup handles POST /v1/auth/signup. Generates a 6-digit OTP, parks
// the request in Redis with a TTL and emails the code. Nothing is
// written to the database yet.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		role = model.RoleStudent
	}
	if role == model.RoleFaculty && (req.ClubID == nil || *req.ClubID == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "clubId is required for faculty accounts"})
	}
	if h.OTP == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification service unavailable"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Reject early when the email is already registered; the OTP mail
	// would only lead to a dead end at verification.
	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}

	otp, err := utils.NewOTP()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate code"})
	}
	pending := repository.PendingSignup{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      string(role),
		ClubID:    req.ClubID,
		OTP:       otp,
	}
	if err := h.OTP.Put(ctx, pending); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store signup"})
	}

	body := "Your verification code is: " + otp + "\nThis code is valid for " + h.Cfg.OTPTTL.String() + "."
	if err := h.Mail.Send(req.Email, "InfoNest - Email Verification", body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send verification email"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "OTP_SENT"})
}

// VerifyOTP handles POST /v1/auth/verify-otp. On a match the parked
// signup becomes a real user and the pending entry is cleared.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}
	if h.OTP == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification service unavailable"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pending, err := h.OTP.Get(ctx, req.Email)
	if err != nil || pending.OTP != req.OTP {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired OTP"})
	}
	role, _ := model.ParseRole(pending.Role)
	if _, err := h.Users.Create(ctx, pending.FirstName, pending.LastName, pending.Email, pending.Password, role, pending.ClubID, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	_ = h.OTP.Delete(ctx, req.Email)
	return c.JSON(http.StatusCreated, echo.Map{"message": "ACCOUNT_CREATED_SUCCESSFULLY"})
}

// Login handles POST /v1/auth/login: verify credentials and return a
// fresh access/refresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(ctx, c, u, http.StatusOK)
}

// Refresh handles POST /v1/auth/refresh. Rotates the refresh token:
// the presented token is revoked and a new pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return h.issuePair(ctx, c, u, http.StatusOK)
}

// Logout handles POST /v1/auth/logout. Accepts a refresh token in the
// body and invalidates it; no JWT required so an expired session can
// still be terminated.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me: returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	email := middleware.CallerEmail(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.FullName(), Role: u.Role})
}

// ForgotPassword handles POST /v1/auth/forgot-password. Stores a UUID
// reset token with a short expiry on the user row and emails a link.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token := uuid.NewString()
	expires := time.Now().UTC().Add(h.Cfg.ResetTokenTTL)
	if err := h.Users.SetResetToken(ctx, req.Email, token, expires); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store reset token"})
	}

	link := h.Cfg.ResetLinkBase + "?token=" + token
	body := "Click the link below to reset your password:\n" + link
	if err := h.Mail.Send(strings.ToLower(strings.TrimSpace(req.Email)), "Password Reset Link", body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send reset email"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reset link sent successfully"})
}

// ResetPassword handles POST /v1/auth/reset-password. Verifies the
// token and its expiry, replaces the password and revokes every
// outstanding refresh token for the account.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and newPassword required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByResetToken(ctx, req.Token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if u.ResetExpires == nil || u.ResetExpires.Before(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update password"})
	}
	_ = h.Tokens.RevokeAllForUser(ctx, u.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated successfully"})
}

// issuePair signs an access token and stores a new refresh token for
// the user, then writes the standard auth response.
func (h *AuthHandler) issuePair(ctx context.Context, c echo.Context, u model.User, status int) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, string(u.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(status, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Name: u.FullName(), Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw goes back to the client
	})
}
