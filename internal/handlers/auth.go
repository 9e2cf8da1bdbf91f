package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"yuvai/internal/config"
	"yuvai/internal/db"
	"yuvai/internal/middleware"
	"yuvai/internal/models"
	"yuvai/internal/security"
	"yuvai/internal/validation"
)

// Pending registration session keys. Values are plain strings.
const (
	pendingUsername = "pending_username"
	pendingEmail    = "pending_email"
	pendingHash     = "pending_hash"
	pendingOTP      = "pending_otp"
	pendingRole     = "pending_role"
)

const invalidCredentials = "Invalid username or password"

// AuthHandler handles registration, OTP verification, login and logout.
type AuthHandler struct {
	store    db.AccountStore
	cfg      *config.Config
	notifier OTPNotifier
	newOTP   func() (string, error)
	now      func() time.Time
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(store db.AccountStore, cfg *config.Config, notifier OTPNotifier) *AuthHandler {
	return &AuthHandler{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
		newOTP:   security.GenerateOTP,
		now:      time.Now,
	}
}

func sessionOf(c fiber.Ctx) (*session.Middleware, error) {
	sess := session.FromContext(c)
	if sess == nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	return sess, nil
}

func savePending(sess *session.Middleware, p models.PendingRegistration) {
	sess.Set(pendingUsername, p.Username)
	sess.Set(pendingEmail, p.Email)
	sess.Set(pendingHash, p.PasswordHash)
	sess.Set(pendingOTP, p.OTP)
	sess.Set(pendingRole, p.Role)
}

func loadPending(sess *session.Middleware) (models.PendingRegistration, bool) {
	p := models.PendingRegistration{}
	p.Username, _ = sess.Get(pendingUsername).(string)
	p.Email, _ = sess.Get(pendingEmail).(string)
	p.PasswordHash, _ = sess.Get(pendingHash).(string)
	p.OTP, _ = sess.Get(pendingOTP).(string)
	p.Role, _ = sess.Get(pendingRole).(string)
	if p.Username == "" || p.OTP == "" || p.PasswordHash == "" {
		return models.PendingRegistration{}, false
	}
	return p, true
}

func clearPending(sess *session.Middleware) {
	for _, key := range []string{pendingUsername, pendingEmail, pendingHash, pendingOTP, pendingRole} {
		sess.Delete(key)
	}
}

// establish starts an authenticated session for username under a fresh session ID.
func establish(sess *session.Middleware, username string) error {
	if err := sess.Regenerate(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to start session")
	}
	sess.Set(middleware.SessionUsername, username)
	return nil
}

// ShowLogin renders the login page.
func (h *AuthHandler) ShowLogin(c fiber.Ctx) error {
	return renderPage(c, h.cfg, fiber.StatusOK, "login", fiber.Map{"Title": "Log in"})
}

// Login checks credentials. Every failure produces the same message.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	sess, err := sessionOf(c)
	if err != nil {
		return err
	}

	username := validation.NormalizeUsername(c.FormValue("username"))
	password := c.FormValue("password")

	fail := func() error {
		return renderPage(c, h.cfg, fiber.StatusUnauthorized, "login", fiber.Map{
			"Title":    "Log in",
			"Error":    invalidCredentials,
			"Username": username,
		})
	}

	if username == "" || password == "" {
		return fail()
	}

	acct, err := h.store.GetAccount(c.Context(), username)
	if err != nil {
		if !errors.Is(err, db.ErrAccountNotFound) {
			log.Printf("Login lookup failed for %s: %v", username, err)
		}
		security.BurnPasswordCheck(password)
		return fail()
	}

	if !security.CheckPassword(acct.PasswordHash, password) {
		return fail()
	}

	if err := establish(sess, acct.Username); err != nil {
		return err
	}
	log.Printf("User %s logged in", acct.Username)
	return c.Redirect().To("/")
}

// ShowRegister renders the registration page.
func (h *AuthHandler) ShowRegister(c fiber.Ctx) error {
	return renderPage(c, h.cfg, fiber.StatusOK, "register", fiber.Map{"Title": "Create account"})
}

// Register validates the form, parks a pending registration in the session
// and sends the OTP. No account is written until the code is verified.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	sess, err := sessionOf(c)
	if err != nil {
		return err
	}

	username := validation.NormalizeUsername(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	fail := func(status int, message string) error {
		return renderPage(c, h.cfg, status, "register", fiber.Map{
			"Title":    "Create account",
			"Error":    message,
			"Username": username,
			"Email":    email,
		})
	}

	if ok, msg := validation.ValidateUsername(username); !ok {
		return fail(fiber.StatusBadRequest, msg)
	}
	if ok, msg := validation.ValidateEmail(email); !ok {
		return fail(fiber.StatusBadRequest, msg)
	}
	if ok, msg := validation.ValidatePassword(password); !ok {
		return fail(fiber.StatusBadRequest, msg)
	}

	_, err = h.store.GetAccount(c.Context(), username)
	switch {
	case err == nil:
		return fail(fiber.StatusConflict, "Username taken")
	case !errors.Is(err, db.ErrAccountNotFound):
		log.Printf("Register lookup failed for %s: %v", username, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to check username")
	}

	otp, err := h.newOTP()
	if err != nil {
		log.Printf("Failed to generate OTP: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to start registration")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to start registration")
	}

	role := models.RoleUser
	if h.cfg.IsAdmin(username) {
		role = models.RoleAdmin
	}

	savePending(sess, models.PendingRegistration{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		OTP:          otp,
		Role:         role,
	})

	h.notifier.SendOTP(username, email, otp)
	return c.Redirect().To("/verify")
}

// ShowVerify renders the OTP form for the pending registration.
func (h *AuthHandler) ShowVerify(c fiber.Ctx) error {
	sess, err := sessionOf(c)
	if err != nil {
		return err
	}

	p, ok := loadPending(sess)
	if !ok {
		return c.Redirect().To("/register")
	}

	return renderPage(c, h.cfg, fiber.StatusOK, "verify", fiber.Map{
		"Title": "Verify email",
		"Email": p.Email,
	})
}

// Verify creates the account when the submitted code matches. A wrong code
// leaves the pending registration in place for another attempt.
func (h *AuthHandler) Verify(c fiber.Ctx) error {
	sess, err := sessionOf(c)
	if err != nil {
		return err
	}

	p, ok := loadPending(sess)
	if !ok {
		return c.Redirect().To("/register")
	}

	code := strings.TrimSpace(c.FormValue("otp"))
	if !security.OTPMatches(p.OTP, code) {
		return renderPage(c, h.cfg, fiber.StatusBadRequest, "verify", fiber.Map{
			"Title": "Verify email",
			"Email": p.Email,
			"Error": "Wrong code",
		})
	}

	acct := p.Account(h.now())
	if err := h.store.PutAccount(c.Context(), acct); err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			clearPending(sess)
			return renderPage(c, h.cfg, fiber.StatusConflict, "register", fiber.Map{
				"Title": "Create account",
				"Error": "Username taken",
			})
		}
		log.Printf("Failed to create account %s: %v", p.Username, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create account")
	}

	clearPending(sess)
	if err := establish(sess, acct.Username); err != nil {
		return err
	}
	log.Printf("Account %s created (role %s)", acct.Username, acct.Role)
	return c.Redirect().To("/")
}

// Logout clears the user session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		sess.Destroy()
	}
	return c.Redirect().To("/login")
}
