package handlers

import (
	"github.com/gofiber/fiber/v3"

	"yuvai/internal/config"
	"yuvai/internal/tasks"
)

// OTPNotifier delivers registration codes. *email.Notifier implements it.
type OTPNotifier interface {
	SendOTP(username, to, code string) *tasks.Handle
}

// renderPage renders a page with branding and the given status.
func renderPage(c fiber.Ctx, cfg *config.Config, status int, name string, data fiber.Map) error {
	return c.Status(status).Render(name, MergeBranding(data, cfg))
}
