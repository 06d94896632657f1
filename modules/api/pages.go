package api

import (
	"github.com/gofiber/fiber/v2"
)

// Page handlers render the HTML UI. Pages are static shells; they fetch
// data from the JSON API with the browser's stored tokens.

// IndexPage renders the landing page.
func (h *Handlers) IndexPage(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{})
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{})
}

// RegisterPage renders the registration form.
func (h *Handlers) RegisterPage(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{})
}

// DashboardPage renders the calculations dashboard.
func (h *Handlers) DashboardPage(c *fiber.Ctx) error {
	return c.Render("dashboard", fiber.Map{})
}

// ViewCalculationPage renders the read-only view of one calculation.
func (h *Handlers) ViewCalculationPage(c *fiber.Ctx) error {
	return c.Render("view_calculation", fiber.Map{
		"CalcID": c.Params("id"),
	})
}

// EditCalculationPage renders the edit form for one calculation.
func (h *Handlers) EditCalculationPage(c *fiber.Ctx) error {
	return c.Render("edit_calculation", fiber.Map{
		"CalcID": c.Params("id"),
	})
}
