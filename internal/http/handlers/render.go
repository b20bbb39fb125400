package handlers

import (
	"bytes"

	html "github.com/gofiber/template/html/v2"

	"github.com/gofiber/fiber/v2"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// renderPartial renders a template to a string, for the AJAX cart envelope.
func renderPartial(views *html.Engine, tmpl string, data fiber.Map) (string, error) {
	var buf bytes.Buffer
	if err := views.Render(&buf, tmpl, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
