package web

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed index.html.tmpl
var indexTemplate string

type formData struct {
	MailEnabled    bool
	FilenameSuffix string
}

// FormHandler serves the certificate form. The page is rendered once since
// its only inputs are fixed at startup.
func FormHandler(mailEnabled bool, filenameSuffix string) (fiber.Handler, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse form template: %w", err)
	}

	var page bytes.Buffer
	if err := tmpl.Execute(&page, formData{MailEnabled: mailEnabled, FilenameSuffix: filenameSuffix}); err != nil {
		return nil, fmt.Errorf("render form template: %w", err)
	}
	body := page.Bytes()

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(body)
	}, nil
}
