package handlers

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"certgen/internal/config"
	"certgen/internal/domain"
	"certgen/internal/infra/logging"
	"certgen/internal/infra/mailer"
)

// CertificateRenderer produces the filled certificate PDF for a name.
type CertificateRenderer interface {
	Render(ctx context.Context, name string) ([]byte, error)
}

// CertificateService bundles configuration and dependencies for issuing
// certificates.
type CertificateService struct {
	Config   *config.Config
	Renderer CertificateRenderer
	Mailer   mailer.Sender
}

// NewCertificateService creates a service. m may be nil when mail is disabled.
func NewCertificateService(cfg config.Config, r CertificateRenderer, m mailer.Sender) *CertificateService {
	return &CertificateService{
		Config:   &cfg,
		Renderer: r,
		Mailer:   m,
	}
}

// MailEnabled reports whether requests run in the strict, mail-sending mode.
func (svc *CertificateService) MailEnabled() bool {
	return svc.Config.Mail.Enabled && svc.Mailer != nil
}

// HandleGenerate renders the certificate, optionally emails it, and returns
// it as a download. A failed mail send fails the request.
func (svc *CertificateService) HandleGenerate(c *fiber.Ctx) error {
	req, err := svc.validateAndExtractParams(c)
	if err != nil {
		return err
	}

	pdfBuf, err := svc.Renderer.Render(c.UserContext(), req.Name)
	if err != nil {
		logging.Error("Certificate rendering failed", "error", err.Error())
		return err
	}

	filename := req.Name + svc.Config.Certificate.FilenameSuffix

	if svc.MailEnabled() {
		err := svc.Mailer.Send(c.UserContext(), mailer.Message{
			To:             req.Email,
			RecipientName:  req.Name,
			AttachmentName: filename,
			Attachment:     pdfBuf,
		})
		if err != nil {
			logging.Error("Certificate mail delivery failed", "error", err.Error())
			if !errors.Is(err, domain.ErrMailTransport) && !errors.Is(err, domain.ErrInvalidField) {
				err = fmt.Errorf("%w: %v", domain.ErrMailTransport, err)
			}
			return err
		}
	}

	logging.Info("Certificate issued", "bytes", len(pdfBuf), "mailed", svc.MailEnabled(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID))

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, ContentDisposition(req.Name, svc.Config.Certificate.FilenameSuffix))
	return c.Send(pdfBuf)
}

// validateAndExtractParams decodes the JSON body. In mail mode name and email
// are both required; otherwise a blank name falls back to the placeholder.
func (svc *CertificateService) validateAndExtractParams(c *fiber.Ctx) (*domain.CertificateRequest, error) {
	var req domain.CertificateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body: expected JSON")
		}
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if !svc.MailEnabled() {
		if req.Name == "" {
			req.Name = svc.Config.Certificate.FallbackName
		}
		return &req, nil
	}

	if req.Name == "" {
		return nil, fmt.Errorf("%w: name", domain.ErrMissingField)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email", domain.ErrMissingField)
	}
	addr, err := netmail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return nil, fmt.Errorf("%w: email %q is not a valid address", domain.ErrInvalidField, req.Email)
	}
	return &req, nil
}

// ContentDisposition returns the attachment header for name. The name is
// percent-encoded the way browsers' encodeURIComponent does for the
// characters that matter in a header (spaces become %20, not +).
func ContentDisposition(name, suffix string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return `attachment; filename="` + escaped + suffix + `"`
}
