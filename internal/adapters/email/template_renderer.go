package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"techtalks/internal/domain"
)

// Template names understood by the renderer.
const (
	TemplateWelcome            = "welcome"
	TemplateSubmissionReceived = "submission_received"
	TemplateSubmissionApproved = "submission_approved"
	TemplateSubmissionRejected = "submission_rejected"
)

//go:embed templates/*
var templateFS embed.FS

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
// Each template name maps to three files: <name>_subject.txt, <name>.html and <name>.txt.
type templateRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewTemplateRenderer parses the embedded templates once and returns a renderer over them.
func NewTemplateRenderer() (domain.EmailTemplateRenderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &templateRenderer{html: html, text: text}, nil
}

// Render executes the named template (e.g. "welcome") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	if err = r.text.ExecuteTemplate(&buf, templateName+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err = r.html.ExecuteTemplate(&buf, templateName+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err = r.text.ExecuteTemplate(&buf, templateName+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	textBody = buf.String()

	return subject, htmlBody, textBody, nil
}
