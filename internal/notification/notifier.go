package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Kind selects the email template.
type Kind string

const (
	KindApproval  Kind = "approval"
	KindRejection Kind = "rejection"
)

var subjects = map[Kind]string{
	KindApproval:  "Tu mensaje a la Virgen fue aprobado",
	KindRejection: "Tu mensaje a la Virgen no fue publicado",
}

// Notifier sends moderation outcome emails.
type Notifier interface {
	SendApproval(ctx context.Context, to, name string) error
	SendRejection(ctx context.Context, to, name string) error
}

// Render returns the subject and HTML body for a notice.
func Render(kind Kind, name string) (string, string, error) {
	subject, ok := subjects[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(kind)+".html", struct{ Name string }{name}); err != nil {
		return "", "", fmt.Errorf("render %s email: %w", kind, err)
	}
	return subject, body.String(), nil
}
