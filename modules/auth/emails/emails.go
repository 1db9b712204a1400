// Package emails renders the HTML bodies of the transactional emails
// sent by the auth module.
package emails

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// ForgotPasswordParams fills the password reset request email.
type ForgotPasswordParams struct {
	Username  string
	ResetLink string
}

// ResetConfirmationParams fills the password changed confirmation email.
type ResetConfirmationParams struct {
	Username  string
	Email     string
	Date      string
	IPAddress string
}

// ForgotPassword renders the reset request email body.
func ForgotPassword(params ForgotPasswordParams) (string, error) {
	return render("forgot_password.html", params)
}

// ResetConfirmation renders the password changed confirmation email body.
func ResetConfirmation(params ResetConfirmationParams) (string, error) {
	return render("reset_confirmation.html", params)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
