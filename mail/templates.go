package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// OTPData is the view model of every OTP template.
type OTPData struct {
	Name string
	OTP  string
}

// Renderer executes the embedded OTP templates by name, without extension.
type Renderer struct {
	tpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

func (r *Renderer) Render(name string, data OTPData) (string, error) {
	t := r.tpl.Lookup(name + ".html")
	if t == nil {
		return "", fmt.Errorf("mail template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template %q: %w", name, err)
	}
	return buf.String(), nil
}
