package reminders

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"embed"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// renderContext is the data passed to reminder templates.
type renderContext struct {
	Payload
	DueIn string // humanized lead time, e.g. "3 days"
}

// Renderer renders reminder messages from templates. The first line of a
// rendered template is the subject, the remainder is the body.
type Renderer struct {
	templates map[string]*template.Template
	leadTime  time.Duration
}

// NewRenderer creates a new renderer and loads the template for each channel.
func NewRenderer(channels []string, leadTime time.Duration) (*Renderer, error) {
	titleCaser := cases.Title(language.English)

	funcMap := template.FuncMap{
		"title":        titleCaser.String,
		"upper":        strings.ToUpper,
		"formatAmount": formatAmount,
		"formatDate":   formatDate,
		"cadence":      cadence,
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
		leadTime:  leadTime,
	}

	for _, channel := range channels {
		name := fmt.Sprintf("%s_upcoming", channel)
		filename := fmt.Sprintf("templates/%s.tmpl", name)

		content, err := templatesFS.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", filename, err)
		}

		tmpl, err := template.New(name).Funcs(funcMap).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[channel] = tmpl
	}

	return r, nil
}

// Render renders the reminder for a channel, returning subject and body.
func (r *Renderer) Render(channel string, payload Payload) (subject, body string, err error) {
	tmpl, ok := r.templates[channel]
	if !ok {
		return "", "", fmt.Errorf("no template for channel %s", channel)
	}

	var buf bytes.Buffer
	ctx := renderContext{
		Payload: payload,
		DueIn:   humanizeDays(r.leadTime),
	}
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", "", fmt.Errorf("execute template for channel %s: %w", channel, err)
	}

	rendered := strings.TrimSpace(buf.String())
	subject, body, _ = strings.Cut(rendered, "\n")
	return strings.TrimSpace(subject), strings.TrimSpace(body), nil
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func cadence(annual bool) string {
	if annual {
		return "year"
	}
	return "month"
}

// humanizeDays renders a duration as whole days, the resolution reminders
// work at.
func humanizeDays(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days <= 0 {
		days = 1
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
