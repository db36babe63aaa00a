package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/storage"
)

// renderer handles template rendering.
type renderer struct {
	baseTemplate *template.Template // Base template with layout and fragments
	templatesFS  fs.FS              // Embedded filesystem for page templates
}

// newRenderer creates a new renderer.
func newRenderer(baseTemplate *template.Template, templatesFS fs.FS) *renderer {
	return &renderer{
		baseTemplate: baseTemplate,
		templatesFS:  templatesFS,
	}
}

// PageData contains common data for all pages.
type PageData struct {
	Title       string
	CurrentPath string
	Admin       *storage.Session
	CSRFToken   string
	Flashes     []FlashMessage
	Data        any
}

// FlashMessage represents a flash message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// render renders a page template inside the layout with the given status.
// It clones the base template and parses the page-specific template into it,
// avoiding conflicts between "content" blocks in different pages. The page
// is rendered into a buffer first so a template error never produces half
// a page.
func (r *renderer) render(w http.ResponseWriter, status int, name string, data *PageData) error {
	tmpl, err := r.baseTemplate.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}

	pageTemplatePath := "templates/" + name
	if _, err := tmpl.ParseFS(r.templatesFS, pageTemplatePath); err != nil {
		return fmt.Errorf("parse page template %s: %w", pageTemplatePath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// Template helper functions

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

func formatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func truncate(n int, s string) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// statusColor returns badge classes for motorcycle, rental and audit statuses.
func statusColor(status any) string {
	switch fmt.Sprint(status) {
	case string(motoadmin.MotorcycleAvailable), string(motoadmin.RentalReturned), storage.AuditCompleted:
		return "bg-green-100 text-green-800"
	case string(motoadmin.MotorcycleRented):
		return "bg-yellow-100 text-yellow-800"
	case storage.AuditFailed:
		return "bg-red-100 text-red-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

// pageURL builds a list link keeping the search term.
func pageURL(path string, page int, search string) string {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		q.Set("search", search)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func add(a, b int) int {
	return a + b
}

func sub(a, b int) int {
	return a - b
}

// isActive reports whether the nav link for prefix is the current page.
func isActive(current, prefix string) bool {
	return current == prefix || strings.HasPrefix(current, prefix+"/")
}
