package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// PageData is the input of the full page. LoadingMessage and FailureMessage
// are what the page script shows while an action is pending and when it fails
// before the service could answer with panels.
type PageData struct {
	SessionID      string
	CityMaxLength  int
	Locate         models.LocateOptions
	LoadingMessage string
	FailureMessage string
	View           ViewModel
}

// LocateTimeoutMillis is the geolocation timeout as handed to the browser.
func (d PageData) LocateTimeoutMillis() int64 {
	return d.Locate.Timeout.Milliseconds()
}

// LocateLabel is the idle label the script restores on the trigger.
func (d PageData) LocateLabel() string {
	return LocateLabel
}

// LocatingLabel is shown on the trigger while the browser looks up a position.
func (d PageData) LocatingLabel() string {
	return LocatingLabel
}

// Imperial reports whether the unit checkbox starts checked.
func (d PageData) Imperial() bool {
	return d.View.Unit == models.UnitImperial
}

// Page renders the full document and the panels fragment swapped in after
// each action.
type Page struct {
	tmpl *template.Template
}

// NewPage parses the embedded templates.
func NewPage() (*Page, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Page{tmpl: tmpl}, nil
}

// Render writes the whole page.
func (p *Page) Render(w io.Writer, data PageData) error {
	return p.tmpl.ExecuteTemplate(w, "page", data)
}

// RenderPanels writes only the panels fragment for vm.
func (p *Page) RenderPanels(w io.Writer, vm ViewModel) error {
	return p.tmpl.ExecuteTemplate(w, "panels", vm)
}
