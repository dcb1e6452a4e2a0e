// Package view renders the dashboard pages from embedded templates.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/lucerolu/Dshb-dm/internal/shared"
	"github.com/lucerolu/Dshb-dm/web"
)

var esMX = message.NewPrinter(language.MustParse("es-MX"))

// Currency formats an amount as Mexican pesos with thousand grouping.
func Currency(d decimal.Decimal) string {
	v, _ := d.Float64()
	return CurrencyFloat(v)
}

// CurrencyFloat is Currency for values already widened to float64.
func CurrencyFloat(v float64) string {
	return esMX.Sprintf("$%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Percent formats a percentage with two decimals.
func Percent(v float64) string {
	return esMX.Sprintf("%v%%", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	User        string
	Flash       *shared.FlashMessage
	CurrentPath string
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"currency":  Currency,
		"currencyf": CurrencyFloat,
		"percent":   Percent,
		"shortDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
