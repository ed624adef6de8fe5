package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer
func Templates() *template.Template {
	funcs := template.FuncMap{
		"price": formatPrice,
		"stars": func(n int) string { return strings.Repeat("★", n) + strings.Repeat("☆", 5-n) },
		"year":  func() int { return time.Now().Year() },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// formatPrice renders euros with thousands separators: 125000 -> "€ 125.000"
func formatPrice(v float64) string {
	if v <= 0 {
		return "Price on request"
	}
	digits := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "€ " + b.String()
}
