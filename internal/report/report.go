// Package report renders the daily forecast email.
package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/kjstillabower/weather-emailer/internal/models"
)

const (
	subjectPrefix   = "Your Daily Weather & Outfit Guide - "
	subjectLayout   = "January 02, 2006"
	generatedLayout = "2006-01-02 at 03:04 PM"
)

// Email is a rendered message ready for the mailer.
type Email struct {
	Subject string
	Text    string
	HTML    string
}

type view struct {
	models.Summary
	Recommendations []string
	Generated       string
}

var textTmpl = template.Must(template.New("text").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Good morning!

Here's your weather forecast and clothing recommendations for today:

WEATHER SUMMARY
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
Current: {{.CurrentTemp}}°F (feels like {{.FeelsLike}}°F)
High: {{.High}}°F
Low: {{.Low}}°F
Conditions: {{.Description}}
Precipitation chance: {{.PrecipitationPct}}%
Humidity: {{.Humidity}}%
Wind speed: {{.WindSpeed}} mph

WHAT TO WEAR TODAY
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
{{range $i, $r := .Recommendations}}{{inc $i}}. {{$r}}
{{end}}
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

Have a great day!

---
Generated on {{.Generated}}
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
<p>Good morning!</p>
<p>Here's your weather forecast and clothing recommendations for today:</p>
<h2>Weather summary</h2>
<table cellpadding="4">
<tr><td>Current</td><td>{{.CurrentTemp}}°F (feels like {{.FeelsLike}}°F)</td></tr>
<tr><td>High</td><td>{{.High}}°F</td></tr>
<tr><td>Low</td><td>{{.Low}}°F</td></tr>
<tr><td>Conditions</td><td>{{.Description}}</td></tr>
<tr><td>Precipitation chance</td><td>{{.PrecipitationPct}}%</td></tr>
<tr><td>Humidity</td><td>{{.Humidity}}%</td></tr>
<tr><td>Wind speed</td><td>{{.WindSpeed}} mph</td></tr>
</table>
<h2>What to wear today</h2>
<ol>
{{range .Recommendations}}<li>{{.}}</li>
{{end}}</ol>
<p>Have a great day!</p>
<hr>
<p style="font-size: small; color: #666;">Generated on {{.Generated}}</p>
</body>
</html>
`))

// Subject formats the subject line for the day of now.
func Subject(now time.Time) string {
	return subjectPrefix + now.Format(subjectLayout)
}

// Render builds subject, plaintext and HTML bodies. now should already be in
// the zone the reader expects (see Location).
func Render(s models.Summary, recs []string, now time.Time) (Email, error) {
	v := view{Summary: s, Recommendations: recs, Generated: now.Format(generatedLayout)}

	var text bytes.Buffer
	if err := textTmpl.Execute(&text, v); err != nil {
		return Email{}, fmt.Errorf("render text body: %w", err)
	}
	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, v); err != nil {
		return Email{}, fmt.Errorf("render html body: %w", err)
	}

	return Email{
		Subject: Subject(now),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
