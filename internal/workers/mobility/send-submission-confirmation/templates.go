package sendsubmissionconfirmation

import (
	"bytes"
	"text/template"
)

var (
	applicantSubject = template.Must(template.New("subject").Parse(
		`Mobility application received ({{.School1Label}})`))

	applicantBody = template.Must(template.New("body").Parse(`Hello {{.FirstName}} {{.LastName}},

Your mobility application has been received.

First choice: {{.School1Label}}
{{- if .School2Label}}
Second choice: {{.School2Label}}
{{- end}}
Submitted at: {{.CreatedAt}}
Reference: {{.DatabaseID}}

The international relations office will contact you once the selection is complete.
`))

	staffBody = template.Must(template.New("staff").Parse(
		`New mobility application from {{.FirstName}} {{.LastName}} <{{.Email}}>: {{.School1Label}}{{if .School2Label}} / {{.School2Label}}{{end}} (ref {{.DatabaseID}})`))
)

// message is the data the templates render.
type message struct {
	Input
	School1Label string
	School2Label string
}

func render(t *template.Template, m message) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}
