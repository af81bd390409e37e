package mail

import (
	"html/template"

	"ecotrack/internal/domain/service"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 560px; margin: auto;">
<h2 style="color: #15803d;">EcoTrack</h2>
{{template "content" .}}
<p style="font-size: 12px; color: #6b7280;">You are receiving this e-mail because of activity on your EcoTrack account.</p>
</body>
</html>{{end}}`

var bodies = map[service.MailTemplate]string{
	service.MailOTP: `{{define "content"}}
<p>Use the code below to reset your password. It expires in 10 minutes.</p>
<p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.OTP}}</strong></p>
<p>If you did not request a reset you can ignore this e-mail.</p>
{{end}}`,

	service.MailNgoApproved: `{{define "content"}}
<p>Hello {{.Name}},</p>
<p>Your NGO registration has been approved. You can now sign in and start picking up reports.</p>
{{if .LoginURL}}<p><a href="{{.LoginURL}}">Sign in to EcoTrack</a></p>{{end}}
{{end}}`,

	service.MailNgoRejected: `{{define "content"}}
<p>Hello {{.Name}},</p>
<p>After review we were unable to approve your NGO registration. You are welcome to submit a new request with updated details.</p>
{{end}}`,

	service.MailReportClaimed: `{{define "content"}}
<p>Hello {{.Name}},</p>
<p>Your report <strong>{{.Title}}</strong> has been picked up by <strong>{{.NgoName}}</strong>.{{if .DueDate}} They expect to resolve it by {{.DueDate}}.{{end}}</p>
<p><a href="{{.ReportURL}}">View report</a></p>
{{end}}`,

	service.MailReportResolved: `{{define "content"}}
<p>Hello {{.Name}},</p>
<p>Good news: <strong>{{.NgoName}}</strong> has resolved your report <strong>{{.Title}}</strong>.</p>
{{if .Resolution}}<p>{{.Resolution}}</p>{{end}}
<p><a href="{{.ReportURL}}">See the resolution photos</a></p>
{{end}}`,

	service.MailDeadlineMissed: `{{define "content"}}
<p>Hello {{.Name}},</p>
<p>The deadline{{if .DueDate}} of {{.DueDate}}{{end}} for <strong>{{.Title}}</strong> has passed without a resolution. The report has been returned to the pending pool so another NGO can pick it up.</p>
<p><a href="{{.ReportURL}}">View report</a></p>
{{end}}`,
}

// parseTemplates builds one template set per mail type sharing the layout.
func parseTemplates() map[service.MailTemplate]*template.Template {
	sets := make(map[service.MailTemplate]*template.Template, len(bodies))
	for name, body := range bodies {
		t := template.Must(template.New("layout").Parse(layout))
		sets[name] = template.Must(t.Parse(body))
	}
	return sets
}
