package service

import "context"

type MailTemplate string

const (
	MailOTP            MailTemplate = "otp"
	MailNgoApproved    MailTemplate = "ngo_approved"
	MailNgoRejected    MailTemplate = "ngo_rejected"
	MailReportClaimed  MailTemplate = "report_claimed"
	MailReportResolved MailTemplate = "report_resolved"
	MailDeadlineMissed MailTemplate = "deadline_missed"
)

// Mail is a templated message. Data is rendered into the template body.
type Mail struct {
	To       string
	Subject  string
	Template MailTemplate
	Data     map[string]interface{}
}

type MailService interface {
	Send(ctx context.Context, mail Mail) error
}
