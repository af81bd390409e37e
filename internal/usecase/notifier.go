package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/internal/domain/service"
	"ecotrack/pkg/logger"
	"ecotrack/pkg/metrics"
)

// Notifier delivers domain events: e-mail to the affected party and a live
// broadcast for report events. Delivery runs on a single worker goroutine so
// publishers never wait on SMTP.
type Notifier struct {
	userRepo    repository.UserRepository
	mail        service.MailService
	broadcaster service.Broadcaster
	frontendURL string

	mu     sync.RWMutex
	closed bool
	events chan entity.DomainEvent
	wg     sync.WaitGroup
}

func NewNotifier(
	userRepo repository.UserRepository,
	mail service.MailService,
	broadcaster service.Broadcaster,
	frontendURL string,
	buffer int,
) *Notifier {
	if buffer <= 0 {
		buffer = 256
	}
	return &Notifier{
		userRepo:    userRepo,
		mail:        mail,
		broadcaster: broadcaster,
		frontendURL: frontendURL,
		events:      make(chan entity.DomainEvent, buffer),
	}
}

// Publish enqueues event. A full buffer drops it.
func (n *Notifier) Publish(ctx context.Context, event entity.DomainEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		logger.Warn("Notifier closed, dropping %s event", event.Type)
		return
	}

	select {
	case n.events <- event:
	default:
		metrics.RecordDroppedEvent()
		logger.Error("Notifier buffer full, dropping %s event", event.Type)
	}
}

// Start launches the worker. Events are processed with ctx's values but a
// cancelled ctx does not stop delivery; Close does.
func (n *Notifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for event := range n.events {
			n.handle(context.WithoutCancel(ctx), event)
		}
	}()
	logger.Info("Notifier started")
}

// Close stops accepting events and waits until the buffer is drained.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.events)
	n.mu.Unlock()

	n.wg.Wait()
}

func (n *Notifier) handle(ctx context.Context, event entity.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Notifier panic while handling %s: %v", event.Type, r)
		}
	}()

	if event.IsReportEvent() && n.broadcaster != nil {
		n.broadcaster.Broadcast(string(event.Type), event)
	}

	mail, err := n.compose(ctx, event)
	if err != nil {
		logger.WithComponent("notifier").WithField("event", event.Type).Warnf("Cannot resolve recipient: %v", err)
		return
	}
	if mail == nil || n.mail == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := n.mail.Send(sendCtx, *mail); err != nil {
		metrics.RecordNotification(string(mail.Template), false)
		logger.WithComponent("notifier").WithFields(logger.Fields{
			"event":    event.Type,
			"template": mail.Template,
		}).Errorf("Failed to send mail: %v", err)
		return
	}
	metrics.RecordNotification(string(mail.Template), true)
}

// compose builds the mail for event, or returns nil when nobody is notified.
func (n *Notifier) compose(ctx context.Context, event entity.DomainEvent) (*service.Mail, error) {
	switch event.Type {
	case entity.EventReportClaimed:
		poster, err := n.userRepo.GetByID(ctx, event.Report.PostedBy)
		if err != nil {
			return nil, fmt.Errorf("poster %s: %w", event.Report.PostedBy, err)
		}
		data := n.reportData(event.Report, poster)
		data["NgoName"] = n.displayName(ctx, event.ActorID)
		if event.Report.DueDate != nil {
			data["DueDate"] = event.Report.DueDate.Format("02 Jan 2006")
		}
		return &service.Mail{
			To:       poster.Email,
			Subject:  "Your report has been picked up",
			Template: service.MailReportClaimed,
			Data:     data,
		}, nil

	case entity.EventReportCompleted:
		poster, err := n.userRepo.GetByID(ctx, event.Report.PostedBy)
		if err != nil {
			return nil, fmt.Errorf("poster %s: %w", event.Report.PostedBy, err)
		}
		data := n.reportData(event.Report, poster)
		data["NgoName"] = n.displayName(ctx, event.ActorID)
		data["Resolution"] = event.Report.ResolutionDescription
		return &service.Mail{
			To:       poster.Email,
			Subject:  "Your report has been resolved",
			Template: service.MailReportResolved,
			Data:     data,
		}, nil

	case entity.EventReportOverdue:
		ngo, err := n.userRepo.GetByID(ctx, event.PreviousAssignee)
		if err != nil {
			return nil, fmt.Errorf("previous assignee %s: %w", event.PreviousAssignee, err)
		}
		data := n.reportData(event.Report, ngo)
		if event.PreviousDueDate != nil {
			data["DueDate"] = event.PreviousDueDate.Format("02 Jan 2006")
		}
		return &service.Mail{
			To:       ngo.Email,
			Subject:  "Deadline missed: report returned to the pool",
			Template: service.MailDeadlineMissed,
			Data:     data,
		}, nil

	case entity.EventNgoApproved:
		return &service.Mail{
			To:       event.NgoRequest.Email,
			Subject:  "Your NGO registration has been approved",
			Template: service.MailNgoApproved,
			Data: map[string]interface{}{
				"Name":     event.NgoRequest.Name,
				"LoginURL": n.frontendURL + "/login",
			},
		}, nil

	case entity.EventNgoRejected:
		return &service.Mail{
			To:       event.NgoRequest.Email,
			Subject:  "Update on your NGO registration",
			Template: service.MailNgoRejected,
			Data: map[string]interface{}{
				"Name": event.NgoRequest.Name,
			},
		}, nil

	case entity.EventPasswordResetRequested:
		return &service.Mail{
			To:       event.Email,
			Subject:  "Your password reset code",
			Template: service.MailOTP,
			Data: map[string]interface{}{
				"OTP": event.OTP,
			},
		}, nil
	}
	return nil, nil
}

func (n *Notifier) reportData(report *entity.Report, recipient *entity.User) map[string]interface{} {
	return map[string]interface{}{
		"Name":      recipient.Name,
		"Title":     report.Title,
		"City":      report.City,
		"ReportURL": fmt.Sprintf("%s/reports/%s", n.frontendURL, report.ID),
	}
}

func (n *Notifier) displayName(ctx context.Context, userID string) string {
	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "An NGO"
	}
	return user.Name
}
