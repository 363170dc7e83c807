package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/gateway"
	apperrors "github.com/spec-kit/crm-console/pkg/util"
)

// JobKind labels the recipient class of a notification job.
type JobKind string

const (
	JobKindContact JobKind = "contact"
	JobKindAdmin   JobKind = "admin"
)

// Job is one outbound email in a fan-out batch.
type Job struct {
	ID      string
	Kind    JobKind
	To      string
	Subject string
	Message string
}

// Delivery records the outcome of one job. Failures never abort the
// batch; they are carried here and logged.
type Delivery struct {
	Job Job
	Err error
}

// StatusChangeJobs builds the fan-out batch for a committed transition
// into Resolved or Rejected:
//
//  1. the requester's contact, when resolvable and reachable by email;
//  2. every Admin with an email on file, but only when an Employee moved
//     the ticket to Resolved.
//
// Other stages, and transitions that never committed, get no jobs.
func StatusChangeJobs(ticket domain.Ticket, contact *domain.Contact, actor domain.User, admins []domain.User) []Job {
	target := ticket.Status
	if target != domain.TicketStatusResolved && target != domain.TicketStatusRejected {
		return nil
	}

	var jobs []Job
	if contact != nil && contact.Email != "" {
		jobs = append(jobs, Job{
			ID:      uuid.NewString(),
			Kind:    JobKindContact,
			To:      contact.Email,
			Subject: fmt.Sprintf("Ticket Update: %s is %s", ticket.Title, target),
			Message: fmt.Sprintf("Hello %s,<br>Your ticket \"<strong>%s</strong>\" is now <strong>%s</strong>.",
				contact.Name, ticket.Title, target),
		})
	}

	if target == domain.TicketStatusResolved && actor.Role == domain.RoleEmployee {
		actorName := actor.Name
		if actorName == "" {
			actorName = "An Employee"
		}
		for _, admin := range admins {
			if admin.Role != domain.RoleAdmin || admin.Email == "" {
				continue
			}
			jobs = append(jobs, Job{
				ID:      uuid.NewString(),
				Kind:    JobKindAdmin,
				To:      admin.Email,
				Subject: fmt.Sprintf("Ticket Resolved: %s", ticket.Title),
				Message: fmt.Sprintf("Hello Admin,<br><br>Employee <strong>%s</strong> has resolved the ticket \"<strong>%s</strong>\".<br>Please review if necessary.",
					actorName, ticket.Title),
			})
		}
	}

	return jobs
}

// Dispatcher sends notification batches through the email side channel.
type Dispatcher struct {
	gateway gateway.Gateway
	logger  *zap.Logger
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(gw gateway.Gateway, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{gateway: gw, logger: logger}
}

// Dispatch sends every job independently and records each outcome. A
// failed job is logged and swallowed; it never blocks the rest of the
// batch and never propagates to the caller's transition.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []Job) []Delivery {
	deliveries := make([]Delivery, 0, len(jobs))
	for _, job := range jobs {
		err := d.gateway.SendEmail(ctx, gateway.EmailMessage{
			To:      job.To,
			Subject: job.Subject,
			Message: job.Message,
		})
		if err != nil {
			wrapped := apperrors.NewNotificationError(job.To, err)
			d.logger.Warn("notification delivery failed",
				zap.String("job_id", job.ID),
				zap.String("kind", string(job.Kind)),
				zap.String("to", job.To),
				zap.Error(err))
			deliveries = append(deliveries, Delivery{Job: job, Err: wrapped})
			continue
		}
		d.logger.Info("notification sent",
			zap.String("job_id", job.ID),
			zap.String("kind", string(job.Kind)),
			zap.String("to", job.To))
		deliveries = append(deliveries, Delivery{Job: job})
	}
	return deliveries
}
