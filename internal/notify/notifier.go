package notify

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListAdminIDs(ctx context.Context, organizationID string) ([]string, error)
}

// SendResult counts the outcome of a multi-recipient send.
type SendResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
	Total        int `json:"total"`
}

// Notifier formats domain notifications and sends them to users' devices.
type Notifier struct {
	users       UserDirectory
	push        PushSender
	log         *zap.Logger
	concurrency int
}

func NewNotifier(users UserDirectory, push PushSender, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{users: users, push: push, log: log, concurrency: 8}
}

// SendToUser pushes a message to the user's registered device.
func (n *Notifier) SendToUser(ctx context.Context, userID, title, body string, data map[string]interface{}) error {
	u, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("notify user %s: %w", userID, err)
	}
	if u.PushToken == "" {
		return fmt.Errorf("notify user %s: %w", userID, errs.ErrNoPushToken)
	}
	return n.push.Send(ctx, PushMessage{To: u.PushToken, Title: title, Body: body, Data: data})
}

// SendToUsers sends to every user concurrently. Individual failures are
// counted, not returned.
func (n *Notifier) SendToUsers(ctx context.Context, userIDs []string, title, body string, data map[string]interface{}) SendResult {
	var ok, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			if err := n.SendToUser(gctx, id, title, body, data); err != nil {
				n.log.Warn("push notification failed", zap.String("user_id", id), zap.Error(err))
				atomic.AddInt64(&failed, 1)
				return nil
			}
			atomic.AddInt64(&ok, 1)
			return nil
		})
	}
	_ = g.Wait()
	res := SendResult{SuccessCount: int(ok), FailureCount: int(failed), Total: len(userIDs)}
	n.log.Info("notifications sent",
		zap.Int("succeeded", res.SuccessCount),
		zap.Int("failed", res.FailureCount))
	return res
}

// NotifyAdminsNewReport alerts every admin of the organization about a new
// (or resubmitted) report. It fails with errs.ErrNoAdmins when the
// organization has none.
func (n *Notifier) NotifyAdminsNewReport(ctx context.Context, reportID, organizationID, category, urgency, submittedBy string) (SendResult, error) {
	adminIDs, err := n.users.ListAdminIDs(ctx, organizationID)
	if err != nil {
		return SendResult{}, fmt.Errorf("list admins: %w", err)
	}
	if len(adminIDs) == 0 {
		return SendResult{}, fmt.Errorf("%w %s", errs.ErrNoAdmins, organizationID)
	}
	title, body := NewReportMessage(category, urgency)
	data := map[string]interface{}{
		"type":           "new_report",
		"reportId":       reportID,
		"organizationId": organizationID,
		"urgency":        urgency,
	}
	if submittedBy != "" {
		data["submittedBy"] = submittedBy
	}
	return n.SendToUsers(ctx, adminIDs, title, body, data), nil
}

// NotifyStaffAssignment tells assigned staff about their new report.
func (n *Notifier) NotifyStaffAssignment(ctx context.Context, reportID string, staffIDs []string, category, address string) SendResult {
	body := fmt.Sprintf("You've been assigned to a %s report at %s.", strings.ToLower(category), address)
	return n.SendToUsers(ctx, staffIDs, "📋 New Assignment", body, map[string]interface{}{
		"type":     "assignment",
		"reportId": reportID,
	})
}

// NotifyAdminsProofUploaded tells organization admins that staff uploaded proof of work.
func (n *Notifier) NotifyAdminsProofUploaded(ctx context.Context, reportID, organizationID, staffName, category string) (SendResult, error) {
	adminIDs, err := n.users.ListAdminIDs(ctx, organizationID)
	if err != nil {
		return SendResult{}, fmt.Errorf("list admins: %w", err)
	}
	if len(adminIDs) == 0 {
		n.log.Info("no admins to notify of proof upload", zap.String("organization_id", organizationID))
		return SendResult{}, nil
	}
	body := fmt.Sprintf("%s has uploaded proof for a %s report.", staffName, strings.ToLower(category))
	return n.SendToUsers(ctx, adminIDs, "📸 Proof of Work Uploaded", body, map[string]interface{}{
		"type":           "proof_uploaded",
		"reportId":       reportID,
		"organizationId": organizationID,
	}), nil
}

// NotifyUserReportResolved tells the citizen their report was resolved.
func (n *Notifier) NotifyUserReportResolved(ctx context.Context, userID, reportID, category, address string) error {
	body := fmt.Sprintf("Your %s report at %s has been marked as resolved!", strings.ToLower(category), address)
	return n.SendToUser(ctx, userID, "✅ Report Resolved", body, map[string]interface{}{
		"type":     "report_resolved",
		"reportId": reportID,
	})
}

// NotifyUserReportInProgress tells the citizen that staff started working on the report.
func (n *Notifier) NotifyUserReportInProgress(ctx context.Context, userID, reportID, category string) error {
	body := fmt.Sprintf("Staff has started working on your %s report.", strings.ToLower(category))
	return n.SendToUser(ctx, userID, "🔨 Work In Progress", body, map[string]interface{}{
		"type":     "report_in_progress",
		"reportId": reportID,
	})
}

// NewReportMessage returns the title and body of the admin alert for a new report.
func NewReportMessage(category, urgency string) (string, string) {
	emoji := "🟢"
	switch urgency {
	case model.UrgencyHigh:
		emoji = "🔴"
	case model.UrgencyMedium:
		emoji = "🟡"
	}
	title := fmt.Sprintf("%s New %s Report", emoji, category)
	body := fmt.Sprintf("A new %s priority %s report has been submitted.", strings.ToLower(urgency), strings.ToLower(category))
	return title, body
}
