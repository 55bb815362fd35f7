package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/observability"
	"github.com/fixora/fixora-service/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FeedbackStats summarizes completed feedback of an organization.
// Rates are percentages; averages and rates carry one decimal.
type FeedbackStats struct {
	TotalFeedbacks     int     `json:"totalFeedbacks"`
	AverageRating      float64 `json:"averageRating"`
	ResolvedCount      int     `json:"resolvedCount"`
	NotResolvedCount   int     `json:"notResolvedCount"`
	ResolutionRate     float64 `json:"resolutionRate"`
	RecommendationRate float64 `json:"recommendationRate"`
}

// Reminder is the pending-feedback badge shown when the app opens.
type Reminder struct {
	Count    int                     `json:"count"`
	Requests []model.FeedbackRequest `json:"requests"`
}

// GetPendingFeedbackRequests returns the user's open requests, newest first.
// Requests past their expiry are marked expired and left out. Failures yield
// an empty list.
func (s *FeedbackService) GetPendingFeedbackRequests(ctx context.Context, userID string) []model.FeedbackRequest {
	ctx, span := observability.StartSpan(ctx, "feedback.pending", attribute.String("user.id", userID))
	var err error
	defer observability.FinishSpan(span, &err)

	var items []model.FeedbackRequest
	items, err = s.feedback.List(ctx, repository.FeedbackFilter{UserID: userID, Status: model.FeedbackStatusPending})
	if err != nil {
		s.log.Error("list pending feedback requests", zap.String("user_id", userID), zap.Error(err))
		return []model.FeedbackRequest{}
	}

	now := s.now()
	out := make([]model.FeedbackRequest, 0, len(items))
	for _, fr := range items {
		if fr.Status != model.FeedbackStatusPending {
			continue
		}
		if fr.ExpiresAt != nil && fr.ExpiresAt.Before(now) {
			if err = s.feedback.Update(ctx, fr.ID, map[string]interface{}{
				"status":     string(model.FeedbackStatusExpired),
				"expired_at": now,
			}); err != nil {
				s.log.Error("expire feedback request", zap.String("feedback_request_id", fr.ID), zap.Error(err))
				return []model.FeedbackRequest{}
			}
			s.log.Info("feedback request expired", zap.String("feedback_request_id", fr.ID), zap.String("report_id", fr.ReportID))
			continue
		}
		out = append(out, fr)
	}
	sortNewestFirst(out, func(fr *model.FeedbackRequest) *time.Time { return fr.CreatedAt })
	return out
}

// CheckAndRemindPendingFeedback counts the user's open requests.
func (s *FeedbackService) CheckAndRemindPendingFeedback(ctx context.Context, userID string) Reminder {
	pending := s.GetPendingFeedbackRequests(ctx, userID)
	return Reminder{Count: len(pending), Requests: pending}
}

// GetOrganizationFeedbackStats aggregates completed feedback of the
// organization. Failures yield zeroed stats.
func (s *FeedbackService) GetOrganizationFeedbackStats(ctx context.Context, organizationID string) FeedbackStats {
	ctx, span := observability.StartSpan(ctx, "feedback.org_stats", attribute.String("organization.id", organizationID))
	var err error
	defer observability.FinishSpan(span, &err)

	var items []model.FeedbackRequest
	items, err = s.feedback.List(ctx, repository.FeedbackFilter{OrganizationID: organizationID, Status: model.FeedbackStatusCompleted})
	if err != nil {
		s.log.Error("list organization feedback", zap.String("organization_id", organizationID), zap.Error(err))
		return FeedbackStats{}
	}

	var stats FeedbackStats
	var ratingSum, recommended int
	for _, fr := range items {
		if fr.Status != model.FeedbackStatusCompleted {
			continue
		}
		stats.TotalFeedbacks++
		if fr.Rating > 0 {
			ratingSum += fr.Rating
		}
		if fr.IsResolved != nil && *fr.IsResolved {
			stats.ResolvedCount++
		} else {
			stats.NotResolvedCount++
		}
		if fr.WouldRecommend {
			recommended++
		}
	}
	if n := float64(stats.TotalFeedbacks); n > 0 {
		stats.AverageRating = round1(float64(ratingSum) / n)
		stats.ResolutionRate = round1(float64(stats.ResolvedCount) / n * 100)
		stats.RecommendationRate = round1(float64(recommended) / n * 100)
	}
	return stats
}

// GetReportFeedback returns the first completed feedback of the report, in
// arrival order, or nil.
func (s *FeedbackService) GetReportFeedback(ctx context.Context, reportID string) *model.FeedbackRequest {
	items, err := s.feedback.List(ctx, repository.FeedbackFilter{ReportID: reportID, Status: model.FeedbackStatusCompleted})
	if err != nil {
		s.log.Error("list report feedback", zap.String("report_id", reportID), zap.Error(err))
		return nil
	}
	for i := range items {
		if items[i].Status == model.FeedbackStatusCompleted {
			fr := items[i]
			return &fr
		}
	}
	return nil
}

// GetStaffFeedback returns completed feedback for reports handled by a staff
// member or by a team, most recently submitted first. Exactly one of staffID
// and teamID must be set; otherwise the result is empty.
func (s *FeedbackService) GetStaffFeedback(ctx context.Context, staffID, teamID string) []model.FeedbackRequest {
	if (staffID == "") == (teamID == "") {
		return []model.FeedbackRequest{}
	}
	f := repository.FeedbackFilter{StaffID: staffID, TeamID: teamID, Status: model.FeedbackStatusCompleted}
	items, err := s.feedback.List(ctx, f)
	if err != nil {
		s.log.Error("list staff feedback", zap.String("staff_id", staffID), zap.String("team_id", teamID), zap.Error(err))
		return []model.FeedbackRequest{}
	}
	out := make([]model.FeedbackRequest, 0, len(items))
	for _, fr := range items {
		if fr.Status == model.FeedbackStatusCompleted {
			out = append(out, fr)
		}
	}
	sortNewestFirst(out, func(fr *model.FeedbackRequest) *time.Time { return fr.SubmittedAt })
	return out
}

// sortNewestFirst orders by the timestamp descending; missing timestamps go last.
func sortNewestFirst(items []model.FeedbackRequest, ts func(*model.FeedbackRequest) *time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := ts(&items[i]), ts(&items[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
