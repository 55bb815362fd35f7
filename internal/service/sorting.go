package service

import (
	"sort"

	"github.com/fixora/fixora-service/internal/model"
)

// UrgencyPriority ranks a report for triage: High=1, Medium=2, Low=3.
// Reports without a known urgency rank as Medium. The predicted urgency is
// used when none was set on the report.
func UrgencyPriority(r *model.Report) int {
	urgency := r.Urgency
	if urgency == "" {
		urgency = r.PredictedUrgency()
	}
	switch urgency {
	case model.UrgencyHigh:
		return 1
	case model.UrgencyLow:
		return 3
	default:
		return 2
	}
}

// SortByUrgency orders reports High → Medium → Low, newest first within a level.
func SortByUrgency(reports []model.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		pi, pj := UrgencyPriority(&reports[i]), UrgencyPriority(&reports[j])
		if pi != pj {
			return pi < pj
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}
