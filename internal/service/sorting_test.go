package service

import (
	"testing"
	"time"

	"github.com/fixora/fixora-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestUrgencyPriority(t *testing.T) {
	tests := []struct {
		name   string
		report model.Report
		want   int
	}{
		{name: "high", report: model.Report{Urgency: "High"}, want: 1},
		{name: "medium", report: model.Report{Urgency: "Medium"}, want: 2},
		{name: "low", report: model.Report{Urgency: "Low"}, want: 3},
		{name: "unknown", report: model.Report{Urgency: "Critical"}, want: 2},
		{name: "missing", report: model.Report{}, want: 2},
		{name: "predicted", report: model.Report{PredictionMetadata: model.JSON{"urgency": "Low"}}, want: 3},
		{name: "explicit wins", report: model.Report{Urgency: "High", PredictionMetadata: model.JSON{"urgency": "Low"}}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UrgencyPriority(&tt.report))
		})
	}
}

func TestSortByUrgency(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	reports := []model.Report{
		{ID: "low", Urgency: "Low", CreatedAt: base.Add(5 * time.Hour)},
		{ID: "med-old", Urgency: "Medium", CreatedAt: base},
		{ID: "high", Urgency: "High", CreatedAt: base},
		{ID: "med-new", CreatedAt: base.Add(time.Hour)},
		{ID: "high-predicted", PredictionMetadata: model.JSON{"urgency": "High"}, CreatedAt: base.Add(2 * time.Hour)},
	}
	SortByUrgency(reports)

	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"high-predicted", "high", "med-new", "med-old", "low"}, ids)
}
