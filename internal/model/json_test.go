package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_ValueAndScan(t *testing.T) {
	in := JSON{"urgency": "High", "confidence": 0.9}

	v, err := in.Value()
	require.NoError(t, err)

	var out JSON
	require.NoError(t, out.Scan(v))
	assert.Equal(t, "High", out["urgency"])
	assert.InDelta(t, 0.9, out["confidence"], 1e-9)
}

func TestJSON_ScanNil(t *testing.T) {
	out := JSON{"a": 1}
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)

	v, err := JSON(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSON_ScanUnsupported(t *testing.T) {
	var out JSON
	assert.Error(t, out.Scan(42))
}

func TestReportStatus_Valid(t *testing.T) {
	assert.True(t, ReportStatusNeedsRework.Valid())
	assert.True(t, ReportStatusVerifiedResolved.Valid())
	assert.False(t, ReportStatus("closed").Valid())
}

func TestReport_PredictedUrgency(t *testing.T) {
	r := &Report{PredictionMetadata: JSON{"urgency": "Low"}}
	assert.Equal(t, "Low", r.PredictedUrgency())
	assert.Equal(t, "", (&Report{}).PredictedUrgency())
}
