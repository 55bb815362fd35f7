package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, msg PushMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type fakeDirectory struct {
	users  map[string]*model.User
	admins map[string][]string
	err    error
}

func (d *fakeDirectory) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return u, nil
}

func (d *fakeDirectory) ListAdminIDs(_ context.Context, orgID string) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.admins[orgID], nil
}

func newDirectory() *fakeDirectory {
	return &fakeDirectory{
		users: map[string]*model.User{
			"a1": {ID: "a1", Role: model.RoleAdmin, PushToken: "tok-a1"},
			"a2": {ID: "a2", Role: model.RoleAdmin},
			"u1": {ID: "u1", Role: model.RoleCitizen, PushToken: "tok-u1"},
		},
		admins: map[string][]string{"org1": {"a1", "a2"}},
	}
}

func TestNotifyAdminsNewReport(t *testing.T) {
	push := new(MockPushSender)
	push.On("Send", mock.Anything, mock.MatchedBy(func(m PushMessage) bool {
		return m.To == "tok-a1" &&
			m.Title == "🔴 New Pothole Report" &&
			m.Body == "A new high priority pothole report has been submitted." &&
			m.Data["type"] == "new_report" &&
			m.Data["reportId"] == "r1"
	})).Return(nil).Once()

	n := NewNotifier(newDirectory(), push, zap.NewNop())
	res, err := n.NotifyAdminsNewReport(context.Background(), "r1", "org1", "Pothole", "High", "u1")
	require.NoError(t, err)

	// a2 has no push token
	assert.Equal(t, SendResult{SuccessCount: 1, FailureCount: 1, Total: 2}, res)
	push.AssertExpectations(t)
}

func TestNotifyAdminsNewReport_NoAdmins(t *testing.T) {
	n := NewNotifier(newDirectory(), new(MockPushSender), zap.NewNop())
	_, err := n.NotifyAdminsNewReport(context.Background(), "r1", "org-empty", "Pothole", "Low", "")
	assert.ErrorIs(t, err, errs.ErrNoAdmins)
}

func TestNotifyAdminsNewReport_DirectoryError(t *testing.T) {
	dir := newDirectory()
	dir.err = errors.New("db down")
	n := NewNotifier(dir, new(MockPushSender), zap.NewNop())
	_, err := n.NotifyAdminsNewReport(context.Background(), "r1", "org1", "Pothole", "Low", "")
	assert.ErrorContains(t, err, "db down")
}

func TestSendToUsers_CountsFailures(t *testing.T) {
	push := new(MockPushSender)
	push.On("Send", mock.Anything, mock.MatchedBy(func(m PushMessage) bool { return m.To == "tok-a1" })).
		Return(errors.New("expo down"))
	push.On("Send", mock.Anything, mock.MatchedBy(func(m PushMessage) bool { return m.To == "tok-u1" })).
		Return(nil)

	n := NewNotifier(newDirectory(), push, zap.NewNop())
	res := n.SendToUsers(context.Background(), []string{"a1", "u1", "ghost"}, "t", "b", nil)
	assert.Equal(t, SendResult{SuccessCount: 1, FailureCount: 2, Total: 3}, res)
}

func TestNotifyUserReportResolved(t *testing.T) {
	push := new(MockPushSender)
	push.On("Send", mock.Anything, PushMessage{
		To:    "tok-u1",
		Title: "✅ Report Resolved",
		Body:  "Your street light report at Main St has been marked as resolved!",
		Data:  map[string]interface{}{"type": "report_resolved", "reportId": "r1"},
	}).Return(nil)

	n := NewNotifier(newDirectory(), push, zap.NewNop())
	require.NoError(t, n.NotifyUserReportResolved(context.Background(), "u1", "r1", "Street Light", "Main St"))
	push.AssertExpectations(t)
}

func TestNotifyAdminsProofUploaded_NoAdminsIsNotAnError(t *testing.T) {
	n := NewNotifier(newDirectory(), new(MockPushSender), zap.NewNop())
	res, err := n.NotifyAdminsProofUploaded(context.Background(), "r1", "org-empty", "Sam", "Drainage")
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestNewReportMessage(t *testing.T) {
	tests := []struct {
		urgency   string
		wantTitle string
	}{
		{urgency: "High", wantTitle: "🔴 New Road Damage Report"},
		{urgency: "Medium", wantTitle: "🟡 New Road Damage Report"},
		{urgency: "Low", wantTitle: "🟢 New Road Damage Report"},
	}
	for _, tt := range tests {
		t.Run(tt.urgency, func(t *testing.T) {
			title, body := NewReportMessage("Road Damage", tt.urgency)
			assert.Equal(t, tt.wantTitle, title)
			assert.Contains(t, body, "road damage report")
		})
	}
}
