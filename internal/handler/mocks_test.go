package handler

import (
	"context"
	"io"

	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, in service.CreateReportInput) (*model.Report, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, id string) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, in service.ListReportsInput) ([]model.Report, int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).([]model.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportService) UpdateStatus(ctx context.Context, id string, status model.ReportStatus, actorID string) (*model.Report, error) {
	args := m.Called(ctx, id, status, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) Assign(ctx context.Context, id string, in service.AssignInput) (*model.Report, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) AddProof(ctx context.Context, id, staffName string, images []string) (*model.Report, error) {
	args := m.Called(ctx, id, staffName, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) CreateFeedbackRequest(ctx context.Context, reportID, userID string, snapshot model.Report) (*model.FeedbackRequest, error) {
	args := m.Called(ctx, reportID, userID, snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeedbackRequest), args.Error(1)
}

func (m *MockFeedbackService) SubmitFeedback(ctx context.Context, feedbackRequestID, reportID string, in service.FeedbackSubmission, shouldResubmit bool) (*service.SubmitResult, error) {
	args := m.Called(ctx, feedbackRequestID, reportID, in, shouldResubmit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

func (m *MockFeedbackService) GetPendingFeedbackRequests(ctx context.Context, userID string) []model.FeedbackRequest {
	return m.Called(ctx, userID).Get(0).([]model.FeedbackRequest)
}

func (m *MockFeedbackService) CheckAndRemindPendingFeedback(ctx context.Context, userID string) service.Reminder {
	return m.Called(ctx, userID).Get(0).(service.Reminder)
}

func (m *MockFeedbackService) GetOrganizationFeedbackStats(ctx context.Context, organizationID string) service.FeedbackStats {
	return m.Called(ctx, organizationID).Get(0).(service.FeedbackStats)
}

func (m *MockFeedbackService) GetReportFeedback(ctx context.Context, reportID string) *model.FeedbackRequest {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.FeedbackRequest)
}

func (m *MockFeedbackService) GetStaffFeedback(ctx context.Context, staffID, teamID string) []model.FeedbackRequest {
	return m.Called(ctx, staffID, teamID).Get(0).([]model.FeedbackRequest)
}

type MockBackfiller struct {
	mock.Mock
}

func (m *MockBackfiller) BackfillFeedbackRequests(ctx context.Context) (service.BackfillResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.BackfillResult), args.Error(1)
}

func (m *MockBackfiller) BackfillFeedbackForOrganization(ctx context.Context, organizationID string) (service.BackfillResult, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(service.BackfillResult), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, uri, bucket string) (string, error) {
	args := m.Called(ctx, uri, bucket)
	return args.String(0), args.Error(1)
}

func (m *MockUploader) UploadStream(ctx context.Context, r io.Reader, filename, bucket string) (string, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, string(body), filename, bucket)
	return args.String(0), args.Error(1)
}

type MockPushTokenStore struct {
	mock.Mock
}

func (m *MockPushTokenStore) UpdatePushToken(ctx context.Context, id, token string) error {
	return m.Called(ctx, id, token).Error(0)
}
