package service

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/notify"
	"github.com/fixora/fixora-service/internal/repository"
	"gorm.io/gorm/schema"
)

var naming = schema.NamingStrategy{}

// applyChanges sets struct fields from a column-keyed change map the way a
// gorm Updates(map) call would persist them.
func applyChanges(dst interface{}, changes map[string]interface{}) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for col, val := range changes {
		idx := -1
		for i := 0; i < t.NumField(); i++ {
			if naming.ColumnName("", t.Field(i).Name) == col {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown column %q on %s", col, t.Name())
		}
		f := v.Field(idx)
		rv := reflect.ValueOf(val)
		switch {
		case !rv.IsValid():
			f.Set(reflect.Zero(f.Type()))
		case rv.Type().AssignableTo(f.Type()):
			f.Set(rv)
		case rv.Type().ConvertibleTo(f.Type()):
			f.Set(rv.Convert(f.Type()))
		case f.Kind() == reflect.Ptr && rv.Type().ConvertibleTo(f.Type().Elem()):
			p := reflect.New(f.Type().Elem())
			p.Elem().Set(rv.Convert(f.Type().Elem()))
			f.Set(p)
		default:
			return fmt.Errorf("cannot set %s (%s) from %T", col, f.Type(), val)
		}
	}
	return nil
}

type fakeReports struct {
	mu        sync.Mutex
	seq       int
	items     map[string]*model.Report
	createErr error
	updateErr error
	listErr   error
	now       func() time.Time
}

func newFakeReports(now func() time.Time) *fakeReports {
	return &fakeReports{items: map[string]*model.Report{}, now: now}
}

func (f *fakeReports) put(r model.Report) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := r
	f.items[r.ID] = &cp
}

func (f *fakeReports) get(id string) *model.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (f *fakeReports) Create(_ context.Context, r *model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if r.ID == "" {
		f.seq++
		r.ID = fmt.Sprintf("report-%d", f.seq)
	}
	if r.CreatedAt.IsZero() && f.now != nil {
		r.CreatedAt = f.now()
	}
	cp := *r
	f.items[r.ID] = &cp
	return nil
}

func (f *fakeReports) GetByID(_ context.Context, id string) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, errs.ErrReportNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReports) Update(_ context.Context, id string, changes map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	r, ok := f.items[id]
	if !ok {
		return errs.ErrReportNotFound
	}
	return applyChanges(r, changes)
}

func (f *fakeReports) List(_ context.Context, flt repository.ReportFilter) ([]model.Report, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []model.Report
	for _, r := range f.items {
		if flt.UserID != "" && r.UserID != flt.UserID {
			continue
		}
		if flt.OrganizationID != "" && r.OrganizationID != flt.OrganizationID {
			continue
		}
		if flt.Status != "" && r.Status != flt.Status {
			continue
		}
		if flt.StaffID != "" && !contains(r.AssignedStaffIDs, flt.StaffID) {
			continue
		}
		if flt.TeamID != "" && r.AssignedTeamID != flt.TeamID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, int64(len(out)), nil
}

type fakeFeedback struct {
	mu        sync.Mutex
	seq       int
	items     []*model.FeedbackRequest
	createErr error
	updateErr error
	listErr   error
}

func newFakeFeedback() *fakeFeedback {
	return &fakeFeedback{}
}

func (f *fakeFeedback) put(fr model.FeedbackRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := fr
	f.items = append(f.items, &cp)
}

func (f *fakeFeedback) get(id string) *model.FeedbackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fr := range f.items {
		if fr.ID == id {
			cp := *fr
			return &cp
		}
	}
	return nil
}

func (f *fakeFeedback) forReport(reportID string) []model.FeedbackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FeedbackRequest
	for _, fr := range f.items {
		if fr.ReportID == reportID {
			out = append(out, *fr)
		}
	}
	return out
}

func (f *fakeFeedback) Create(_ context.Context, fr *model.FeedbackRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if fr.ID == "" {
		f.seq++
		fr.ID = fmt.Sprintf("fr-%d", f.seq)
	}
	cp := *fr
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeFeedback) Update(_ context.Context, id string, changes map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, fr := range f.items {
		if fr.ID == id {
			return applyChanges(fr, changes)
		}
	}
	return errs.ErrFeedbackRequestNotFound
}

// List keeps insertion order, which stands in for the repository's arrival order.
func (f *fakeFeedback) List(_ context.Context, flt repository.FeedbackFilter) ([]model.FeedbackRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.FeedbackRequest{}
	for _, fr := range f.items {
		if flt.UserID != "" && fr.UserID != flt.UserID {
			continue
		}
		if flt.OrganizationID != "" && fr.OrganizationID != flt.OrganizationID {
			continue
		}
		if flt.ReportID != "" && fr.ReportID != flt.ReportID {
			continue
		}
		if flt.StaffID != "" && !contains(fr.AssignedStaffIDs, flt.StaffID) {
			continue
		}
		if flt.TeamID != "" && fr.AssignedTeamID != flt.TeamID {
			continue
		}
		if flt.Status != "" && fr.Status != flt.Status {
			continue
		}
		out = append(out, *fr)
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// syncOutbox runs tasks inline so tests can assert on their effects.
type syncOutbox struct {
	mu     sync.Mutex
	names  []string
	failed map[string]error
}

func newSyncOutbox() *syncOutbox {
	return &syncOutbox{failed: map[string]error{}}
}

func (o *syncOutbox) Submit(name string, task notify.Task) bool {
	err := task(context.Background())
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
	if err != nil {
		o.failed[name] = err
	}
	return true
}

type adminCall struct {
	ReportID, OrganizationID, Category, Urgency, SubmittedBy string
}

type recordingNotifier struct {
	mu          sync.Mutex
	adminErr    error
	admins      []adminCall
	assignments [][]string
	proofs      []string
	resolved    []string
	inProgress  []string
}

func (n *recordingNotifier) NotifyAdminsNewReport(_ context.Context, reportID, organizationID, category, urgency, submittedBy string) (notify.SendResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admins = append(n.admins, adminCall{reportID, organizationID, category, urgency, submittedBy})
	if n.adminErr != nil {
		return notify.SendResult{}, n.adminErr
	}
	return notify.SendResult{SuccessCount: 1, Total: 1}, nil
}

func (n *recordingNotifier) NotifyStaffAssignment(_ context.Context, _ string, staffIDs []string, _, _ string) notify.SendResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assignments = append(n.assignments, staffIDs)
	return notify.SendResult{SuccessCount: len(staffIDs), Total: len(staffIDs)}
}

func (n *recordingNotifier) NotifyAdminsProofUploaded(_ context.Context, reportID, _, _, _ string) (notify.SendResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.proofs = append(n.proofs, reportID)
	return notify.SendResult{}, nil
}

func (n *recordingNotifier) NotifyUserReportResolved(_ context.Context, userID, _, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, userID)
	return nil
}

func (n *recordingNotifier) NotifyUserReportInProgress(_ context.Context, userID, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inProgress = append(n.inProgress, userID)
	return nil
}

type recordedEvent struct {
	Event, Key string
	Payload    map[string]interface{}
}

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *recordingEvents) ProduceReportEvent(_ context.Context, event, key string, payload map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{event, key, payload})
	return nil
}

func (e *recordingEvents) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Event)
	}
	return out
}

type recordingIndexer struct {
	mu  sync.Mutex
	ids []string
}

func (i *recordingIndexer) IndexReport(_ context.Context, r *model.Report) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = append(i.ids, r.ID)
	return nil
}

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func timePtr(t time.Time) *time.Time { return &t }

func boolPtr(b bool) *bool { return &b }

type harness struct {
	reports  *fakeReports
	feedback *fakeFeedback
	outbox   *syncOutbox
	notifier *recordingNotifier
	events   *recordingEvents
	indexer  *recordingIndexer
	svc      *FeedbackService
	reportsv *ReportService
}

func newHarness() *harness {
	h := &harness{
		reports:  newFakeReports(clock),
		feedback: newFakeFeedback(),
		outbox:   newSyncOutbox(),
		notifier: &recordingNotifier{},
		events:   &recordingEvents{},
		indexer:  &recordingIndexer{},
	}
	h.svc = NewFeedbackService(FeedbackDeps{
		Reports:  h.reports,
		Feedback: h.feedback,
		Notifier: h.notifier,
		Events:   h.events,
		Outbox:   h.outbox,
		Now:      clock,
	})
	h.reportsv = NewReportService(ReportDeps{
		Reports:  h.reports,
		Feedback: h.svc,
		Notifier: h.notifier,
		Events:   h.events,
		Indexer:  h.indexer,
		Outbox:   h.outbox,
		Now:      clock,
	})
	return h
}
