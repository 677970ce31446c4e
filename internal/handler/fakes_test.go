package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/middleware"
	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/repository"
	"github.com/iliyamo/septic-crm/internal/utils"
)

// testCost keeps bcrypt fast in tests.
const testCost = 4

var testLog = zap.NewNop()

// ----- users -----

type fakeUsers struct {
	mu    sync.Mutex
	users []model.User
	seq   int
	// deleteErr, when set, is returned by Delete for an existing user.
	deleteErr error
}

func (f *fakeUsers) Create(_ context.Context, name, email, password, role string, cost int) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	f.seq++
	now := time.Now().UTC()
	u := model.User{ID: fmt.Sprintf("user-%d", f.seq), Name: name, Email: email, PasswordHash: hash,
		Role: role, CreatedAt: now, UpdatedAt: now}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f *fakeUsers) FirstAdmin(context.Context) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Role == model.RoleAdmin {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.User(nil), f.users...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			if f.deleteErr != nil {
				return f.deleteErr
			}
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ----- leads -----

type fakeLeads struct {
	mu    sync.Mutex
	leads []model.Lead
	seq   int
}

func (f *fakeLeads) Create(_ context.Context, l *model.Lead) (model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	l.ID = fmt.Sprintf("lead-%d", f.seq)
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	f.leads = append(f.leads, *l)
	return *l, nil
}

func (f *fakeLeads) GetByID(_ context.Context, id string) (model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return model.Lead{}, repository.ErrNotFound
}

func (f *fakeLeads) List(_ context.Context, flt model.LeadFilter) (model.Page[model.Lead], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var match []model.Lead
	for i := len(f.leads) - 1; i >= 0; i-- {
		l := f.leads[i]
		if flt.Stage != "" && l.Stage != flt.Stage {
			continue
		}
		if flt.Search != "" && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(flt.Search)) {
			continue
		}
		match = append(match, l)
	}
	p := model.Page[model.Lead]{Data: []model.Lead{}, Total: len(match), Page: flt.Page, PageSize: flt.PageSize}
	p.TotalPages = (p.Total + flt.PageSize - 1) / flt.PageSize
	start := (flt.Page - 1) * flt.PageSize
	for i := start; i < len(match) && i < start+flt.PageSize; i++ {
		p.Data = append(p.Data, match[i])
	}
	return p, nil
}

func (f *fakeLeads) Update(_ context.Context, id string, p model.LeadPatch) (model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.leads {
		l := &f.leads[i]
		if l.ID != id {
			continue
		}
		if p.Name != nil {
			l.Name = *p.Name
		}
		if p.Email != nil {
			l.Email = optString(*p.Email)
		}
		if p.Phone != nil {
			l.Phone = optString(*p.Phone)
		}
		if p.Stage != nil {
			l.Stage = *p.Stage
		}
		if p.Source != nil {
			l.Source = optString(*p.Source)
		}
		if p.ClearAssignee {
			l.AssignedToID = nil
		} else if p.AssignedToID != nil {
			l.AssignedToID = p.AssignedToID
		}
		if p.CustomFields != nil {
			l.CustomFields = p.CustomFields
		}
		l.UpdatedAt = time.Now().UTC()
		return *l, nil
	}
	return model.Lead{}, repository.ErrNotFound
}

func (f *fakeLeads) UpdateStage(ctx context.Context, id, stage string) (model.Lead, error) {
	return f.Update(ctx, id, model.LeadPatch{Stage: &stage})
}

func (f *fakeLeads) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.leads {
		if l.ID == id {
			f.leads = append(f.leads[:i], f.leads[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeLeads) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leads)
}

// ----- notes -----

type fakeNotes struct {
	mu    sync.Mutex
	notes []model.Note
}

func (f *fakeNotes) Create(_ context.Context, content, leadID, authorID string) (model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := model.Note{ID: fmt.Sprintf("note-%d", len(f.notes)+1), Content: content, LeadID: leadID,
		AuthorID: authorID, CreatedAt: time.Now().UTC()}
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeNotes) ListByLead(_ context.Context, leadID string) ([]model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Note{}
	for _, n := range f.notes {
		if n.LeadID == leadID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notes {
		if n.ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ----- activities -----

type fakeActivities struct {
	mu    sync.Mutex
	items []model.Activity
	last  model.ActivityFilter
}

func (f *fakeActivities) Create(_ context.Context, a *model.Activity) (model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = fmt.Sprintf("act-%d", len(f.items)+1)
	a.CreatedAt = time.Now().UTC()
	f.items = append(f.items, *a)
	return *a, nil
}

func (f *fakeActivities) GetByID(_ context.Context, id string) (model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Activity{}, repository.ErrNotFound
}

func (f *fakeActivities) List(_ context.Context, flt model.ActivityFilter) ([]model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = flt
	out := []model.Activity{}
	for _, a := range f.items {
		if flt.LeadID != "" && (a.LeadID == nil || *a.LeadID != flt.LeadID) {
			continue
		}
		if flt.Completed != nil && a.Completed != *flt.Completed {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeActivities) Update(_ context.Context, id string, p model.ActivityPatch) (model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		a := &f.items[i]
		if a.ID != id {
			continue
		}
		if p.Title != nil {
			a.Title = *p.Title
		}
		if p.Completed != nil {
			a.Completed = *p.Completed
		}
		if p.ClearAssignee {
			a.AssignedToID = nil
		} else if p.AssignedToID != nil {
			a.AssignedToID = p.AssignedToID
		}
		return *a, nil
	}
	return model.Activity{}, repository.ErrNotFound
}

func (f *fakeActivities) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.items {
		if a.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ----- calendar -----

type fakeEvents struct {
	mu    sync.Mutex
	items []model.CalendarEvent
	last  model.EventFilter
}

func (f *fakeEvents) Create(_ context.Context, e *model.CalendarEvent) (model.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = fmt.Sprintf("ev-%d", len(f.items)+1)
	f.items = append(f.items, *e)
	return *e, nil
}

func (f *fakeEvents) GetByID(_ context.Context, id string) (model.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		if e.ID == id {
			return e, nil
		}
	}
	return model.CalendarEvent{}, repository.ErrNotFound
}

func (f *fakeEvents) List(_ context.Context, flt model.EventFilter) ([]model.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = flt
	return append([]model.CalendarEvent{}, f.items...), nil
}

func (f *fakeEvents) Update(_ context.Context, id string, p model.EventPatch) (model.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		e := &f.items[i]
		if e.ID != id {
			continue
		}
		if p.Start != nil {
			e.Start = *p.Start
		}
		if p.End != nil {
			e.End = *p.End
		}
		if p.ClearLead {
			e.LeadID = nil
		} else if p.LeadID != nil {
			e.LeadID = p.LeadID
		}
		return *e, nil
	}
	return model.CalendarEvent{}, repository.ErrNotFound
}

func (f *fakeEvents) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.items {
		if e.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ----- documents and files -----

type fakeDocs struct {
	mu    sync.Mutex
	items []model.Document
	fail  error
}

func (f *fakeDocs) Create(_ context.Context, d *model.Document) (model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.Document{}, f.fail
	}
	d.CreatedAt = time.Now().UTC()
	f.items = append(f.items, *d)
	return *d, nil
}

func (f *fakeDocs) GetByID(_ context.Context, id string) (model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.items {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Document{}, repository.ErrNotFound
}

func (f *fakeDocs) List(_ context.Context, leadID string) ([]model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Document{}
	for _, d := range f.items {
		if leadID == "" || d.LeadID == leadID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.items {
		if d.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeFiles struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeFiles() *fakeFiles { return &fakeFiles{files: map[string][]byte{}} }

func (f *fakeFiles) Save(_ context.Context, name string, r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = b
	return int64(len(b)), nil
}

func (f *fakeFiles) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	return nil
}

// ----- notifier -----

type fakeNotifier struct {
	mu    sync.Mutex
	leads []model.Lead
	err   error
}

func (f *fakeNotifier) NotifyNewLead(_ context.Context, l model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, l)
	return f.err
}

// ----- HTTP helpers -----

// newTestEcho returns an Echo instance wired with the production validator
// and error handler.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(testLog)
	return e
}

// as returns middleware that authenticates every request as p.
func as(p utils.AuthPayload) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetIdentity(c, p)
			return next(c)
		}
	}
}

var (
	adminID   = utils.AuthPayload{UserID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin}
	regularID = utils.AuthPayload{UserID: "user-2", Email: "user@example.com", Role: model.RoleUser}
)

func do(t *testing.T, e *echo.Echo, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			bs, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			r = bytes.NewReader(bs)
		}
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) APIError {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	got := decode[APIError](t, rec)
	if got.StatusCode != status {
		t.Errorf("statusCode = %d, want %d", got.StatusCode, status)
	}
	if msg != "" && got.Message != msg {
		t.Errorf("message = %q, want %q", got.Message, msg)
	}
	return got
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
}
