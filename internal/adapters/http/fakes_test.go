package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

const testToken = "good-token"

var testUser = domain.User{ID: "u1", Email: "ann@example.test", FullName: "Ann"}

type sessionFake struct {
	loggedOut []string
}

func (s *sessionFake) Me(_ context.Context, token string) (*domain.User, error) {
	if token != testToken {
		return nil, domain.WrapError(domain.ErrUnauthorized, "session me", errors.New("bad token"))
	}
	u := testUser
	return &u, nil
}

func (s *sessionFake) LoginURL(returnTo string) string {
	if returnTo == "" {
		return "https://login.test/"
	}
	return "https://login.test/?return_to=" + returnTo
}

func (s *sessionFake) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

type ingestFake struct {
	result *domain.BatchResult
	err    error
	names  []string
	bodies []string
}

func (f *ingestFake) UploadBatch(_ context.Context, _ domain.User, files []domain.UploadFile) (*domain.BatchResult, error) {
	for _, file := range files {
		f.names = append(f.names, file.Name)
		raw, _ := io.ReadAll(file.Body)
		f.bodies = append(f.bodies, string(raw))
	}
	return f.result, f.err
}

type documentsFake struct {
	filter domain.DocumentListFilter
	err    error
}

func (f *documentsFake) ListDocuments(_ context.Context, _ domain.User, filter domain.DocumentListFilter) ([]domain.Document, error) {
	f.filter = filter
	return []domain.Document{{ID: "d1", Name: "gst.pdf"}}, f.err
}

func (f *documentsFake) GetDocument(_ context.Context, _ domain.User, id string) (*domain.DocumentDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	detail := domain.NewDocumentDetail(domain.Document{ID: id})
	return &detail, nil
}

type dashboardFake struct{}

func (dashboardFake) Dashboard(_ context.Context, user domain.User) (*domain.Dashboard, error) {
	return &domain.Dashboard{User: user}, nil
}

type entitiesFake struct {
	created domain.Entity
	patch   domain.Patch
	err     error
}

func (f *entitiesFake) ListEntities(context.Context, domain.User, domain.EntityListFilter) ([]domain.Entity, error) {
	return nil, f.err
}

func (f *entitiesFake) GetEntity(_ context.Context, _ domain.User, id string) (*domain.EntityDetail, error) {
	return &domain.EntityDetail{Entity: domain.Entity{ID: id}}, f.err
}

func (f *entitiesFake) CreateEntity(_ context.Context, _ domain.User, e domain.Entity) (*domain.Entity, error) {
	f.created = e
	if f.err != nil {
		return nil, f.err
	}
	e.ID = "e1"
	return &e, nil
}

func (f *entitiesFake) UpdateEntity(_ context.Context, _ domain.User, _ string, patch domain.Patch) error {
	f.patch = patch
	return f.err
}

type deadlinesFake struct {
	limit   int
	created domain.Deadline
}

func (f *deadlinesFake) ListPending(_ context.Context, _ domain.User, limit int) ([]domain.DeadlineView, error) {
	f.limit = limit
	return nil, nil
}

func (f *deadlinesFake) CreateDeadline(_ context.Context, _ domain.User, d domain.Deadline) (*domain.Deadline, error) {
	f.created = d
	return &d, nil
}

func (f *deadlinesFake) UpdateDeadline(context.Context, domain.User, string, domain.Patch) error {
	return nil
}

type notificationsFake struct {
	marked string
}

func (f *notificationsFake) ListNotifications(context.Context, domain.User, domain.ReadFilter) ([]domain.Notification, error) {
	return nil, nil
}

func (f *notificationsFake) UnreadCount(context.Context, domain.User) (int, error) { return 3, nil }

func (f *notificationsFake) MarkRead(_ context.Context, _ domain.User, id string) error {
	f.marked = id
	return nil
}

func (f *notificationsFake) MarkAllRead(context.Context, domain.User) (int, error) { return 2, nil }

type suggestionsFake struct {
	err error
}

func (f suggestionsFake) Dismiss(context.Context, domain.User, string) error { return f.err }

func (f suggestionsFake) Action(context.Context, domain.User, string) error { return f.err }

type assistantFake struct {
	err      error
	asked    string
	analyzed string
	reset    bool
}

func (f *assistantFake) Ask(_ context.Context, _ domain.User, text string) (domain.ChatMessage, error) {
	f.asked = text
	if f.err != nil {
		return domain.ChatMessage{}, f.err
	}
	return domain.ChatMessage{Role: domain.ChatRoleAssistant, Text: "answer"}, nil
}

func (f *assistantFake) AnalyzeFile(_ context.Context, _ domain.User, file domain.UploadFile) (domain.ChatMessage, error) {
	f.analyzed = file.Name
	return domain.ChatMessage{Role: domain.ChatRoleAssistant, Text: "analysis"}, f.err
}

func (f *assistantFake) Transcript(domain.User) []domain.ChatMessage {
	return []domain.ChatMessage{{Role: domain.ChatRoleAssistant, Text: domain.AssistantGreeting}}
}

func (f *assistantFake) Reset(domain.User) { f.reset = true }

type eventsFake struct {
	ch chan domain.Invalidation
}

func (f *eventsFake) Listen(string) (<-chan domain.Invalidation, func()) {
	return f.ch, func() {}
}

type testDeps struct {
	ingest        *ingestFake
	documents     *documentsFake
	entities      *entitiesFake
	deadlines     *deadlinesFake
	notifications *notificationsFake
	assistant     *assistantFake
	sessions      *sessionFake
	events        *eventsFake
}

func newTestDeps() *testDeps {
	return &testDeps{
		ingest:        &ingestFake{result: &domain.BatchResult{OK: true}},
		documents:     &documentsFake{},
		entities:      &entitiesFake{},
		deadlines:     &deadlinesFake{},
		notifications: &notificationsFake{},
		assistant:     &assistantFake{},
		sessions:      &sessionFake{},
		events:        &eventsFake{ch: make(chan domain.Invalidation, 1)},
	}
}

func (d *testDeps) handler(opts Options) http.Handler {
	if opts.SessionCookie == "" {
		opts.SessionCookie = "session"
	}
	return NewRouter(Services{
		Ingest:        d.ingest,
		Documents:     d.documents,
		Dashboard:     dashboardFake{},
		Entities:      d.entities,
		Deadlines:     d.deadlines,
		Notifications: d.notifications,
		Suggestions:   suggestionsFake{},
		Assistant:     d.assistant,
		Sessions:      d.sessions,
		Events:        d.events,
	}, opts).Handler()
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}
