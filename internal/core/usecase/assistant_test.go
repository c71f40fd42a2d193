package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

func newAssistantForTest(t *testing.T, docs *collectionFake[domain.Document], deadlines *collectionFake[domain.Deadline], ai *aiFake) *AssistantUseCase {
	t.Helper()
	uc, err := NewAssistantUseCase(docs, deadlines, &storageFake{}, ai, 4)
	if err != nil {
		t.Fatalf("NewAssistantUseCase() error = %v", err)
	}
	return uc
}

func TestAssistantTranscriptStartsWithGreeting(t *testing.T) {
	uc := newAssistantForTest(t, &collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, &aiFake{})

	got := uc.Transcript(testUser)
	if len(got) != 1 || got[0].Role != domain.ChatRoleAssistant || got[0].Text != domain.AssistantGreeting {
		t.Fatalf("unexpected initial transcript %+v", got)
	}
}

func TestAssistantAskGroundsPromptOnContext(t *testing.T) {
	due := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	docs := &collectionFake[domain.Document]{records: []domain.Document{{Name: "gst.pdf", Type: "GST Certificate"}}}
	deadlines := &collectionFake[domain.Deadline]{records: []domain.Deadline{{Title: "GST Filing", DueDate: due}}}
	ai := &aiFake{text: "Your GST filing is due on 31 March."}
	uc := newAssistantForTest(t, docs, deadlines, ai)

	reply, err := uc.Ask(context.Background(), testUser, "  When is GST due?  ")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if reply.Role != domain.ChatRoleAssistant || reply.Text != ai.text {
		t.Fatalf("unexpected reply %+v", reply)
	}

	req := ai.lastRequest()
	for _, want := range []string{
		"User question: When is GST due?",
		"Recent Documents: gst.pdf (GST Certificate)",
		"Upcoming Deadlines: GST Filing - Due 2026-03-31",
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Fatalf("expected prompt to contain %q, got %q", want, req.Prompt)
		}
	}
	if len(req.FileURLs) != 0 {
		t.Fatalf("expected no files, got %v", req.FileURLs)
	}

	docCall := docs.filterCalls[0]
	if docCall.order != "-created_at" || docCall.limit != 10 || docCall.where["owner_id"] != testUser.ID {
		t.Fatalf("unexpected document context query %+v", docCall)
	}
	deadlineCall := deadlines.filterCalls[0]
	if deadlineCall.order != "due_date" || deadlineCall.limit != 10 || deadlineCall.where["status"] != "Pending" {
		t.Fatalf("unexpected deadline context query %+v", deadlineCall)
	}

	transcript := uc.Transcript(testUser)
	if len(transcript) != 3 {
		t.Fatalf("expected greeting, question and answer, got %d messages", len(transcript))
	}
	if !transcript[1].IsUser() || transcript[1].Text != "When is GST due?" {
		t.Fatalf("unexpected user message %+v", transcript[1])
	}
}

func TestAssistantAskDegradesToEmptyContext(t *testing.T) {
	docs := &collectionFake[domain.Document]{filterErr: errors.New("store down")}
	deadlines := &collectionFake[domain.Deadline]{filterErr: errors.New("store down")}
	ai := &aiFake{text: "I could not find any documents yet."}
	uc := newAssistantForTest(t, docs, deadlines, ai)

	if _, err := uc.Ask(context.Background(), testUser, "What is expiring?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	prompt := ai.lastRequest().Prompt
	if !strings.Contains(prompt, "Recent Documents: \n") || !strings.Contains(prompt, "Upcoming Deadlines: \n") {
		t.Fatalf("expected empty context lists, got %q", prompt)
	}
}

func TestAssistantAskFailureKeepsOnlyUserMessage(t *testing.T) {
	ai := &aiFake{textErr: errors.New("model offline")}
	uc := newAssistantForTest(t, &collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, ai)

	_, err := uc.Ask(context.Background(), testUser, "hello")
	if !domain.IsKind(err, domain.ErrAssistantFailed) {
		t.Fatalf("expected assistant failure, got %v", err)
	}
	transcript := uc.Transcript(testUser)
	if len(transcript) != 2 || !transcript[1].IsUser() {
		t.Fatalf("expected greeting and user message only, got %+v", transcript)
	}

	// The gate is released after a failure.
	ai.textErr = nil
	ai.text = "hi"
	if _, err := uc.Ask(context.Background(), testUser, "hello again"); err != nil {
		t.Fatalf("Ask() after failure error = %v", err)
	}
}

func TestAssistantAskRejectsBlankText(t *testing.T) {
	ai := &aiFake{}
	uc := newAssistantForTest(t, &collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, ai)

	_, err := uc.Ask(context.Background(), testUser, "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(ai.requests) != 0 || len(uc.Transcript(testUser)) != 1 {
		t.Fatalf("expected no side effects")
	}
}

func TestAssistantRejectsConcurrentExchange(t *testing.T) {
	ai := &aiFake{text: "done", block: make(chan struct{}), started: make(chan struct{}, 1)}
	uc := newAssistantForTest(t, &collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, ai)

	errCh := make(chan error, 1)
	go func() {
		_, err := uc.Ask(context.Background(), testUser, "first")
		errCh <- err
	}()
	<-ai.started

	if _, err := uc.Ask(context.Background(), testUser, "second"); !errors.Is(err, domain.ErrAssistantBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}
	close(ai.block)
	if err := <-errCh; err != nil {
		t.Fatalf("first Ask() error = %v", err)
	}

	transcript := uc.Transcript(testUser)
	if len(transcript) != 3 || transcript[1].Text != "first" {
		t.Fatalf("expected rejected message not appended, got %+v", transcript)
	}
}

func TestAssistantKeepsExchangeExclusiveAcrossTranscriptLoss(t *testing.T) {
	cases := map[string]func(uc *AssistantUseCase){
		"reset": func(uc *AssistantUseCase) { uc.Reset(testUser) },
		"eviction": func(uc *AssistantUseCase) {
			for i := 0; i < 4; i++ {
				uc.Transcript(domain.User{ID: fmt.Sprintf("other-%d", i)})
			}
		},
	}
	for name, dropTranscript := range cases {
		t.Run(name, func(t *testing.T) {
			ai := &aiFake{text: "done", block: make(chan struct{}), started: make(chan struct{}, 1)}
			uc := newAssistantForTest(t, &collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, ai)

			errCh := make(chan error, 1)
			go func() {
				_, err := uc.Ask(context.Background(), testUser, "first")
				errCh <- err
			}()
			<-ai.started

			dropTranscript(uc)
			if _, err := uc.Ask(context.Background(), testUser, "second"); !errors.Is(err, domain.ErrAssistantBusy) {
				t.Fatalf("expected busy error, got %v", err)
			}
			_, err := uc.AnalyzeFile(context.Background(), testUser, domain.UploadFile{Name: "x.pdf", Body: strings.NewReader("x")})
			if !errors.Is(err, domain.ErrAssistantBusy) {
				t.Fatalf("expected busy error from AnalyzeFile, got %v", err)
			}
			ai.mu.Lock()
			calls := len(ai.requests)
			ai.mu.Unlock()
			if calls != 1 {
				t.Fatalf("expected one model call, got %d", calls)
			}

			close(ai.block)
			if err := <-errCh; err != nil {
				t.Fatalf("first Ask() error = %v", err)
			}
			ai.block = nil
			ai.started = nil
			if _, err := uc.Ask(context.Background(), testUser, "third"); err != nil {
				t.Fatalf("Ask() after exchange finished error = %v", err)
			}
		})
	}
}

func TestAssistantAnalyzeFile(t *testing.T) {
	storage := &storageFake{}
	ai := &aiFake{text: "This is a rental agreement."}
	uc, err := NewAssistantUseCase(&collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, storage, ai, 0)
	if err != nil {
		t.Fatalf("NewAssistantUseCase() error = %v", err)
	}

	reply, err := uc.AnalyzeFile(context.Background(), testUser, domain.UploadFile{Name: "lease.pdf", Body: strings.NewReader("lease")})
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if reply.Text != ai.text {
		t.Fatalf("unexpected reply %q", reply.Text)
	}
	req := ai.lastRequest()
	if req.Prompt != chatFileAnalysisPrompt || len(req.FileURLs) != 1 || req.FileURLs[0] != "https://files.test/lease.pdf" {
		t.Fatalf("unexpected request %+v", req)
	}
	transcript := uc.Transcript(testUser)
	if transcript[1].Text != "Uploaded: lease.pdf" {
		t.Fatalf("expected upload marker, got %q", transcript[1].Text)
	}
}

func TestAssistantAnalyzeFileUploadFailure(t *testing.T) {
	storage := &storageFake{failOn: map[string]error{"x.pdf": errors.New("denied")}}
	ai := &aiFake{}
	uc, _ := NewAssistantUseCase(&collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, storage, ai, 0)

	_, err := uc.AnalyzeFile(context.Background(), testUser, domain.UploadFile{Name: "x.pdf", Body: strings.NewReader("x")})
	if !domain.IsKind(err, domain.ErrUploadFailed) {
		t.Fatalf("expected upload failure, got %v", err)
	}
	if len(ai.requests) != 0 {
		t.Fatalf("expected no AI call")
	}
}

func TestAssistantAnalyzeFileAIFailureAppendsNoReply(t *testing.T) {
	ai := &aiFake{textErr: errors.New("model offline")}
	uc := newAssistantForTest(t, &collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, ai)

	_, err := uc.AnalyzeFile(context.Background(), testUser, domain.UploadFile{Name: "lease.pdf", Body: strings.NewReader("lease")})
	if !domain.IsKind(err, domain.ErrAssistantFailed) {
		t.Fatalf("expected assistant failure, got %v", err)
	}
	transcript := uc.Transcript(testUser)
	if len(transcript) != 2 || !transcript[1].IsUser() || transcript[1].Text != "Uploaded: lease.pdf" {
		t.Fatalf("expected greeting and upload marker only, got %+v", transcript)
	}
}

func TestAssistantResetRestoresGreeting(t *testing.T) {
	ai := &aiFake{text: "ok"}
	uc := newAssistantForTest(t, &collectionFake[domain.Document]{}, &collectionFake[domain.Deadline]{}, ai)
	if _, err := uc.Ask(context.Background(), testUser, "hi"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	uc.Reset(testUser)
	if got := uc.Transcript(testUser); len(got) != 1 {
		t.Fatalf("expected greeting only after reset, got %d messages", len(got))
	}
}
