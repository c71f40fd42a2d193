package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const (
	assistantContextDocuments = 10
	assistantContextDeadlines = 10
	defaultTranscriptSessions = 1024
)

// transcript is the in-memory chat of one session. It only grows until Reset.
type transcript struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

func (t *transcript) append(msg domain.ChatMessage) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
}

func (t *transcript) snapshot() []domain.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

type AssistantUseCase struct {
	docs      ports.DocumentStore
	deadlines ports.DeadlineStore
	storage   ports.FileStorage
	ai        ports.AIInvoker

	// mu guards sessions and inflight. inflight holds users with an exchange
	// in progress and is untouched by Reset and eviction.
	mu       sync.Mutex
	sessions *lru.Cache[string, *transcript]
	inflight map[string]struct{}
	now      func() time.Time
}

func NewAssistantUseCase(
	docs ports.DocumentStore,
	deadlines ports.DeadlineStore,
	storage ports.FileStorage,
	ai ports.AIInvoker,
	maxSessions int,
) (*AssistantUseCase, error) {
	if maxSessions <= 0 {
		maxSessions = defaultTranscriptSessions
	}
	sessions, err := lru.New[string, *transcript](maxSessions)
	if err != nil {
		return nil, fmt.Errorf("create transcript cache: %w", err)
	}
	return &AssistantUseCase{
		docs:      docs,
		deadlines: deadlines,
		storage:   storage,
		ai:        ai,
		sessions:  sessions,
		inflight:  make(map[string]struct{}),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Ask answers a free-text question grounded on the user's recent documents and pending deadlines.
func (uc *AssistantUseCase) Ask(ctx context.Context, user domain.User, text string) (domain.ChatMessage, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return domain.ChatMessage{}, domain.WrapError(domain.ErrInvalidInput, "assistant ask", fmt.Errorf("message is empty"))
	}

	if !uc.acquire(user.ID) {
		return domain.ChatMessage{}, domain.ErrAssistantBusy
	}
	defer uc.release(user.ID)
	sess := uc.session(user.ID)

	sess.append(uc.message(domain.ChatRoleUser, question))

	docs, deadlines := uc.fetchContext(ctx, user)
	reply, err := uc.ai.InvokeText(ctx, domain.AIRequest{
		Prompt: buildAssistantPrompt(question, docs, deadlines),
	})
	if err != nil {
		return domain.ChatMessage{}, domain.WrapError(domain.ErrAssistantFailed, "assistant ask", err)
	}

	answer := uc.message(domain.ChatRoleAssistant, reply)
	sess.append(answer)
	return answer, nil
}

// AnalyzeFile uploads a file and asks for a summary of it. No document record is created.
func (uc *AssistantUseCase) AnalyzeFile(ctx context.Context, user domain.User, file domain.UploadFile) (domain.ChatMessage, error) {
	if strings.TrimSpace(file.Name) == "" || file.Body == nil {
		return domain.ChatMessage{}, domain.WrapError(domain.ErrInvalidInput, "assistant analyze file", fmt.Errorf("file is required"))
	}

	if !uc.acquire(user.ID) {
		return domain.ChatMessage{}, domain.ErrAssistantBusy
	}
	defer uc.release(user.ID)
	sess := uc.session(user.ID)

	sess.append(uc.message(domain.ChatRoleUser, "Uploaded: "+file.Name))

	stored, err := uc.storage.Upload(ctx, file.Name, file.ContentType, file.Body)
	if err != nil {
		return domain.ChatMessage{}, domain.WrapError(domain.ErrUploadFailed, "assistant upload "+file.Name, err)
	}

	reply, err := uc.ai.InvokeText(ctx, domain.AIRequest{
		Prompt:   chatFileAnalysisPrompt,
		FileURLs: []string{stored.URL},
	})
	if err != nil {
		return domain.ChatMessage{}, domain.WrapError(domain.ErrAssistantFailed, "assistant analyze file", err)
	}

	answer := uc.message(domain.ChatRoleAssistant, reply)
	sess.append(answer)
	return answer, nil
}

func (uc *AssistantUseCase) Transcript(user domain.User) []domain.ChatMessage {
	return uc.session(user.ID).snapshot()
}

// Reset drops the session transcript; the next access starts over with the greeting.
func (uc *AssistantUseCase) Reset(user domain.User) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.sessions.Remove(user.ID)
}

func (uc *AssistantUseCase) acquire(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inflight[key]; busy {
		return false
	}
	uc.inflight[key] = struct{}{}
	return true
}

func (uc *AssistantUseCase) release(key string) {
	uc.mu.Lock()
	delete(uc.inflight, key)
	uc.mu.Unlock()
}

func (uc *AssistantUseCase) session(key string) *transcript {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if sess, ok := uc.sessions.Get(key); ok {
		return sess
	}
	sess := &transcript{}
	sess.messages = []domain.ChatMessage{uc.message(domain.ChatRoleAssistant, domain.AssistantGreeting)}
	uc.sessions.Add(key, sess)
	return sess
}

// fetchContext reads both context slices concurrently. A failed read yields an empty slice.
func (uc *AssistantUseCase) fetchContext(ctx context.Context, user domain.User) ([]domain.Document, []domain.Deadline) {
	var (
		docs      []domain.Document
		deadlines []domain.Deadline
		g         errgroup.Group
	)
	g.Go(func() error {
		out, err := uc.docs.Filter(ctx, ownedBy(user, nil), "-created_at", assistantContextDocuments)
		if err != nil {
			slog.Warn("assistant_context_documents_failed", "owner_id", user.ID, "error", err)
			return nil
		}
		docs = out
		return nil
	})
	g.Go(func() error {
		out, err := uc.deadlines.Filter(ctx,
			ownedBy(user, domain.Predicate{"status": string(domain.DeadlineStatusPending)}),
			"due_date",
			assistantContextDeadlines,
		)
		if err != nil {
			slog.Warn("assistant_context_deadlines_failed", "owner_id", user.ID, "error", err)
			return nil
		}
		deadlines = out
		return nil
	})
	_ = g.Wait()
	return docs, deadlines
}

func (uc *AssistantUseCase) message(role domain.ChatRole, text string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: uc.now(),
	}
}
