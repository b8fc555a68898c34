package memory

import (
	"context"
	"errors"
	"testing"

	"trivia-proof-service/internal/domain"
)

func TestQuestionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()

	if _, err := store.ListQuestions(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotIngested) {
		t.Fatalf("expected not ingested error, got %v", err)
	}

	stored, err := store.AppendQuestions(ctx, "s1", []domain.Question{
		{ID: "q1", Prompt: "first", Choices: []string{"True", "False"}},
		{ID: "q2", Prompt: "second", Choices: []string{"True", "False"}},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored[1].Index != 1 || stored[1].SessionID != "s1" {
		t.Fatalf("unexpected stored question %+v", stored[1])
	}

	more, err := store.AppendQuestions(ctx, "s1", []domain.Question{{ID: "q3", Prompt: "third"}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if more[0].Index != 2 {
		t.Fatalf("expected index to continue at 2, got %d", more[0].Index)
	}

	list, err := store.ListQuestions(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, q := range list {
		if q.Index != i {
			t.Fatalf("expected ascending indexes, got %+v", list)
		}
	}

	if _, err := store.GetQuestion(ctx, "s2", "q1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected question scoped to session, got %v", err)
	}
	if _, err := store.GetQuestion(ctx, "s1", "q2"); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestQuestionStoreZeroQuestionIngestion(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()
	if _, err := store.AppendQuestions(ctx, "empty", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	list, err := store.ListQuestions(ctx, "empty")
	if err != nil {
		t.Fatalf("expected ingested empty session, got %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no questions, got %d", len(list))
	}
}

func TestSubmissionGuard(t *testing.T) {
	ctx := context.Background()
	guard := NewSubmissionGuard()
	if ok, _ := guard.Claim(ctx, "s1", "p1", "q1"); !ok {
		t.Fatalf("expected first claim to succeed")
	}
	if ok, _ := guard.Claim(ctx, "s1", "p1", "q1"); ok {
		t.Fatalf("expected duplicate claim to fail")
	}
	if ok, _ := guard.Claim(ctx, "s1", "p2", "q1"); !ok {
		t.Fatalf("expected other player to claim")
	}
	_ = guard.Release(ctx, "s1", "p1", "q1")
	if ok, _ := guard.Claim(ctx, "s1", "p1", "q1"); !ok {
		t.Fatalf("expected claim after release")
	}
}
