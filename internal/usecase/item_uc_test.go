package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
)

func newItemUC(t *testing.T, items ...*model.Item) (ItemUseCase, *mockItemRepo, *mockQueue) {
	t.Helper()
	repo := newMockItemRepo(items...)
	jobs := &mockQueue{}
	log := zerolog.Nop()
	return NewItemUseCase(repo, jobs, &log), repo, jobs
}

func failedItem(t *testing.T) *model.Item {
	t.Helper()
	it, err := model.NewItem("src-1", "ext-1", "Broken Video", "https://example.test/v/1", time.Now())
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	it.Status = model.ItemStatusFailed
	it.FailReason = "fetch: video removed"
	return it
}

func TestRegisterEnqueuesDirectSubmission(t *testing.T) {
	uc, repo, jobs := newItemUC(t)

	it, err := uc.Register(context.Background(), "src-1", "https://example.test/v/9", "One-off Video")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, err := repo.FindByID(context.Background(), nil, it.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status != model.ItemStatusPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
	if stored.EnqueuedAt == nil {
		t.Error("enqueue marker not set")
	}
	if len(jobs.enqueued) != 1 || jobs.enqueued[0].ItemID != it.ID {
		t.Errorf("enqueued jobs = %+v, want one for %s", jobs.enqueued, it.ID)
	}
}

func TestRegisterDuplicateURLRejected(t *testing.T) {
	uc, _, jobs := newItemUC(t)

	if _, err := uc.Register(context.Background(), "src-1", "https://example.test/v/9", "First"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := uc.Register(context.Background(), "src-1", "https://example.test/v/9", "Again")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
	if len(jobs.enqueued) != 1 {
		t.Errorf("jobs = %d, want 1: duplicate must not enqueue", len(jobs.enqueued))
	}
}

func TestRetryResetsFailedItem(t *testing.T) {
	it := failedItem(t)
	uc, repo, jobs := newItemUC(t, it)

	if err := uc.Retry(context.Background(), it.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), nil, it.ID)
	if stored.Status != model.ItemStatusPending {
		t.Errorf("status = %s, want pending after retry", stored.Status)
	}
	if len(jobs.enqueued) != 1 || jobs.enqueued[0].ItemID != it.ID {
		t.Errorf("retry did not enqueue a job")
	}
}

func TestRetryRejectsNonFailedStates(t *testing.T) {
	for _, status := range []model.ItemStatus{
		model.ItemStatusPending,
		model.ItemStatusProcessing,
		model.ItemStatusCompleted,
	} {
		it := failedItem(t)
		it.Status = status
		uc, _, jobs := newItemUC(t, it)

		err := uc.Retry(context.Background(), it.ID)
		if !errors.Is(err, domain.ErrNotRetryable) {
			t.Errorf("status %s: err = %v, want ErrNotRetryable", status, err)
		}
		if len(jobs.enqueued) != 0 {
			t.Errorf("status %s: retry enqueued a job", status)
		}
	}
}

func TestRetryUnknownItem(t *testing.T) {
	uc, _, _ := newItemUC(t)

	err := uc.Retry(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
