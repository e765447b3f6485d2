package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/usecase"
)

func TestChatUseCase_Create(t *testing.T) {
	chats := newMemChatRepo()
	uc := usecase.NewChatUseCase(chats, newMemJobRepo(), newTestLogger())

	chat, err := uc.Create(context.Background(), "user-1", "  ")
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if chat.Title != "New chat" || chat.UserID != "user-1" {
		t.Errorf("unexpected chat %+v", chat)
	}
	if _, err := chats.FindByID(context.Background(), nil, chat.ID); err != nil {
		t.Errorf("expected chat persisted, got %v", err)
	}
	if _, err := uc.Create(context.Background(), "", "x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument without user, got %v", err)
	}
}

func TestChatUseCase_ListJobs(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	chats := newMemChatRepo()
	jobs := newMemJobRepo()
	chat, _ := model.NewChat("user-1", "fox videos")
	_ = chats.Create(ctx, nil, chat)

	older, _ := model.NewVideoJob("user-1", chat.ID, "first", "op-1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	jobs.put(older)
	newer, _ := model.NewVideoJob("user-1", chat.ID, "second", "op-2")
	newer.Apply(model.FailedPatch("render error"), time.Now())
	jobs.put(newer)

	uc := usecase.NewChatUseCase(chats, jobs, newTestLogger())

	// --- Act ---
	views, err := uc.ListJobs(ctx, "user-1", chat.ID, 10)

	// --- Assert ---
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if len(views) != 2 || views[0].JobID != newer.ID || views[1].JobID != older.ID {
		t.Fatalf("expected newest first, got %+v", views)
	}
	if views[0].Error != "render error" {
		t.Errorf("expected failure message, got %q", views[0].Error)
	}
	if _, err := uc.ListJobs(ctx, "user-2", chat.ID, 10); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user, got %v", err)
	}
}
