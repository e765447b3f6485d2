package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"ai-video-studio/internal/config"
	"ai-video-studio/internal/domain"
	"ai-video-studio/internal/domain/model"
	"ai-video-studio/internal/infra/api"
	pg "ai-video-studio/internal/infra/db/postgres"
)

// seed creates a demo user with one chat and prints a bearer token for it.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	userID := flag.String("user", "demo-user", "user id to create")
	email := flag.String("email", "demo@example.com", "user email")
	telegramChat := flag.Int64("telegram-chat", 0, "optional telegram chat id for notifications")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	users := pg.NewPostgresUserRepo(pool)
	chats := pg.NewPostgresChatRepo(pool)

	u, err := users.FindByID(ctx, nil, *userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u, err = model.NewUser(*userID, *email, "Demo")
		if err != nil {
			log.Fatalf("new user: %v", err)
		}
		if *telegramChat != 0 {
			u.TelegramChatID = telegramChat
		}
		if err := users.Save(ctx, nil, u); err != nil {
			log.Fatalf("save user: %v", err)
		}
		fmt.Printf("seeded user: %s <%s>\n", u.ID, u.Email)
	case err != nil:
		log.Fatalf("find user: %v", err)
	default:
		fmt.Printf("user %s already present. No changes.\n", u.ID)
	}

	chat, err := model.NewChat(u.ID, "Demo chat")
	if err != nil {
		log.Fatalf("new chat: %v", err)
	}
	if err := chats.Create(ctx, nil, chat); err != nil {
		log.Fatalf("create chat: %v", err)
	}
	fmt.Printf("seeded chat: %s\n", chat.ID)

	tok, err := api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Mint(u.ID)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Printf("bearer token (ttl %s):\n%s\n", cfg.Auth.TokenTTL, tok)
}
