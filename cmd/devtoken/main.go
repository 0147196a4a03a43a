// devtoken выпускает access токен для локальной разработки, когда внешний провайдер идентификации недоступен.
//
//	go run ./cmd/devtoken -role admin -user 4f7c...
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/nobridge/nobridge-backend/internal/config"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/logger"
	"github.com/nobridge/nobridge-backend/internal/service"
)

func main() {
	roleFlag := flag.String("role", "buyer", "роль: buyer, seller или admin")
	userFlag := flag.String("user", "", "UUID пользователя (по умолчанию новый)")
	flag.Parse()

	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("devtoken: ошибка загрузки конфигурации: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("devtoken: запрещено в production")
	}

	role, err := valueobject.NewRole(*roleFlag)
	if err != nil {
		log.Fatalf("devtoken: %v", err)
	}

	userID := uuid.New()
	if *userFlag != "" {
		if userID, err = uuid.Parse(*userFlag); err != nil {
			log.Fatalf("devtoken: некорректный UUID: %v", err)
		}
	}

	token, err := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL).Issue(userID, role)
	if err != nil {
		log.Fatalf("devtoken: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
