package main

import (
	"flag"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logg := config.NewLogger(cfg.Log)

	email := flag.String("email", cfg.Seed.AdminEmail, "account to reset")
	newPassword := flag.String("password", cfg.Seed.AdminPassword, "new password")
	flag.Parse()

	db, err := database.Connect(cfg.Database, logg)
	if err != nil {
		logg.Fatalf("connect database: %v", err)
	}
	userRepo := repository.NewUserRepo(db)

	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		logg.Fatalf("user %s not found in database: %v", *email, err)
	}

	if err := user.SetPassword(*newPassword); err != nil {
		logg.Fatalf("failed to hash password: %v", err)
	}
	if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		logg.Fatalf("failed to update password in DB: %v", err)
	}
	// drop existing sessions
	if err := userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		logg.Fatalf("failed to rotate session: %v", err)
	}

	logg.WithField("email", *email).Info("password has been reset")
}
