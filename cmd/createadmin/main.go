// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Command createadmin bootstraps an administrator account.
//
// # Usage
//
//	createadmin -email admin@example.com -username admin -fullname "Site Admin" -password 'secret'
//
// The account is created active with the admin role, skipping the email
// activation flow. Running it against an existing email fails with the
// uniqueness conflict rather than mutating the existing account.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/inkpost/inkpost/internal/platform/config"
	pgstore "github.com/inkpost/inkpost/internal/platform/postgres"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/internal/users/auth"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

func main() {
	email := flag.String("email", "", "admin email address (required)")
	username := flag.String("username", "", "admin username (required)")
	fullName := flag.String("fullname", "Administrator", "display name")
	password := flag.String("password", "", "initial password (required)")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *email == "" || *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	hash, err := sec.HashPassword(*password)
	must(log, err, "hash password")

	admin := &auth.User{
		ID:           uuidv7.New(),
		FullName:     *fullName,
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		Role:         sec.RoleAdmin,
		IsActive:     true,
	}

	must(log, auth.NewUserRepository(pool).Create(ctx, admin), "create admin account")

	log.Info("admin_account_created",
		slog.String("id", admin.ID),
		slog.String("email", admin.Email),
		slog.String("username", admin.Username),
	)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("createadmin failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
