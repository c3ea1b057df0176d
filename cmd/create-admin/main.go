package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/database"
	"github.com/ampvending/amp-backend/internal/logger"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/ampvending/amp-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, database.Required, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	adminService := service.NewAdminService(adminRepo, auth.NewPasswordVerifier(cfg.BcryptCost))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')

	fmt.Printf("Enter Role (super_admin, admin, editor) [%s]: ", model.RoleAdmin)
	role, _ := reader.ReadString('\n')
	role = strings.TrimSpace(role)
	if role == "" {
		role = string(model.RoleAdmin)
	}

	// An empty password provisions a Google-only account.
	fmt.Print("Enter Password (leave empty for Google sign-in only): ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, err := adminService.Provision(ctx, service.ProvisionRequest{
		Name:     name,
		Email:    email,
		Role:     model.Role(role),
		Password: string(bytePassword),
	})

	var fieldsErr *service.FieldsError
	switch {
	case errors.As(err, &fieldsErr):
		for _, f := range fieldsErr.Fields {
			fmt.Printf("Error: %s %s\n", f.Field, f.Message)
		}
		os.Exit(1)
	case errors.Is(err, service.ErrConflict):
		fmt.Println("Error: an admin with this email already exists")
		os.Exit(1)
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created as %s with ID: %s\n", admin.Name, admin.Email, admin.Role, admin.ID)
}
