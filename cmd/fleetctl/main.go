package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fleetreport/internal/auth"
	"fleetreport/internal/config"
	"fleetreport/internal/db"
	"fleetreport/internal/model"
	"fleetreport/internal/repository"
	"fleetreport/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:   "fleetctl",
		Short: "Operational tooling for the fleet reporting backend",
	}
	root.AddCommand(migrateCmd(), createAdminCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("database init: %w", err)
	}
	return gormDB, cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB()
			if err != nil {
				return err
			}
			if err := gormDB.AutoMigrate(&model.User{}, &model.FleetRecord{}); err != nil {
				return fmt.Errorf("auto-migrate: %w", err)
			}
			log.Println("schema up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var username, password, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an admin user (no-op if the username exists)",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, cfg, err := openDB()
			if err != nil {
				return err
			}

			userRepo := repository.NewUserRepository(gormDB)
			jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenLifetime())
			authService := service.NewAuthService(userRepo, jwtService)

			ctx := context.Background()
			if existing, err := authService.GetByUsername(ctx, username); err == nil {
				log.Printf("user %q already exists (role %s), nothing to do", existing.Username, existing.Role)
				return nil
			}

			var emailPtr *string
			if email != "" {
				emailPtr = &email
			}
			user, err := authService.RegisterUser(ctx, username, password, model.RoleAdmin, emailPtr)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			log.Printf("created admin %q (account %s)", user.Username, *user.AccountID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&email, "email", "", "optional admin email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
