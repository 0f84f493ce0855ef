package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository/postgres"
	"bloodbank-backend/internal/service"
)

const usage = `Usage: admintool [-config path] <command> [flags]

Commands:
  migrate                                  Apply the database schema
  create-admin    -name N -email E -password P
  change-password -email E -password P
  check-admin     -email E
  delete-admin    -email E
`

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	store := postgres.NewStore(db)
	userSvc := service.NewUserService(store.UserRepository, store.DonationRepository, store.RequestRepository)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := run(ctx, db, userSvc, cmd, args); err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func run(ctx context.Context, db *sql.DB, userSvc service.UserService, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	name := fs.String("name", "Admin", "Admin display name")
	email := fs.String("email", "", "Admin email address")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "Password (defaults to $ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "migrate":
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		fmt.Println("Schema applied")
		return nil

	case "create-admin":
		admin, err := userSvc.CreateAdmin(ctx, *name, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("Admin user created: %s (%s)\n", admin.Email, admin.ID)
		return nil

	case "change-password":
		if err := userSvc.ChangePassword(ctx, *email, *password); err != nil {
			return err
		}
		fmt.Printf("Password updated for %s\n", *email)
		return nil

	case "check-admin":
		user, err := findAdmin(ctx, userSvc, *email)
		if err != nil {
			return err
		}
		fmt.Println("Admin user found:")
		fmt.Println("  Name:   ", user.Name)
		fmt.Println("  Email:  ", user.Email)
		fmt.Println("  Role:   ", user.Role)
		fmt.Println("  Created:", user.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil

	case "delete-admin":
		user, err := findAdmin(ctx, userSvc, *email)
		if err != nil {
			return err
		}
		if err := userSvc.DeleteUser(ctx, user.ID); err != nil {
			return err
		}
		fmt.Printf("Admin user %s deleted\n", user.Email)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func findAdmin(ctx context.Context, userSvc service.UserService, email string) (*domain.User, error) {
	user, err := userSvc.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no admin user found with email %s", email)
	}
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%s is a %s, not an admin", user.Email, user.Role)
	}
	return user, nil
}
