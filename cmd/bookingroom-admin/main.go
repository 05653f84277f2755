// Command bookingroom-admin is the operational CLI for the booking service:
// migrations, directory seeding, role grants, and assignment inspection.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gpjen/bookingroom/config"
	"github.com/gpjen/bookingroom/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"seed": {
			name:        "seed",
			description: "Seed baseline permissions and roles (idempotent)",
			run:         runSeed,
		},
		"grant-role": {
			name:        "grant-role",
			description: "Assign a role to a user, optionally scoped to a company",
			run:         runGrantRole,
		},
		"grant-building": {
			name:        "grant-building",
			description: "Grant a user access to a building",
			run:         runGrantBuilding,
		},
		"list-assignments": {
			name:        "list-assignments",
			description: "List role assignments and building grants for a user",
			run:         runListAssignments,
		},
	}
}

func printUsage() {
	fmt.Fprintf(os.Stdout, "Usage: bookingroom-admin <command> [flags]\n\n")
	fmt.Fprintf(os.Stdout, "Available commands:\n")
	for _, c := range commands() {
		fmt.Fprintf(os.Stdout, "  %-18s %s\n", c.name, c.description)
	}
}
