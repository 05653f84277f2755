package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gpjen/bookingroom/internal/bootstrap"
	"github.com/gpjen/bookingroom/internal/data"
	"github.com/gpjen/bookingroom/internal/domain/model"
	httpx "github.com/gpjen/bookingroom/internal/http"
	"github.com/gpjen/bookingroom/internal/service"
)

func connectDB(ctx *commandContext) (*sql.DB, error) {
	return bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig:    ctx.Config.Postgres,
		RedisConfig: ctx.Config.Redis,
		Logger:      ctx.Logger,
	})
}

func withDirectory(ctx *commandContext, fn func(context.Context, *service.DirectoryService) error) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // best-effort close on CLI exit

	svc, err := service.NewDirectoryService(service.DirectoryServiceOptions{
		Roles:       data.NewRoleRepo(db),
		Permissions: data.NewPermissionRepo(db),
		Assignments: data.NewAssignmentRepo(db),
		Grants:      data.NewGrantRepo(db),
		Logger:      ctx.Logger,
	})
	if err != nil {
		return err
	}
	return fn(ctx.Ctx, svc)
}

func runMigrate(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	timeout := fs.Duration("timeout", defaultMigrationTimeout, "migration timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // best-effort close on CLI exit

	runCtx, cancel := context.WithTimeout(ctx.Ctx, *timeout)
	defer cancel()
	return bootstrap.RunMigrations(runCtx, db, ctx.Logger)
}

// seedPermissions is the baseline permission catalog consulted by the route
// guard. Seeding is idempotent: keys that already exist are skipped.
var seedCatalog = []struct {
	key, description, category string
}{
	{httpx.PermDirectoryAdmin, "Manage roles, permissions, and user assignments", "directory"},
	{httpx.PermFacilityManage, "Manage buildings, rooms, and beds", "facility"},
	{httpx.PermOccupancyRead, "View occupancy dashboards", "facility"},
	{httpx.PermBookingRead, "View booking requests", "booking"},
	{httpx.PermBookingSubmit, "Submit and cancel own booking requests", "booking"},
	{httpx.PermBookingDecide, "Approve, reject, and check in bookings", "booking"},
	{httpx.PermWebhookAdmin, "Manage webhook sinks", "integrations"},
}

var seedRoles = []struct {
	name   string
	system bool
	keys   []string
}{
	{"super-admin", true, []string{"*"}},
	{"directory-admin", true, []string{httpx.PermDirectoryAdmin}},
	{"facility-manager", false, []string{httpx.PermFacilityManage, httpx.PermOccupancyRead, httpx.PermBookingDecide, httpx.PermBookingRead}},
	{"resident", false, []string{httpx.PermBookingSubmit, httpx.PermBookingRead}},
	{"viewer", false, []string{httpx.PermBookingRead, httpx.PermOccupancyRead}},
}

func runSeed(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDirectory(ctx, func(runCtx context.Context, svc *service.DirectoryService) error {
		for _, p := range seedCatalog {
			_, err := svc.CreatePermission(runCtx, &model.CreatePermissionRequest{
				Key:         p.key,
				Description: p.description,
				Category:    p.category,
			})
			switch {
			case err == nil:
				ctx.Logger.InfoContext(runCtx, "permission created", "key", p.key)
			case errors.Is(err, data.ErrPermissionKeyExists):
				ctx.Logger.DebugContext(runCtx, "permission already present", "key", p.key)
			default:
				return fmt.Errorf("seed permission %s: %w", p.key, err)
			}
		}

		// The wildcard key backs the super-admin role.
		if _, err := svc.CreatePermission(runCtx, &model.CreatePermissionRequest{
			Key:         "*",
			Description: "All permissions",
			Category:    "directory",
		}); err != nil && !errors.Is(err, data.ErrPermissionKeyExists) {
			return fmt.Errorf("seed wildcard permission: %w", err)
		}

		for _, r := range seedRoles {
			_, err := svc.CreateRole(runCtx, &model.CreateRoleRequest{
				Name:           r.name,
				System:         r.system,
				PermissionKeys: r.keys,
			})
			switch {
			case err == nil:
				ctx.Logger.InfoContext(runCtx, "role created", "name", r.name)
			case errors.Is(err, data.ErrRoleNameExists):
				ctx.Logger.DebugContext(runCtx, "role already present", "name", r.name)
			default:
				return fmt.Errorf("seed role %s: %w", r.name, err)
			}
		}
		return nil
	})
}

func runGrantRole(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("grant-role", flag.ContinueOnError)
	username := fs.String("user", "", "username (required)")
	roleName := fs.String("role", "", "role name (required)")
	company := fs.String("company", "", "optional company scope")
	displayName := fs.String("display-name", "", "optional display name")
	email := fs.String("email", "", "optional email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *roleName == "" {
		return errors.New("-user and -role are required")
	}

	return withDirectory(ctx, func(runCtx context.Context, svc *service.DirectoryService) error {
		role, err := svc.GetRoleByName(runCtx, *roleName)
		if err != nil {
			return fmt.Errorf("look up role %q: %w", *roleName, err)
		}

		req := &model.CreateAssignmentRequest{
			Username:    *username,
			DisplayName: *displayName,
			Email:       *email,
			RoleID:      role.ID,
		}
		if *company != "" {
			req.CompanyCode = company
		}

		assignment, err := svc.AssignRole(runCtx, req)
		if err != nil {
			return err
		}
		ctx.Logger.InfoContext(runCtx, "role assigned",
			"identity_key", assignment.IdentityKey,
			"role", role.Name,
			"assignment_id", assignment.ID)
		return nil
	})
}

func runGrantBuilding(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("grant-building", flag.ContinueOnError)
	username := fs.String("user", "", "username (required)")
	buildingID := fs.String("building", "", "building ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *buildingID == "" {
		return errors.New("-user and -building are required")
	}

	return withDirectory(ctx, func(runCtx context.Context, svc *service.DirectoryService) error {
		grant, err := svc.GrantBuildingAccess(runCtx, &model.CreateGrantRequest{
			Username:   *username,
			BuildingID: *buildingID,
		})
		if err != nil {
			return err
		}
		ctx.Logger.InfoContext(runCtx, "building access granted",
			"identity_key", grant.IdentityKey,
			"building_id", grant.BuildingID,
			"grant_id", grant.ID)
		return nil
	})
}

func runListAssignments(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-assignments", flag.ContinueOnError)
	username := fs.String("user", "", "username (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("-user is required")
	}

	return withDirectory(ctx, func(runCtx context.Context, svc *service.DirectoryService) error {
		assignments, err := svc.ListAssignmentsFor(runCtx, *username)
		if err != nil {
			return err
		}
		grants, err := svc.ListBuildingGrantsFor(runCtx, *username)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\tCOMPANY\tASSIGNED")
		for _, a := range assignments {
			company := "-"
			if a.CompanyCode != nil {
				company = *a.CompanyCode
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.RoleName, company, a.CreatedAt.Format(time.RFC3339))
		}
		fmt.Fprintln(w, "\nBUILDING\tGRANTED")
		for _, g := range grants {
			fmt.Fprintf(w, "%s\t%s\n", g.BuildingID, g.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	})
}
