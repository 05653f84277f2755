package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/ports"
)

// PermissionServiceOptions configures NewPermissionService.
type PermissionServiceOptions struct {
	Directory ports.DirectoryReader
	Logger    *slog.Logger
}

// PermissionService resolves the effective access of an identity. Resolution
// is computed fresh on every call; nothing is cached server-side, so a role
// change takes effect on the next permissions fetch.
type PermissionService struct {
	directory ports.DirectoryReader
	logger    *slog.Logger
}

// NewPermissionService creates a PermissionService.
func NewPermissionService(opts PermissionServiceOptions) (*PermissionService, error) {
	if opts.Directory == nil {
		return nil, fmt.Errorf("directory reader is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PermissionService{
		directory: opts.Directory,
		logger:    opts.Logger.With("component", "permission_service"),
	}, nil
}

// Resolve loads role and building grants for the username and folds them into
// a ResolvedAccess. The two lookups run concurrently and the whole resolution
// fails if either fails; a partial permission set must never be served.
func (s *PermissionService) Resolve(ctx context.Context, username string) (domainauth.ResolvedAccess, error) {
	identityKey := domainauth.IdentityKeyOf(username)
	if identityKey == "" {
		return domainauth.ResolvedAccess{}, fmt.Errorf("username is required")
	}

	var (
		roleGrants []ports.RoleGrant
		buildings  []domainauth.BuildingRef
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roleGrants, err = s.directory.RoleGrants(gctx, identityKey)
		if err != nil {
			return fmt.Errorf("load role grants: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		buildings, err = s.directory.BuildingGrants(gctx, identityKey)
		if err != nil {
			return fmt.Errorf("load building grants: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domainauth.ResolvedAccess{}, err
	}

	access := domainauth.ResolvedAccess{
		IdentityKey: identityKey,
		Roles:       make([]string, 0, len(roleGrants)),
		Permissions: domainauth.NewPermissionSet(),
		Companies:   make([]string, 0),
		Buildings:   buildings,
	}

	seenRoles := make(map[string]struct{}, len(roleGrants))
	seenCompanies := make(map[string]struct{})
	for _, grant := range roleGrants {
		if _, ok := seenRoles[grant.RoleName]; !ok {
			seenRoles[grant.RoleName] = struct{}{}
			access.Roles = append(access.Roles, grant.RoleName)
		}
		for _, key := range grant.PermissionKeys {
			access.Permissions.Add(key)
		}
		if grant.CompanyCode == nil {
			continue
		}
		company := strings.ToLower(strings.TrimSpace(*grant.CompanyCode))
		if company == "" {
			continue
		}
		if _, ok := seenCompanies[company]; !ok {
			seenCompanies[company] = struct{}{}
			access.Companies = append(access.Companies, company)
		}
	}

	if !access.Provisioned() {
		s.logger.DebugContext(ctx, "identity has no provisioned access", "identity_key", identityKey)
	}
	return access, nil
}
