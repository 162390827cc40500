package auth

import (
	"context"
	"log/slog"

	"github.com/comandero-software/comandero/internal/domain"
)

// RealmVerifier is one realm's read-only verification pipeline.
type RealmVerifier interface {
	Verify(ctx context.Context, token string) (domain.Principal, error)
}

// Resolver maps a request's credential material to a principal. The two
// realms are consulted independently; a credential valid in neither, or in
// the wrong realm's slot, yields Anonymous, never an error. Verification is
// read-only.
type Resolver struct {
	staff    RealmVerifier
	customer RealmVerifier
	logger   *slog.Logger
}

func NewResolver(staff, customer RealmVerifier, logger *slog.Logger) *Resolver {
	return &Resolver{
		staff:    staff,
		customer: customer,
		logger:   logger,
	}
}

// Resolve returns the principal for the given cookies. Each cookie only
// ever reaches its own realm's pipeline; the staff pipeline rejects
// customer tokens and vice versa, so a naming mix-up cannot cross realms.
func (r *Resolver) Resolve(ctx context.Context, staffToken, customerToken string) domain.Principal {
	if staffToken != "" {
		principal, err := r.staff.Verify(ctx, staffToken)
		if err == nil {
			return principal
		}
		r.logger.Debug("staff credential rejected", "error", err)
	}

	if customerToken != "" {
		principal, err := r.customer.Verify(ctx, customerToken)
		if err == nil {
			return principal
		}
		r.logger.Debug("customer credential rejected", "error", err)
	}

	return domain.Anonymous
}
