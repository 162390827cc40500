package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/auth"
	"github.com/comandero-software/comandero/internal/domain"
	"github.com/comandero-software/comandero/internal/repository"
)

// StaffRealmInterface is the slice of the staff realm the service needs.
type StaffRealmInterface interface {
	Issue(ctx context.Context, staff *domain.Staff) (string, *domain.StaffSession, error)
	Revoke(ctx context.Context, token string) error
	SessionID(token string) (uuid.UUID, error)
}

// CustomerRealmInterface is the slice of the customer realm the service needs.
type CustomerRealmInterface interface {
	Issue(ctx context.Context, customer *domain.Customer) (string, error)
	Touch(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
}

// ActivityEnqueuer receives staff session ids for async last_active bumps.
type ActivityEnqueuer interface {
	Enqueue(sessionID uuid.UUID)
}

type AuthService struct {
	staffRepo      repository.StaffRepositoryInterface
	customerRepo   repository.CustomerRepositoryInterface
	restaurantRepo repository.RestaurantRepositoryInterface
	staffRealm     StaffRealmInterface
	customerRealm  CustomerRealmInterface
	activity       ActivityEnqueuer
	logger         *slog.Logger
}

func NewAuthService(
	staffRepo repository.StaffRepositoryInterface,
	customerRepo repository.CustomerRepositoryInterface,
	restaurantRepo repository.RestaurantRepositoryInterface,
	staffRealm StaffRealmInterface,
	customerRealm CustomerRealmInterface,
	activity ActivityEnqueuer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		staffRepo:      staffRepo,
		customerRepo:   customerRepo,
		restaurantRepo: restaurantRepo,
		staffRealm:     staffRealm,
		customerRealm:  customerRealm,
		activity:       activity,
		logger:         logger,
	}
}

// StaffLogin exchanges staff credentials for a staff session token.
// Lookup failures and bad passwords both come back as invalid credentials
// so the response doesn't reveal which emails exist.
func (s *AuthService) StaffLogin(ctx context.Context, email, password string) (string, *domain.Staff, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrValidationFailed.WithError(fmt.Errorf("email and password are required"))
	}

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !staff.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, staff.RestaurantID)
	if err != nil {
		return "", nil, err
	}
	if !restaurant.IsActive {
		return "", nil, domain.ErrRestaurantInactive
	}

	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, session, err := s.staffRealm.Issue(ctx, staff)
	if err != nil {
		return "", nil, domain.ErrInternal.WithError(err)
	}

	s.logger.Info("staff signed in",
		"staff_id", staff.ID,
		"restaurant_id", staff.RestaurantID,
		"session_id", session.ID,
	)

	return token, staff, nil
}

// StaffLogout revokes the staff session behind the token. Malformed or
// already-revoked tokens are a no-op; logout never fails the user.
func (s *AuthService) StaffLogout(ctx context.Context, token string) error {
	if err := s.staffRealm.Revoke(ctx, token); err != nil {
		s.logger.Debug("staff logout revoke failed", "error", err)
	}
	return nil
}

// CustomerRegister creates a customer account and signs it in.
func (s *AuthService) CustomerRegister(ctx context.Context, email, name, password string) (string, *domain.Customer, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrValidationFailed.WithError(fmt.Errorf("email and password are required"))
	}
	if len(password) < 8 {
		return "", nil, domain.ErrValidationFailed.WithError(fmt.Errorf("password must be at least 8 characters"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, domain.ErrInternal.WithError(err)
	}

	customer := &domain.Customer{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return "", nil, err
	}

	token, err := s.customerRealm.Issue(ctx, customer)
	if err != nil {
		return "", nil, domain.ErrInternal.WithError(err)
	}

	s.logger.Info("customer registered", "customer_id", customer.ID)

	return token, customer, nil
}

// CustomerLogin exchanges customer credentials for a customer session token.
func (s *AuthService) CustomerLogin(ctx context.Context, email, password string) (string, *domain.Customer, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrValidationFailed.WithError(fmt.Errorf("email and password are required"))
	}

	customer, err := s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !customer.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := auth.ComparePassword(customer.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.customerRealm.Issue(ctx, customer)
	if err != nil {
		return "", nil, domain.ErrInternal.WithError(err)
	}

	s.logger.Info("customer signed in", "customer_id", customer.ID)

	return token, customer, nil
}

// CustomerLogout revokes the customer session behind the token. Like
// StaffLogout it never fails the user.
func (s *AuthService) CustomerLogout(ctx context.Context, token string) error {
	if err := s.customerRealm.Revoke(ctx, token); err != nil {
		s.logger.Debug("customer logout revoke failed", "error", err)
	}
	return nil
}

// TrackActivity records a liveness ping for whichever realm credential the
// request carried. Anonymous pings and tracking failures are silently
// ignored; the endpoint always succeeds.
func (s *AuthService) TrackActivity(ctx context.Context, staffToken, customerToken string) {
	if staffToken != "" {
		if sessionID, err := s.staffRealm.SessionID(staffToken); err == nil {
			s.activity.Enqueue(sessionID)
			return
		}
	}

	if customerToken != "" {
		if err := s.customerRealm.Touch(ctx, customerToken); err != nil {
			s.logger.Debug("customer activity touch failed", "error", err)
		}
	}
}

// TwoFactorStatus reports whether a staff account has two-factor
// authentication enabled. Only staff may ask; userID is normally the
// caller's own id but admin tooling can query another account.
func (s *AuthService) TwoFactorStatus(ctx context.Context, principal domain.Principal, userID uuid.UUID) (bool, error) {
	if !principal.IsStaff() {
		return false, domain.ErrUnauthorized
	}

	staff, err := s.staffRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	return staff.TwoFactorEnabled, nil
}
