package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/household-task-api/internal/clock"
	"github.com/yukikurage/household-task-api/internal/constants"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/repository"
	"github.com/yukikurage/household-task-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	store *repository.Store
	guard *PlanUsageGuard
	clock clock.Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store, guard *PlanUsageGuard, clk clock.Clock) *AuthService {
	return &AuthService{
		store: store,
		guard: guard,
		clock: clk,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates a new user along with a personal household on the free plan.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.store.Users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !isNotFound(err) {
		return nil, apierrors.Unexpected("failed to check username", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierrors.Unexpected("failed to hash password", err)
	}

	plan, err := s.store.Plans.FindPlanByName(ctx, models.PlanFree)
	if err != nil {
		return nil, apierrors.Unexpected("failed to find free plan", err)
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, apierrors.Unexpected("failed to generate invite code", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	household := &models.Household{
		Name:       fmt.Sprintf("%s's household", username),
		InviteCode: inviteCode,
		PlanTypeID: plan.ID,
	}
	member := &models.HouseholdMember{
		Role:     models.RoleOwner,
		JoinedAt: s.clock.Now(),
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.CreateWithPersonalHousehold(ctx, user, household, member); err != nil {
			switch {
			case errors.Is(err, repository.ErrCreateUser):
				return apierrors.Unexpected("failed to create user", err)
			case errors.Is(err, repository.ErrCreateHousehold):
				return apierrors.Unexpected("failed to create household", err)
			default:
				return apierrors.Unexpected("failed to add user to household", err)
			}
		}

		_, err := s.guard.WithStore(tx).UpdateUsage(ctx, household.ID, models.UsageHouseholdMembers)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.store.Users.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, apierrors.Unexpected("failed to find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, apierrors.Unexpected("failed to find user", err)
	}

	return user, nil
}
