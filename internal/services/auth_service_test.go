package services

import (
	"errors"

	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
)

func (suite *ServiceTestSuite) TestSignup_CreatesPersonalHousehold() {
	user, err := suite.auth.Signup(suite.ctx, SignupInput{Username: " alice ", Password: "password123"})
	suite.Require().NoError(err)
	suite.Equal("alice", user.Username)
	suite.NotEqual("password123", user.PasswordHash)

	memberships, err := suite.households.ListHouseholdsForUser(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Require().Len(memberships, 1)
	suite.Equal(models.RoleOwner, memberships[0].Role)
	suite.Equal("alice's household", memberships[0].Household.Name)
	suite.Equal(models.PlanFree, memberships[0].Household.PlanType.Name)

	usage, err := suite.store.Plans.FindUsage(suite.ctx, memberships[0].HouseholdID, models.UsageHouseholdMembers)
	suite.Require().NoError(err)
	suite.Equal(1, usage.CurrentValue)
}

func (suite *ServiceTestSuite) TestSignup_Validation() {
	_, err := suite.auth.Signup(suite.ctx, SignupInput{Username: "", Password: "password123"})
	suite.True(errors.Is(err, ErrUsernameRequired))

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Username: "bob", Password: "short"})
	suite.True(errors.Is(err, ErrPasswordTooShort))

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Username: "bob", Password: "password123"})
	suite.Require().NoError(err)

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Username: "bob", Password: "password456"})
	suite.True(errors.Is(err, ErrUsernameTaken))
	suite.True(apierrors.Is(err, apierrors.KindConflict))
}

func (suite *ServiceTestSuite) TestLogin() {
	created, err := suite.auth.Signup(suite.ctx, SignupInput{Username: "carol", Password: "password123"})
	suite.Require().NoError(err)

	user, err := suite.auth.Login(suite.ctx, LoginInput{Username: "carol", Password: "password123"})
	suite.Require().NoError(err)
	suite.Equal(created.ID, user.ID)

	_, err = suite.auth.Login(suite.ctx, LoginInput{Username: "carol", Password: "wrong-password"})
	suite.True(errors.Is(err, ErrInvalidCredentials))
	suite.True(apierrors.Is(err, apierrors.KindUnauthorized))

	_, err = suite.auth.Login(suite.ctx, LoginInput{Username: "nobody", Password: "password123"})
	suite.True(errors.Is(err, ErrInvalidCredentials))

	fetched, err := suite.auth.GetUser(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal("carol", fetched.Username)

	_, err = suite.auth.GetUser(suite.ctx, 404)
	suite.True(errors.Is(err, ErrUserNotFound))
}
