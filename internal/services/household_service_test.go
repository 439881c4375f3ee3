package services

import (
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
)

func (suite *ServiceTestSuite) TestCreateHousehold() {
	owner := suite.createUser("alice")

	household, err := suite.households.CreateHousehold(suite.ctx, CreateHouseholdInput{Name: " Flat 4B ", OwnerID: owner.ID})
	suite.Require().NoError(err)
	suite.Equal("Flat 4B", household.Name)
	suite.Equal(models.PlanFree, household.PlanType.Name)
	suite.Regexp(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`, household.InviteCode)

	loaded, members, err := suite.households.GetHouseholdWithMembers(suite.ctx, household.ID)
	suite.Require().NoError(err)
	suite.Equal(household.ID, loaded.ID)
	suite.Require().Len(members, 1)
	suite.Equal(models.RoleOwner, members[0].Role)
	suite.Equal("alice", members[0].User.Username)

	_, err = suite.households.CreateHousehold(suite.ctx, CreateHouseholdInput{Name: "", OwnerID: owner.ID})
	suite.True(errors.Is(err, ErrInvalidHouseholdName))
}

func (suite *ServiceTestSuite) TestJoinHouseholdByInvite_EnforcesMemberLimit() {
	owner := suite.createUser("owner")
	household := suite.createHousehold(models.PlanFree, owner)

	for i := 0; i < 3; i++ {
		user := suite.createUser(fmt.Sprintf("member%d", i))
		_, err := suite.households.JoinHouseholdByInvite(suite.ctx, user.ID, household.InviteCode)
		suite.Require().NoError(err)
	}

	usage, err := suite.store.Plans.FindUsage(suite.ctx, household.ID, models.UsageHouseholdMembers)
	suite.Require().NoError(err)
	suite.Equal(4, usage.CurrentValue)

	fifth := suite.createUser("fifth")
	_, err = suite.households.JoinHouseholdByInvite(suite.ctx, fifth.ID, household.InviteCode)
	suite.True(errors.Is(err, ErrMemberLimitExceeded))
	suite.True(apierrors.Is(err, apierrors.KindLimitExceeded))

	_, err = suite.households.JoinHouseholdByInvite(suite.ctx, owner.ID, household.InviteCode)
	suite.True(errors.Is(err, ErrAlreadyMember))

	_, err = suite.households.JoinHouseholdByInvite(suite.ctx, fifth.ID, "NOPE-NOPE-NOPE")
	suite.True(errors.Is(err, ErrInvalidInviteCode))
}

func (suite *ServiceTestSuite) TestRemoveMember_AllowsRejoin() {
	owner := suite.createUser("owner")
	member := suite.createUser("member")
	household := suite.createHousehold(models.PlanFree, owner)

	_, err := suite.households.JoinHouseholdByInvite(suite.ctx, member.ID, household.InviteCode)
	suite.Require().NoError(err)

	suite.True(errors.Is(suite.households.RemoveMember(suite.ctx, household.ID, owner.ID, owner.ID), ErrCannotRemoveYourself))

	suite.Require().NoError(suite.households.RemoveMember(suite.ctx, household.ID, owner.ID, member.ID))
	suite.True(errors.Is(suite.households.RemoveMember(suite.ctx, household.ID, owner.ID, member.ID), ErrMemberNotFound))

	usage, err := suite.store.Plans.FindUsage(suite.ctx, household.ID, models.UsageHouseholdMembers)
	suite.Require().NoError(err)
	suite.Equal(1, usage.CurrentValue)

	_, err = suite.households.JoinHouseholdByInvite(suite.ctx, member.ID, household.InviteCode)
	suite.Require().NoError(err)

	_, members, err := suite.households.GetHouseholdWithMembers(suite.ctx, household.ID)
	suite.Require().NoError(err)
	suite.Len(members, 2)
}

func (suite *ServiceTestSuite) TestChangePlan() {
	owner := suite.createUser("owner")
	household := suite.createHousehold(models.PlanFree, owner)

	updated, err := suite.households.ChangePlan(suite.ctx, household.ID, models.PlanPremium)
	suite.Require().NoError(err)
	suite.Equal(models.PlanPremium, updated.PlanType.Name)
	suite.True(updated.PlanType.IncludesHistory)

	usage, err := suite.store.Plans.FindUsage(suite.ctx, household.ID, models.UsageHouseholdMembers)
	suite.Require().NoError(err)
	suite.Nil(usage.MaxValue)

	_, err = suite.households.ChangePlan(suite.ctx, household.ID, "platinum")
	suite.True(errors.Is(err, ErrPlanNotFound))

	plans, err := suite.households.ListPlans(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(plans, 2)
}

func (suite *ServiceTestSuite) TestRenameRegenerateAndDeleteHousehold() {
	owner := suite.createUser("owner")
	household := suite.createHousehold(models.PlanFree, owner)

	renamed, err := suite.households.UpdateHouseholdName(suite.ctx, household.ID, "Cabin")
	suite.Require().NoError(err)
	suite.Equal("Cabin", renamed.Name)

	_, err = suite.households.UpdateHouseholdName(suite.ctx, household.ID, " ")
	suite.True(errors.Is(err, ErrInvalidHouseholdName))

	regenerated, err := suite.households.RegenerateInviteCode(suite.ctx, household.ID)
	suite.Require().NoError(err)
	suite.NotEqual(household.InviteCode, regenerated.InviteCode)

	_, err = suite.households.JoinHouseholdByInvite(suite.ctx, owner.ID, household.InviteCode)
	suite.True(errors.Is(err, ErrInvalidInviteCode))

	suite.Require().NoError(suite.households.DeleteHousehold(suite.ctx, household.ID))
	suite.True(errors.Is(suite.households.DeleteHousehold(suite.ctx, household.ID), ErrHouseholdNotFound))

	memberships, err := suite.households.ListHouseholdsForUser(suite.ctx, owner.ID)
	suite.Require().NoError(err)
	suite.Empty(memberships)
}
