package handlers

import (
	"net/http"

	"github.com/yukikurage/household-task-api/internal/constants"
	"github.com/yukikurage/household-task-api/internal/dto"
	"github.com/yukikurage/household-task-api/internal/models"
)

func (suite *HandlerTestSuite) TestSignup() {
	w := suite.do(http.MethodPost, "/api/auth/signup", map[string]string{"username": "newuser", "password": "supersecret"}, nil)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var user dto.UserDTO
	suite.decode(w, &user)
	suite.Equal("newuser", user.Username)

	w = suite.do(http.MethodPost, "/api/auth/signup", map[string]string{"username": "newuser", "password": "supersecret"}, nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodPost, "/api/auth/signup", map[string]string{"username": "other", "password": "short"}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "at least 8 characters")

	w = suite.do(http.MethodPost, "/api/auth/signup", map[string]string{"username": "x"}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestLoginAndCurrentUser() {
	user, cookies := suite.login("existing")

	w := suite.do(http.MethodGet, "/api/auth/me", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var me dto.UserDTO
	suite.decode(w, &me)
	suite.Equal(user.ID, me.ID)

	w = suite.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "existing", "password": "wrongpassword"}, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/api/auth/me", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestSessionOfDeletedUserIsRejected() {
	user, cookies := suite.login("ghost")
	suite.Require().NoError(suite.db.Delete(&models.User{}, user.ID).Error)

	w := suite.do(http.MethodGet, "/api/auth/me", nil, cookies)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/api/households", nil, cookies)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestSignupCreatesPersonalHousehold() {
	_, cookies := suite.login("alice")

	household := suite.personalHousehold(cookies)
	suite.Equal("alice's household", household.Name)
	suite.Equal("owner", string(household.Role))
	suite.NotEmpty(household.InviteCode)
}

func (suite *HandlerTestSuite) TestRequestIDHeader() {
	w := suite.do(http.MethodGet, "/health", nil, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(w.Header().Get(constants.RequestIDHeader))
}
