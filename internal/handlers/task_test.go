package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/yukikurage/household-task-api/internal/dto"
	"github.com/yukikurage/household-task-api/internal/models"
)

func (suite *HandlerTestSuite) createTask(cookies []*http.Cookie, householdID uint64, name string, firstDue string) dto.TaskDTO {
	body := map[string]interface{}{
		"household_id":     householdID,
		"name":             name,
		"interval":         map[string]int{"weeks": 1},
		"default_priority": "high",
	}
	if firstDue != "" {
		body["first_due_date"] = firstDue
	}

	w := suite.do(http.MethodPost, "/api/tasks", body, cookies)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	suite.decode(w, &task)
	return task
}

func (suite *HandlerTestSuite) TestCreateAndCompleteTask() {
	_, cookies := suite.login("alice")
	household := suite.personalHousehold(cookies)

	task := suite.createTask(cookies, household.ID, "Water plants", "2024-01-15")
	suite.Equal(1, task.Interval.Weeks)
	suite.True(task.IsRecurring)
	suite.Equal(models.PriorityHigh, task.DefaultPriority)

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), map[string]string{"notes": "done"}, cookies)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var completion dto.CompletionDTO
	suite.decode(w, &completion)
	suite.Equal(models.EventStatusCompleted, completion.Event.Status)
	suite.Equal("done", completion.Event.CompletionNotes)
	suite.Require().NotNil(completion.Next)
	suite.True(completion.Next.DueDate.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)), completion.Next.DueDate)
	suite.Equal(models.EventStatusPending, completion.Next.Status)
	suite.Equal(models.PriorityHigh, completion.Next.Priority)
}

func (suite *HandlerTestSuite) TestCompleteTask_WithoutOpenEvent() {
	_, cookies := suite.login("alice")
	household := suite.personalHousehold(cookies)
	task := suite.createTask(cookies, household.ID, "Water plants", "")

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), nil, cookies)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCreateTask_Validation() {
	_, cookies := suite.login("alice")
	household := suite.personalHousehold(cookies)

	w := suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"household_id": household.ID,
		"name":         "Bad",
		"interval":     map[string]int{"days": -1},
	}, cookies)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"household_id":   household.ID,
		"name":           "Bad date",
		"first_due_date": "next tuesday",
	}, cookies)
	suite.Equal(http.StatusBadRequest, w.Code)

	_, strangerCookies := suite.login("mallory")
	w = suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"household_id": household.ID,
		"name":         "Intrusion",
	}, strangerCookies)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestCreateTask_PlanLimit() {
	_, cookies := suite.login("alice")
	household := suite.personalHousehold(cookies)

	for i := 0; i < 10; i++ {
		suite.createTask(cookies, household.ID, fmt.Sprintf("Chore %d", i), "")
	}

	w := suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"household_id": household.ID,
		"name":         "One too many",
	}, cookies)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("LIMIT_EXCEEDED", suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestTaskAccessAndUpdate() {
	_, cookies := suite.login("alice")
	household := suite.personalHousehold(cookies)
	task := suite.createTask(cookies, household.ID, "Water plants", "")
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	_, strangerCookies := suite.login("mallory")
	w := suite.do(http.MethodGet, path, nil, strangerCookies)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPatch, path, map[string]interface{}{
		"name":     "Water the plants",
		"interval": map[string]int{"days": 3},
	}, cookies)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskDTO
	suite.decode(w, &updated)
	suite.Equal("Water the plants", updated.Name)
	suite.Equal(dto.IntervalDTO{Days: 3}, updated.Interval)

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/households/%d/tasks", household.ID), nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListResponse[dto.TaskDTO]
	suite.decode(w, &list)
	suite.Equal(int64(1), list.TotalCount)
	suite.Equal(1, list.TotalPages)

	w = suite.do(http.MethodDelete, path, nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, path, nil, cookies)
	suite.Equal(http.StatusNotFound, w.Code)
}
