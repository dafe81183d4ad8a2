package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"job-board/internal/domain/job"
	"job-board/internal/domain/user"
)

func TestCanManageJob(t *testing.T) {
	owner := Actor{ID: uuid.New(), Role: user.RoleCompany}
	other := Actor{ID: uuid.New(), Role: user.RoleCompany}
	applicant := Actor{ID: owner.ID, Role: user.RoleApplicant}
	j := job.Job{ID: uuid.New(), CompanyID: owner.ID}

	assert.True(t, CanManageJob(owner, j).Allowed)

	d := CanManageJob(other, j)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)

	assert.False(t, CanManageJob(applicant, j).Allowed)
}

func TestRolePredicates(t *testing.T) {
	company := Actor{ID: uuid.New(), Role: user.RoleCompany}
	applicant := Actor{ID: uuid.New(), Role: user.RoleApplicant}

	assert.True(t, CanCreateJob(company).Allowed)
	assert.False(t, CanCreateJob(applicant).Allowed)

	assert.True(t, CanApply(applicant).Allowed)
	assert.False(t, CanApply(company).Allowed)

	assert.True(t, CanListOwnApplications(applicant).Allowed)
	assert.False(t, CanListOwnApplications(company).Allowed)
}

func TestCanSetApplicationStatus(t *testing.T) {
	owner := uuid.New()
	assert.True(t, CanSetApplicationStatus(Actor{ID: owner, Role: user.RoleCompany}, owner).Allowed)
	assert.False(t, CanSetApplicationStatus(Actor{ID: uuid.New(), Role: user.RoleCompany}, owner).Allowed)
}
