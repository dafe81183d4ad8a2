package access

import (
	"github.com/google/uuid"

	"job-board/internal/domain/job"
	"job-board/internal/domain/user"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

func ActorOf(u user.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Decision is the result of evaluating a predicate. Reason is empty when
// Allowed is true.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

func CanCreateJob(a Actor) Decision {
	if a.Role != user.RoleCompany {
		return deny("only companies can post jobs")
	}
	return allow()
}

// CanManageJob covers update, delete and reading the applications of a job.
func CanManageJob(a Actor, j job.Job) Decision {
	return canOwn(a, j.CompanyID, "only the company that posted this job can manage it")
}

// CanSetApplicationStatus checks the actor against the owner of the job the
// application was made to.
func CanSetApplicationStatus(a Actor, jobOwnerID uuid.UUID) Decision {
	return canOwn(a, jobOwnerID, "only the company that posted this job can update its applications")
}

func CanApply(a Actor) Decision {
	if a.Role != user.RoleApplicant {
		return deny("only applicants can apply to jobs")
	}
	return allow()
}

func CanListOwnApplications(a Actor) Decision {
	if a.Role != user.RoleApplicant {
		return deny("only applicants have applications")
	}
	return allow()
}

func canOwn(a Actor, ownerID uuid.UUID, reason string) Decision {
	if a.Role != user.RoleCompany {
		return deny(reason)
	}
	if a.ID != ownerID {
		return deny(reason)
	}
	return allow()
}
