package service

import (
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
)

type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Decide is the single gate for the job management surface. The collection
// check (authenticated staff or superuser) always runs; the object check runs
// only when a target job is given, since create/list have no object yet.
// Superusers may do anything, staff only touch jobs they posted.
func Decide(actor *db.User, action Action, job *db.Job) Decision {
	if actor == nil {
		return deny("authentication required")
	}
	if !actor.IsStaff && !actor.IsSuperuser {
		return deny("staff or superuser required")
	}
	if job == nil {
		return allow()
	}
	if actor.IsSuperuser {
		return allow()
	}
	if job.PostedByID == actor.ID {
		return allow()
	}
	return deny("staff may only manage jobs they posted")
}
