package service

import (
	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

var (
	makerRoles     = []id.Role{id.RoleMaker, id.RoleAdmin}
	checkerRoles   = []id.Role{id.RoleChecker, id.RoleAdmin}
	exceptionRoles = []id.Role{id.RoleMaker, id.RoleChecker, id.RoleAdmin}
	adminRoles     = []id.Role{id.RoleAdmin}
)

// requireActor rejects calls without an identified actor.
func requireActor(actor id.Actor) error {
	if actor.IsZero() || !actor.Role.IsValid() {
		return dErrors.New(dErrors.CodeUnauthorized, "an identified actor is required")
	}
	return nil
}

func requireRole(actor id.Actor, action string, roles ...id.Role) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.HasRole(roles...) {
		return dErrors.Newf(dErrors.CodeForbidden, "role %s may not %s", actor.Role, action)
	}
	return nil
}

// checkFourEyes stops the submitter from acting as checker on the same review.
func checkFourEyes(r *models.Review, actor id.Actor, action string) error {
	if r.SubmittedBy != nil && *r.SubmittedBy == actor.ID {
		return dErrors.Newf(dErrors.CodeForbidden, "the submitter of a review cannot %s it", action)
	}
	return nil
}

// requireEditable is the edit gate for the questionnaire and documents.
func requireEditable(r *models.Review) error {
	if !r.IsEditable() {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot edit review in status %s", r.Status)
	}
	return nil
}
