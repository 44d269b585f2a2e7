package helper

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Actor is the explicit caller identity passed into every resolver/engine call.
// Resolvers never read ambient request state; they only see this value.
type Actor struct {
	UserID         uuid.UUID
	Role           string
	OrganizationID *uuid.UUID
	ProgramID      *uuid.UUID
}

// GetActorFromLocals rebuilds the Actor from the claims the auth middleware stored.
func GetActorFromLocals(c *fiber.Ctx) (Actor, error) {
	var a Actor

	rawID, _ := c.Locals("user_id").(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return a, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - missing user identity")
	}
	a.UserID = id

	role, _ := c.Locals("userRole").(string)
	if role == "" {
		return a, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - missing role information")
	}
	a.Role = role

	if raw, ok := c.Locals("org_id").(string); ok && raw != "" {
		if orgID, err := uuid.Parse(raw); err == nil {
			a.OrganizationID = &orgID
		}
	}
	if raw, ok := c.Locals("program_id").(string); ok && raw != "" {
		if programID, err := uuid.Parse(raw); err == nil {
			a.ProgramID = &programID
		}
	}
	return a, nil
}
