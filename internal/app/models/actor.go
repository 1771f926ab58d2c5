package models

import (
	"hospital-service/internal/pkg/constvars"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the identity a request runs as. Unauthenticated callers on tolerant
// routes run as SystemActor, which has no user id.
type Actor struct {
	UserID primitive.ObjectID
	Role   string
	system bool
}

var SystemActor = Actor{Role: constvars.RoleSystem, system: true}

func NewUserActor(userID primitive.ObjectID, role string) Actor {
	return Actor{UserID: userID, Role: role}
}

func (a Actor) IsSystem() bool {
	return a.system
}

func (a Actor) IsAdmin() bool {
	return !a.system && a.Role == constvars.RoleAdmin
}

// Ref returns the user id to persist for this actor, nil for the system actor.
func (a Actor) Ref() *primitive.ObjectID {
	if a.system {
		return nil
	}
	id := a.UserID
	return &id
}

func (a Actor) String() string {
	if a.system {
		return constvars.RoleSystem
	}
	return a.UserID.Hex()
}
