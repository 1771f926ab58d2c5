package utils

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
)

// GetActor returns the identity stored by the authentication middlewares.
func GetActor(ctx context.Context) (models.Actor, error) {
	actor, ok := ctx.Value(constvars.CONTEXT_ACTOR_KEY).(models.Actor)
	if !ok {
		return models.Actor{}, exceptions.ErrMissingActor(nil)
	}
	return actor, nil
}
