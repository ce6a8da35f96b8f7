package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
)

// Step is one unit of start-up work, run in order.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Initialize runs steps in order and records the outcome on phase. It is a
// no-op if phase has already begun.
func Initialize(ctx context.Context, phase *Phase, log *zap.SugaredLogger, steps ...Step) error {
	if !phase.Begin() {
		return phase.Wait(ctx)
	}
	for _, step := range steps {
		start := time.Now()
		if err := step.Run(ctx); err != nil {
			err = fmt.Errorf("%s: %w", step.Name, err)
			log.Errorw("startup step failed", "step", step.Name, "err", err)
			phase.Fail(err)
			return err
		}
		log.Infow("startup step done", "step", step.Name, "took", time.Since(start))
	}
	phase.MarkReady()
	log.Info("application ready")
	return nil
}

type AdminAccount struct {
	Email    string
	Password string
	Phone    string
}

// SeedAdmin creates the admin account unless its email is already taken.
// An existing account is never modified.
func SeedAdmin(auth *services.AuthService, acct AdminAccount, log *zap.SugaredLogger) Step {
	return Step{
		Name: "seed admin",
		Run: func(ctx context.Context) error {
			u, created, err := auth.EnsureAccount(ctx, services.RegisterInput{
				FullName: "Administrator",
				Email:    acct.Email,
				Phone:    acct.Phone,
				Password: acct.Password,
				Role:     models.RoleAdmin,
			})
			if err != nil {
				return err
			}
			if created {
				log.Infow("admin account created", "email", u.Email)
			} else if u.Role != models.RoleAdmin {
				log.Warnw("admin email belongs to a non-admin account", "email", u.Email, "role", u.Role)
			}
			return nil
		},
	}
}
