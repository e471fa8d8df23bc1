// Package app wires the application's dependencies together.
//
// Setup builds everything the serve command needs (tracing, Genkit, the
// session store and manager, the planner) and returns an App whose Close
// releases it all in reverse order.
package app

import (
	"github.com/firebase/genkit/go/genkit"

	"github.com/plannerai/planner/internal/agent"
	"github.com/plannerai/planner/internal/config"
	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/session"
)

// App holds the initialized application components.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	Genkit   *genkit.Genkit
	Store    *session.Store
	Sessions *session.Manager
	Planner  *agent.Planner

	otelCleanup func()
}

// Close releases application resources. Safe to call after a failed Setup.
func (a *App) Close() error {
	if a.otelCleanup != nil {
		a.otelCleanup()
		a.otelCleanup = nil
	}
	return nil
}
