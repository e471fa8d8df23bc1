package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/session"
)

const (
	// DefaultModel is the hosted model used when none is configured.
	DefaultModel = "googleai/gemini-2.5-flash"

	// DefaultMaxTurns bounds the agentic tool loop per chat turn.
	DefaultMaxTurns = 8
)

// Orchestrator turns one user message into a final response, applying state
// mutations to the session as a side effect. The returned text is empty when
// the run ends without a terminal response (for example mid-tool-call); that
// is not an error.
type Orchestrator interface {
	Invoke(ctx context.Context, userID, sessionID, message string) (string, error)
}

// Config contains all required parameters for the Planner.
type Config struct {
	Genkit   *genkit.Genkit
	Sessions *session.Manager
	Logger   log.Logger

	ModelName string // full Genkit model name, e.g. "googleai/gemini-2.5-flash"
	MaxTurns  int    // maximum agentic loop turns per chat turn
}

func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Sessions == nil {
		return errors.New("session manager is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Planner is the Genkit-backed Orchestrator. It is stateless across turns:
// everything it knows between turns lives in the session store.
//
// All configuration is captured immutably at construction time, so a single
// Planner is safe for concurrent Invoke calls.
type Planner struct {
	g        *genkit.Genkit
	sessions *session.Manager
	logger   log.Logger
	model    string
	maxTurns int
	toolRefs []ai.ToolRef
}

var _ Orchestrator = (*Planner)(nil)

// New creates a Planner and registers its tools on the Genkit instance.
// Call once per Genkit instance; Genkit panics on duplicate tool names.
func New(cfg Config) (*Planner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	model := cfg.ModelName
	if model == "" {
		model = DefaultModel
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	p := &Planner{
		g:        cfg.Genkit,
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
		model:    model,
		maxTurns: maxTurns,
	}
	p.toolRefs = p.defineTools(cfg.Genkit)

	p.logger.Info("planner initialized",
		"model", model,
		"max_turns", maxTurns,
		"tools", len(p.toolRefs))
	return p, nil
}

// Invoke runs one chat turn: it snapshots the session state into the system
// instruction, lets the model drive the tool loop, and returns the final
// text. State mutations happen through the tools as the loop runs.
func (p *Planner) Invoke(ctx context.Context, userID, sessionID, message string) (string, error) {
	snap, err := p.sessions.GetOrCreate(sessionID, userID)
	if err != nil {
		return "", fmt.Errorf("resolving session: %w", err)
	}

	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return "", fmt.Errorf("encoding state: %w", err)
	}

	ctx = ContextWithSession(ctx, userID, sessionID)

	resp, err := genkit.Generate(ctx, p.g,
		ai.WithModelName(p.model),
		ai.WithSystem(rootInstruction+"\n\nCurrent session state:\n"+string(stateJSON)),
		ai.WithMessages(ai.NewUserMessage(ai.NewTextPart(message))),
		ai.WithTools(p.toolRefs...),
		ai.WithMaxTurns(p.maxTurns),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	text := resp.Text()
	if text == "" {
		// The run ended without a terminal response. The endpoint's contract
		// is an empty message, not a failure.
		p.logger.Warn("no final response produced",
			"user_id", userID,
			"session_id", sessionID)
	}
	return text, nil
}
