package agent

import (
	"encoding/json"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/plannerai/planner/internal/state"
)

// MemorizeInput is the input for the memorize tool.
type MemorizeInput struct {
	Key   string          `json:"key" jsonschema_description:"The state field to store the value under, e.g. user_profile, group_details, budget, origin, rough_dates, specific_dates, destinations, pois, itinerary"`
	Value json.RawMessage `json:"value" jsonschema_description:"The JSON value to store for the key"`
}

// MemorizeOutput is the result of a memorize call.
type MemorizeOutput struct {
	Status string `json:"status"`
	Key    string `json:"key"`
}

// SubAgentInput is the shared input shape for the structured sub-agent tools.
type SubAgentInput struct {
	Request string `json:"request" jsonschema_description:"What to work out, including everything the user said that is relevant"`
}

// DestinationIdeas is the destination sub-agent's output schema.
type DestinationIdeas struct {
	Places []state.ClusterJourney `json:"places" jsonschema_description:"A list of destination ideas as cluster journeys"`
}

// defineTools registers the planner's tools on the Genkit instance and
// returns their refs. Tools read session identity from the invocation
// context; registration happens once per instance in New.
func (p *Planner) defineTools(g *genkit.Genkit) []ai.ToolRef {
	memorize := genkit.DefineTool(g, "memorize",
		"Persist a piece of trip-planning information the user has provided. "+
			"Call this as soon as a fact is known; the value replaces the field according to the store's merge policy.",
		p.memorize)

	source := genkit.DefineTool(g, "sourceAgent",
		"Work out the structured origin of the trip (city, state, country, maps URL) from the user's words and persist it.",
		subAgent(p, sourceInstruction, state.FieldOrigin,
			func(loc state.SourceLocation) state.SourceLocation { return loc }))

	dates := genkit.DefineTool(g, "travelDatesAgent",
		"Pin down concrete start and end dates (YYYY-MM-DD) for the trip and persist them.",
		subAgent(p, travelDatesInstruction, state.FieldSpecificDates,
			func(d state.TravelDates) state.TravelDates { return d }))

	destinations := genkit.DefineTool(g, "destinationAgent",
		"Suggest destination ideas as cluster journeys matching the user's profile, budget, origin and dates, and persist them.",
		subAgent(p, destinationInstruction, state.FieldDestinations,
			func(ideas DestinationIdeas) []state.ClusterJourney { return ideas.Places }))

	itinerary := genkit.DefineTool(g, "itineraryAgent",
		"Produce the final structured day-by-day itinerary for the planned trip and persist it.",
		subAgent(p, itineraryInstruction, state.FieldItinerary,
			func(it state.Itinerary) state.Itinerary { return it }))

	return []ai.ToolRef{memorize, source, dates, destinations, itinerary}
}

// memorize writes one (key, value) pair through the session store's merge
// path. The session being written is taken from the invocation context.
func (p *Planner) memorize(ctx *ai.ToolContext, input MemorizeInput) (MemorizeOutput, error) {
	userID, sessionID, ok := SessionFromContext(ctx)
	if !ok {
		return MemorizeOutput{}, ErrMissingSession
	}
	if input.Key == "" {
		return MemorizeOutput{}, fmt.Errorf("memorize: key is required")
	}

	updates := map[string]json.RawMessage{input.Key: input.Value}
	if err := p.sessions.ApplyUpdates(sessionID, userID, updates); err != nil {
		return MemorizeOutput{}, fmt.Errorf("memorize %q: %w", input.Key, err)
	}

	p.logger.Debug("memorized state field",
		"key", input.Key,
		"user_id", userID,
		"session_id", sessionID)
	return MemorizeOutput{Status: "ok", Key: input.Key}, nil
}

// subAgent builds a tool handler that runs a focused structured generation
// (the equivalent of a schema-constrained sub-agent) and persists its output
// under the given state field. extract maps the generated schema type to the
// value stored in state.
func subAgent[T, V any](p *Planner, instruction, field string, extract func(T) V) func(*ai.ToolContext, SubAgentInput) (T, error) {
	return func(ctx *ai.ToolContext, input SubAgentInput) (T, error) {
		var out T

		userID, sessionID, ok := SessionFromContext(ctx)
		if !ok {
			return out, ErrMissingSession
		}

		snap, err := p.sessions.Get(sessionID, userID)
		if err != nil {
			return out, fmt.Errorf("%s: loading session: %w", field, err)
		}
		stateJSON, err := json.Marshal(snap.State)
		if err != nil {
			return out, fmt.Errorf("%s: encoding state: %w", field, err)
		}

		resp, err := genkit.Generate(ctx, p.g,
			ai.WithModelName(p.model),
			ai.WithSystem(instruction+"\n\nCurrent session state:\n"+string(stateJSON)),
			ai.WithMessages(ai.NewUserMessage(ai.NewTextPart(input.Request))),
			ai.WithOutputType(out),
		)
		if err != nil {
			return out, fmt.Errorf("%s: %w: %w", field, ErrGenerationFailed, err)
		}
		if err := resp.Output(&out); err != nil {
			return out, fmt.Errorf("%s: decoding output: %w", field, err)
		}

		value, err := json.Marshal(extract(out))
		if err != nil {
			return out, fmt.Errorf("%s: encoding value: %w", field, err)
		}
		if err := p.sessions.ApplyUpdates(sessionID, userID, map[string]json.RawMessage{field: value}); err != nil {
			return out, fmt.Errorf("%s: persisting: %w", field, err)
		}

		p.logger.Debug("sub-agent persisted state field",
			"key", field,
			"user_id", userID,
			"session_id", sessionID)
		return out, nil
	}
}
