// Package agent turns a user message plus session state into a final
// response and a set of state mutations.
//
// The [Orchestrator] interface is the boundary the transport layer depends
// on: one Invoke per chat turn, no further contract. [Planner] is the
// Genkit-backed implementation. Its root instruction steers the model through
// onboarding and trip planning, a memorize tool writes through the session
// store's merge path, and structured sub-agent tools (source location, travel
// dates, itinerary, destinations) persist their outputs under their state key.
//
// Session identity travels on the context (see ContextWithSession) so tools
// registered once per Genkit instance can address the caller's session.
package agent
