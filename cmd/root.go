// Package cmd wires the command-line interface of the planner service.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Planner - conversational trip planning service",
	Long: `Planner is an LLM-backed trip planning service.

It exposes an HTTP API that routes chat messages through an orchestrator
agent, keeping per-session planning state (profile, dates, budget,
destinations, itinerary) in memory across turns.

Run "planner serve" to start the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
