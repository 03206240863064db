// Package agents provides the agent data model, the per-tick intent state
// machine, and the birth procedure.
package agents

import (
	"fmt"
	"strings"

	"github.com/talgya/mini-economy/internal/world"
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Job fixes an agent's behavior cycle for its whole lifetime.
type Job uint8

const (
	JobHarvester Job = iota // Carries raw material from resource sites to settlements
	JobProcessor            // Turns raw material into processed material inside settlements
	JobBuilder              // Carries processed material out to open land
)

// NumJobs is the total number of jobs.
const NumJobs = 3

// JobName returns a human-readable name for a job.
func JobName(j Job) string {
	switch j {
	case JobHarvester:
		return "Harvester"
	case JobProcessor:
		return "Processor"
	case JobBuilder:
		return "Builder"
	default:
		return "Unknown"
	}
}

// ParseJob resolves a case-insensitive job name.
func ParseJob(name string) (Job, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "harvester":
		return JobHarvester, nil
	case "processor":
		return JobProcessor, nil
	case "builder":
		return JobBuilder, nil
	}
	return 0, fmt.Errorf("unknown job %q", name)
}

// Agent is a mobile population member.
type Agent struct {
	ID       AgentID             `json:"id"`
	Job      Job                 `json:"job"`
	Position world.Coord         `json:"position"`
	Carrying *world.ResourceKind `json:"carrying,omitempty"` // nil when empty-handed
	BornTick uint64              `json:"born_tick"`
}

// Carry puts one unit of r in the agent's hands, replacing anything held.
func (a *Agent) Carry(r world.ResourceKind) {
	a.Carrying = &r
}

// Drop empties the agent's hands.
func (a *Agent) Drop() {
	a.Carrying = nil
}

// IsCarrying reports whether the agent holds a unit of r.
func (a *Agent) IsCarrying(r world.ResourceKind) bool {
	return a.Carrying != nil && *a.Carrying == r
}
