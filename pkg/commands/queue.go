// Package commands is an ordered queue of filesystem operations that can be
// executed for real or simulated.
//
// Both modes record the same [Results]: a simulated command reads its inputs
// from what earlier simulated commands recorded before falling back to the
// filesystem, so a dry run previews exactly what a real run would write.
// Execution stops at the first failing command and nothing is rolled back.
package commands

import (
	"fmt"

	"github.com/supreme-majesty/mmm-builder/pkg/events"
)

// Queue is an ordered list of commands bound to a workspace.
type Queue struct {
	ws       Workspace
	bus      *events.Bus
	commands []Command
}

// NewQueue returns an empty queue. bus may be nil.
func NewQueue(ws Workspace, bus *events.Bus) *Queue {
	return &Queue{ws: ws, bus: bus}
}

// Add appends commands in order.
func (q *Queue) Add(cmds ...Command) {
	q.commands = append(q.commands, cmds...)
}

// Commands returns the queued commands.
func (q *Queue) Commands() []Command {
	return q.commands
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	return len(q.commands)
}

// Workspace returns the workspace the queue operates on. Entry points use it
// to inspect the current state while deciding what to queue.
func (q *Queue) Workspace() Workspace {
	return q.ws
}

// Execute runs all commands in order, recording into results. With simulate
// set the filesystem is not modified.
func (q *Queue) Execute(results Results, simulate bool) error {
	executed := events.CommandExecuted
	if simulate {
		executed = events.CommandSimulated
	}
	for i, c := range q.commands {
		payload := events.CommandPayload{Index: i, Description: c.Describe(), Path: c.Path()}
		if err := c.Execute(q.ws, results, simulate); err != nil {
			payload.Err = err
			q.bus.Publish(events.Event{Type: events.CommandFailed, Payload: payload})
			return fmt.Errorf("command %d (%s) failed: %w", i+1, c.Describe(), err)
		}
		q.bus.Publish(events.Event{Type: executed, Payload: payload})
	}
	q.bus.Publish(events.Event{
		Type:    events.QueueFinished,
		Payload: events.QueuePayload{Commands: len(q.commands), Simulate: simulate},
	})
	return nil
}
