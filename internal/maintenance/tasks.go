package maintenance

import (
	"context"
	"fmt"
)

// Sweeper removes stale learned state. Implemented by *learning.System.
type Sweeper interface {
	Sweep() int
	Flush()
}

// RetentionTask drops patterns older than the retention window and writes
// the pending snapshot.
type RetentionTask struct {
	Learning Sweeper
}

// Name implements Task.
func (RetentionTask) Name() string { return "learning_retention" }

// Execute implements Task.
func (t RetentionTask) Execute(ctx context.Context) TaskResult {
	if err := ctx.Err(); err != nil {
		return TaskResult{Message: "retention sweep cancelled", Error: err}
	}

	removed := t.Learning.Sweep()
	t.Learning.Flush()

	return TaskResult{
		Success:          true,
		Message:          fmt.Sprintf("removed %d stale patterns", removed),
		RecordsProcessed: removed,
	}
}
