package blocker

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// psutilSystem backs the blocker with gopsutil on the real machine.
type psutilSystem struct{}

func NewSystem() System {
	return psutilSystem{}
}

func (psutilSystem) List(ctx context.Context) ([]RunningProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	running := make([]RunningProcess, 0, len(procs))
	for _, p := range procs {
		// Processes can exit mid-scan; skip the ones we can no
		// longer name.
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		running = append(running, RunningProcess{PID: p.Pid, Name: name})
	}
	return running, nil
}

func (psutilSystem) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	return p.KillWithContext(ctx)
}
