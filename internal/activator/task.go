package activator

import (
	"context"
	"fmt"

	"github.com/larsks/datamodule/internal/behavior"
	"github.com/sourcegraph/conc"
)

// Task is the handle of a single pair activation.
type Task struct {
	Pair
	done     chan struct{}
	instance behavior.Instance
	err      error
}

func newTask(p Pair) *Task {
	return &Task{
		Pair: p,
		done: make(chan struct{}),
	}
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its outcome.
func (t *Task) Wait() (behavior.Instance, error) {
	<-t.done
	return t.instance, t.err
}

// Instance returns the constructed instance, or nil if the task failed or
// has not finished.
func (t *Task) Instance() behavior.Instance {
	select {
	case <-t.done:
		return t.instance
	default:
		return nil
	}
}

// Err returns the task error, or nil if the task succeeded or has not
// finished.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Sweep is the set of tasks started by one call to Activate.
type Sweep struct {
	tasks []*Task
	wg    conc.WaitGroup
	done  chan struct{}
}

func newSweep(size int) *Sweep {
	return &Sweep{
		tasks: make([]*Task, 0, size),
		done:  make(chan struct{}),
	}
}

// Tasks returns the task handles in initiation order.
func (s *Sweep) Tasks() []*Task {
	return s.tasks
}

// Len returns the number of pairs in the sweep.
func (s *Sweep) Len() int {
	return len(s.tasks)
}

// Done is closed once every task has finished.
func (s *Sweep) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until every task has finished and returns the failures of
// individual pairs joined into one error, or nil.
func (s *Sweep) Wait() error {
	<-s.done
	return s.result()
}

// WaitContext is Wait bounded by ctx. If ctx ends first the context error
// is returned; tasks keep running.
func (s *Sweep) WaitContext(ctx context.Context) error {
	select {
	case <-s.done:
		return s.result()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failed returns the tasks that finished with an error.
func (s *Sweep) Failed() []*Task {
	var failed []*Task
	for _, t := range s.tasks {
		if t.Err() != nil {
			failed = append(failed, t)
		}
	}
	return failed
}

func (s *Sweep) result() error {
	ec := NewErrorCollector()
	for _, t := range s.tasks {
		ec.AddError(t.err)
	}
	if !ec.HasErrors() {
		return nil
	}
	return ec.Result(fmt.Sprintf("activation: %d of %d pairs failed", ec.Count(), len(s.tasks)))
}
