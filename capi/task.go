package capi

// Task mirrors cef_task_t: a unit of work the scheduler executes once on
// its target thread. The scheduler holds its own reference for the time
// the task sits in a queue and releases it after execution, or without
// execution when the queue is torn down.
type Task struct {
	Base BaseRefCounted

	Execute func(self *Task)
}

// RefBase returns the reference-count header.
func (t *Task) RefBase() *BaseRefCounted { return &t.Base }

// TaskRunner mirrors the slice of cef_task_runner_t the bridge touches.
type TaskRunner struct {
	Base BaseRefCounted

	// PostTask queues the task for execution and returns nonzero on
	// acceptance. Acceptance transfers one reference to the scheduler;
	// rejection transfers nothing.
	PostTask func(self *TaskRunner, task *Task) int32
}

// RefBase returns the reference-count header.
func (r *TaskRunner) RefBase() *BaseRefCounted { return &r.Base }
