package simcef

import (
	"sync"

	"go.uber.org/zap"

	"github.com/medialink/cef-bridge/capi"
)

// thread is one simulated scheduler thread: a goroutine draining a FIFO
// task queue. Accepted tasks carry one reference owned by the queue; it
// is dropped after execution, or without execution when the thread
// stops with tasks still queued.
type thread struct {
	rt     *Runtime
	name   string
	runner *capi.TaskRunner

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*capi.Task
	closed bool
	done   chan struct{}
}

func newThread(rt *Runtime, name string) *thread {
	th := &thread{rt: rt, name: name, done: make(chan struct{})}
	th.cond = sync.NewCond(&th.mu)
	th.runner = &capi.TaskRunner{
		PostTask: func(_ *capi.TaskRunner, task *capi.Task) int32 {
			return th.post(task)
		},
	}
	go th.run()
	return th
}

func (th *thread) post(task *capi.Task) int32 {
	if task == nil {
		return 0
	}
	th.mu.Lock()
	defer th.mu.Unlock()
	if th.closed {
		return 0
	}
	th.queue = append(th.queue, task)
	th.cond.Signal()
	return 1
}

func (th *thread) run() {
	for {
		th.mu.Lock()
		for len(th.queue) == 0 && !th.closed {
			th.cond.Wait()
		}
		if th.closed {
			rest := th.queue
			th.queue = nil
			th.mu.Unlock()
			for _, task := range rest {
				task.Base.Release(&task.Base)
			}
			close(th.done)
			return
		}
		task := th.queue[0]
		th.queue = th.queue[1:]
		th.mu.Unlock()

		th.execute(task)
		task.Base.Release(&task.Base)
	}
}

// execute guards the thread goroutine against task panics the same way
// the real scheduler's process boundary would.
func (th *thread) execute(task *capi.Task) {
	defer func() {
		if r := recover(); r != nil {
			th.rt.log.Error("task panicked on simulated thread",
				zap.String("thread", th.name),
				zap.Any("panic", r))
		}
	}()
	if task.Execute != nil {
		task.Execute(task)
	}
}

// stop rejects further posts and waits for the drain to finish. Safe to
// call more than once.
func (th *thread) stop() {
	th.mu.Lock()
	if th.closed {
		th.mu.Unlock()
		<-th.done
		return
	}
	th.closed = true
	th.cond.Broadcast()
	th.mu.Unlock()
	<-th.done
}
