package task

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ErrBusy is returned when an operation with the same name is still running.
var ErrBusy = errors.New("operation already in progress")

// Update is one progress event. Percent is -1 when only the message changed.
type Update struct {
	Percent int
	Message string
}

// Reporter publishes progress from inside an operation.
type Reporter func(percent int, message string)

// Func is a long-running operation. It should return promptly once ctx is
// done.
type Func func(ctx context.Context, report Reporter) error

const updateBuffer = 64

// Runner starts operations on their own goroutines and refuses to start one
// whose name is already in flight.
type Runner struct {
	ctx    context.Context
	logger *zap.Logger

	mu     sync.Mutex
	active map[string]*Handle
	wg     sync.WaitGroup
}

func NewRunner(ctx context.Context, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{ctx: ctx, logger: logger, active: map[string]*Handle{}}
}

// Submit starts fn under name.
func (r *Runner) Submit(name string, fn Func) (*Handle, error) {
	r.mu.Lock()
	if _, busy := r.active[name]; busy {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", name, ErrBusy)
	}
	ctx, cancel := context.WithCancel(r.ctx)
	h := &Handle{
		name:    name,
		updates: make(chan Update, updateBuffer),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	r.active[name] = h
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(ctx, h, fn)
	return h, nil
}

// Running reports whether name is in flight.
func (r *Runner) Running(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[name]
	return ok
}

// Wait blocks until every submitted operation has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, h *Handle, fn Func) {
	defer r.wg.Done()
	log := r.logger.With(zap.String("task", h.name))

	report := func(percent int, message string) {
		if percent > 100 {
			percent = 100
		}
		if percent < -1 {
			percent = -1
		}
		select {
		case h.updates <- Update{Percent: percent, Message: message}:
		case <-ctx.Done():
		}
	}

	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("task panicked", zap.Any("panic", rec), zap.String("stack", string(debug.Stack())))
				err = fmt.Errorf("%s panicked: %v", h.name, rec)
			}
		}()
		return fn(ctx, report)
	}()

	if err != nil {
		log.Warn("task failed", zap.Error(err))
	} else {
		log.Debug("task finished")
	}

	r.mu.Lock()
	delete(r.active, h.name)
	r.mu.Unlock()

	h.err = err
	h.cancel()
	close(h.updates)
	close(h.done)
}

// Handle tracks one submitted operation.
type Handle struct {
	name    string
	updates chan Update
	done    chan struct{}
	cancel  context.CancelFunc
	err     error
}

func (h *Handle) Name() string { return h.name }

// Updates delivers progress and is closed when the operation returns.
// Readers that stop early should Cancel so the operation does not block.
func (h *Handle) Updates() <-chan Update { return h.updates }

// Done is closed once the operation has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait returns the operation's error once it has finished.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Cancel asks the operation to stop at its next context check.
func (h *Handle) Cancel() { h.cancel() }
