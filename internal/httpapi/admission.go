package httpapi

import (
	"context"
	"time"
)

// admission bounds how many batches may wait for the single generation slot.
type admission struct {
	queueCh chan struct{}
	genCh   chan struct{}
	maxWait time.Duration
}

func newAdmission(depth int, maxWait time.Duration) *admission {
	if depth <= 0 {
		depth = 1
	}
	if maxWait <= 0 {
		maxWait = 30 * time.Second
	}
	return &admission{
		queueCh: make(chan struct{}, depth),
		genCh:   make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// begin reserves a queue slot and then the generation slot. The returned
// release func must be called once the batch finishes.
func (a *admission) begin(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(a.maxWait)
	defer timer.Stop()
	select {
	case a.queueCh <- struct{}{}:
		queueDepth.Inc()
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{reason: "queue_full"}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-a.queueCh
			queueDepth.Dec()
		}
	}()
	timer.Reset(a.maxWait)
	select {
	case a.genCh <- struct{}{}:
		acquired = true
		return func() {
			<-a.genCh
			<-a.queueCh
			queueDepth.Dec()
		}, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{reason: "wait_timeout"}
	}
}

// depth returns the number of batches queued or generating.
func (a *admission) depth() int { return len(a.queueCh) }
