package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edlane/primer/internal/adapters/mq/queue"
	"github.com/edlane/primer/internal/adapters/mq/worker"
	"github.com/edlane/primer/internal/domain/aggregate"
	"github.com/smartystreets/goconvey/convey"
)

type fakeAggregator struct {
	mu    sync.Mutex
	calls []string
	delay time.Duration
	errs  map[string]error
	max   int32
	cur   int32
}

func (f *fakeAggregator) Aggregate(ctx context.Context, studentID string) error {
	n := atomic.AddInt32(&f.cur, 1)
	for {
		prev := atomic.LoadInt32(&f.max)
		if n <= prev || atomic.CompareAndSwapInt32(&f.max, prev, n) {
			break
		}
	}
	defer atomic.AddInt32(&f.cur, -1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, studentID)
	err := f.errs[studentID]
	f.mu.Unlock()
	return err
}

func (f *fakeAggregator) callCount(studentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.calls {
		if id == studentID {
			n++
		}
	}
	return n
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorker_ProcessJob(t *testing.T) {
	convey.Convey("Given a worker on an in-memory queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		agg := &fakeAggregator{errs: map[string]error{}}
		guard := worker.NewInflightGuard()
		w := worker.NewWorker(q, agg, guard)
		go w.Run(ctx)
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			_ = w.Shutdown(sctx)
		}()

		convey.Convey("When a job succeeds", func() {
			convey.So(q.Enqueue(ctx, worker.Job{StudentID: "s-1", RequestedAt: time.Now()}), convey.ShouldBeTrue)

			convey.Convey("Then the aggregator ran exactly once", func() {
				convey.So(waitFor(func() bool { return agg.callCount("s-1") == 1 }), convey.ShouldBeTrue)
				time.Sleep(20 * time.Millisecond)
				convey.So(agg.callCount("s-1"), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the window is empty", func() {
			agg.errs["s-empty"] = aggregate.ErrInsufficientData
			convey.So(q.Enqueue(ctx, worker.Job{StudentID: "s-empty"}), convey.ShouldBeTrue)

			convey.Convey("Then the job is not retried", func() {
				convey.So(waitFor(func() bool { return agg.callCount("s-empty") == 1 }), convey.ShouldBeTrue)
				time.Sleep(20 * time.Millisecond)
				convey.So(agg.callCount("s-empty"), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestWorker_Retries(t *testing.T) {
	convey.Convey("Given a worker with a budget of two retries", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		agg := &fakeAggregator{errs: map[string]error{"s-bad": errors.New("backend down")}}
		w := worker.NewWorker(q, agg, worker.NewInflightGuard(), worker.WithMaxRetries(2))
		go w.Run(ctx)
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			_ = w.Shutdown(sctx)
		}()

		convey.Convey("When a job fails every attempt", func() {
			convey.So(q.Enqueue(ctx, worker.Job{StudentID: "s-bad"}), convey.ShouldBeTrue)

			convey.Convey("Then it runs the initial attempt plus two retries and stops", func() {
				convey.So(waitFor(func() bool { return agg.callCount("s-bad") == 3 }), convey.ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)
				convey.So(agg.callCount("s-bad"), convey.ShouldEqual, 3)
			})
		})
	})
}

func TestWorker_RunTimeout(t *testing.T) {
	convey.Convey("Given a worker with a short run timeout and no retries", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		agg := &fakeAggregator{delay: 500 * time.Millisecond, errs: map[string]error{}}
		w := worker.NewWorker(q, agg, worker.NewInflightGuard(),
			worker.WithRunTimeout(20*time.Millisecond),
			worker.WithMaxRetries(0),
		)
		go w.Run(ctx)
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			_ = w.Shutdown(sctx)
		}()

		convey.Convey("When the aggregation outlives the timeout", func() {
			convey.So(q.Enqueue(ctx, worker.Job{StudentID: "s-slow"}), convey.ShouldBeTrue)

			convey.Convey("Then the run is cut off and not retried", func() {
				convey.So(waitFor(func() bool { return atomic.LoadInt32(&agg.max) >= 1 }), convey.ShouldBeTrue)
				time.Sleep(100 * time.Millisecond)
				convey.So(agg.callCount("s-slow"), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestPool_PerStudentExclusivity(t *testing.T) {
	convey.Convey("Given a pool of four workers and a slow aggregator", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		agg := &fakeAggregator{delay: 50 * time.Millisecond, errs: map[string]error{}}
		pool := worker.NewPool(4, q, agg)
		pool.Start(ctx)
		defer pool.Stop()

		convey.Convey("When many jobs for one student arrive at once", func() {
			for i := 0; i < 8; i++ {
				convey.So(q.Enqueue(ctx, worker.Job{StudentID: "s-hot"}), convey.ShouldBeTrue)
			}

			convey.Convey("Then at most one run is in flight at a time", func() {
				convey.So(waitFor(func() bool { return agg.callCount("s-hot") >= 1 }), convey.ShouldBeTrue)
				time.Sleep(200 * time.Millisecond)
				convey.So(atomic.LoadInt32(&agg.max), convey.ShouldBeLessThanOrEqualTo, 1)
			})
		})

		convey.Convey("When jobs for distinct students arrive", func() {
			for _, id := range []string{"s-a", "s-b", "s-c"} {
				convey.So(q.Enqueue(ctx, worker.Job{StudentID: id}), convey.ShouldBeTrue)
			}

			convey.Convey("Then every student is eventually aggregated", func() {
				convey.So(waitFor(func() bool {
					return agg.callCount("s-a") == 1 && agg.callCount("s-b") == 1 && agg.callCount("s-c") == 1
				}), convey.ShouldBeTrue)
			})
		})
	})
}
