package worker_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/huckstats/huck/internal/adapters/mq/queue"
	"github.com/huckstats/huck/internal/adapters/mq/worker"
	"github.com/huckstats/huck/internal/adapters/repository"
	"github.com/huckstats/huck/internal/domain/model"
	"github.com/huckstats/huck/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	eventChan chan worker.Event
	closeOnce sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		eventChan: make(chan worker.Event, 16),
	}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan worker.Event {
	return mq.eventChan
}

func (mq *mockQueue) Close() error {
	mq.closeOnce.Do(func() { close(mq.eventChan) })
	return nil
}

func (mq *mockQueue) addEvent(event worker.Event) { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	mq.eventChan <- event
}

type mockRecorder struct {
	mu       sync.Mutex
	recorded []model.Event
	errors   map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		errors: make(map[string]error),
	}
}

func (mr *mockRecorder) AppendEvent(_ context.Context, e model.Event) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if err, exists := mr.errors[e.EventID]; exists {
		return err
	}
	mr.recorded = append(mr.recorded, e)
	return nil
}

func (mr *mockRecorder) setError(eventID string, err error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.errors[eventID] = err
}

func (mr *mockRecorder) count() int {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	return len(mr.recorded)
}

func (mr *mockRecorder) has(eventID string) bool {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	for _, e := range mr.recorded {
		if e.EventID == eventID {
			return true
		}
	}
	return false
}

func testEvent(id string) model.Event {
	return model.Event{
		EventID:    id,
		GameID:     "game-1",
		PlayerName: "Alice",
		Action:     model.ActionCatch,
		Position:   model.Position{X: 25, Y: 60},
		Timestamp:  time.Now(),
	}
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

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a worker wired to a queue and recorder", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		q := newMockQueue()
		rec := newMockRecorder()
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test-worker"))

		Convey("When events arrive on the queue", func() {
			go w.Run(ctx)
			q.addEvent(testEvent("e-1"))
			q.addEvent(testEvent("e-2"))

			Convey("Then they are written through the recorder", func() {
				So(waitFor(func() bool { return rec.count() == 2 }), ShouldBeTrue)
				So(rec.has("e-1"), ShouldBeTrue)
				So(rec.has("e-2"), ShouldBeTrue)
			})
		})

		Convey("When the recorder reports a storage conflict", func() {
			rec.setError("dup", repository.ErrConflict)
			go w.Run(ctx)
			q.addEvent(testEvent("dup"))
			q.addEvent(testEvent("fresh"))

			Convey("Then the worker keeps processing subsequent events", func() {
				So(waitFor(func() bool { return rec.has("fresh") }), ShouldBeTrue)
				So(rec.has("dup"), ShouldBeFalse)
			})
		})

		Convey("When the recorder fails outright", func() {
			rec.setError("bad", errors.New("disk on fire"))
			go w.Run(ctx)
			q.addEvent(testEvent("bad"))
			q.addEvent(testEvent("good"))

			Convey("Then the failure does not stop the worker", func() {
				So(waitFor(func() bool { return rec.has("good") }), ShouldBeTrue)
			})
		})

		Convey("When the worker is shut down", func() {
			go w.Run(ctx)

			Convey("Then Shutdown returns once the loop has exited", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(ctx, time.Second)
				defer shutdownCancel()
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})

		Convey("When the queue channel closes", func() {
			go w.Run(ctx)
			So(q.Close(), ShouldBeNil)

			Convey("Then the worker stops on its own", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(ctx, time.Second)
				defer shutdownCancel()
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		q := newMockQueue()
		rec := newMockRecorder()

		Convey("When created with an explicit worker count", func() {
			pool := worker.NewPool(3, q, rec)

			Convey("Then it holds that many workers", func() {
				So(pool.Size(), ShouldEqual, 3)
			})
		})

		Convey("When created with a non-positive count", func() {
			pool := worker.NewPool(0, q, rec)

			Convey("Then it falls back to a CPU-derived size", func() {
				So(pool.Size(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When started and fed events", func() {
			pool := worker.NewPool(4, q, rec)
			pool.Start(ctx)
			for i := 0; i < 8; i++ {
				q.addEvent(testEvent("e-" + string(rune('a'+i))))
			}

			Convey("Then all events are recorded", func() {
				So(waitFor(func() bool { return rec.count() == 8 }), ShouldBeTrue)
			})

			Convey("And Shutdown drains and stops cleanly", func() {
				So(waitFor(func() bool { return rec.count() == 8 }), ShouldBeTrue)
				So(pool.Shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When shut down while events are still buffered", func() {
			buf := queue.NewInMemoryQueue(queue.WithCapacity(256))
			pool := worker.NewPool(2, buf, rec)
			for i := 0; i < 200; i++ {
				So(buf.Enqueue(ctx, testEvent("buffered-"+strconv.Itoa(i))), ShouldBeTrue)
			}
			pool.Start(ctx)

			Convey("Then every accepted event is persisted before Shutdown returns", func() {
				So(pool.Shutdown(ctx), ShouldBeNil)
				So(rec.count(), ShouldEqual, 200)
			})
		})
	})
}
