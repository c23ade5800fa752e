package stats_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/huckstats/huck/internal/domain/model"
	"github.com/huckstats/huck/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)

// ev builds an event n seconds after the base timestamp.
func ev(player string, action model.ActionType, x, y float64, n int) model.Event {
	return model.Event{
		EventID:    player + "-" + action.String() + "-" + time.Duration(n).String(),
		PlayerName: player,
		Action:     action,
		Position:   model.Position{X: x, Y: y},
		Timestamp:  base.Add(time.Duration(n) * time.Second),
	}
}

// byName indexes results for assertion convenience.
func byName(results []model.PlayerStats) map[string]model.PlayerStats {
	m := make(map[string]model.PlayerStats, len(results))
	for _, r := range results {
		m[r.PlayerName] = r
	}
	return m
}

func TestEngine_DegenerateInput(t *testing.T) {
	Convey("Given an aggregation engine", t, func() {
		engine := stats.NewEngine()
		ctx := context.Background()

		Convey("When aggregating zero events", func() {
			out, err := engine.Aggregate(ctx, nil)

			Convey("Then it returns an empty result, not an error", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When aggregating a single event", func() {
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("Alice", model.ActionPull, 0, 0, 0),
			})

			Convey("Then no pairwise comparison is possible and the result is empty", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestEngine_CompletionRule(t *testing.T) {
	Convey("Given an aggregation engine", t, func() {
		engine := stats.NewEngine()
		ctx := context.Background()

		Convey("When a catch follows a pull 20 yards away", func() {
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("Alice", model.ActionPull, 0, 0, 0),
				ev("Bob", model.ActionCatch, 0, 20, 1),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then Alice is credited 20 throwing yards and no touch", func() {
				So(got["Alice"].ThrowingYards, ShouldEqual, 20.0)
				So(got["Alice"].Touches, ShouldEqual, 0)
				So(got["Alice"].Turnovers, ShouldEqual, 0)
			})

			Convey("And Bob is credited 20 receiving yards and one touch", func() {
				So(got["Bob"].ReceivingYards, ShouldEqual, 20.0)
				So(got["Bob"].Touches, ShouldEqual, 1)
				So(got["Bob"].Turnovers, ShouldEqual, 0)
			})
		})

		Convey("When a catch chain spans three players", func() {
			// A pulls, B catches 10 yards out, C catches 15 yards further.
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("A", model.ActionPull, 0, 0, 0),
				ev("B", model.ActionCatch, 0, 10, 1),
				ev("C", model.ActionCatch, 0, 25, 2),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then A gets throwing yards for the first completion", func() {
				So(got["A"].ThrowingYards, ShouldEqual, 10.0)
			})

			Convey("And B gets receiving yards for the first and throwing yards for the second", func() {
				So(got["B"].ReceivingYards, ShouldEqual, 10.0)
				So(got["B"].Touches, ShouldEqual, 1)
				So(got["B"].ThrowingYards, ShouldEqual, 15.0)
			})

			Convey("And C gets receiving yards for the second completion", func() {
				So(got["C"].ReceivingYards, ShouldEqual, 15.0)
				So(got["C"].Touches, ShouldEqual, 1)
			})
		})

		Convey("When the distance is diagonal", func() {
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("A", model.ActionCatch, 0, 0, 0),
				ev("B", model.ActionCatch, 3, 4, 1),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then yardage is the Euclidean distance", func() {
				So(got["A"].ThrowingYards, ShouldEqual, 5.0)
				So(got["B"].ReceivingYards, ShouldEqual, 5.0)
			})
		})

		Convey("When a catch follows a throwaway", func() {
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("Alice", model.ActionThrowaway, 0, 0, 0),
				ev("Bob", model.ActionCatch, 0, 10, 1),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then no completion fires but both players get zeroed entries", func() {
				So(len(out), ShouldEqual, 2)
				So(got["Alice"], ShouldResemble, model.PlayerStats{PlayerName: "Alice"})
				So(got["Bob"], ShouldResemble, model.PlayerStats{PlayerName: "Bob"})
			})
		})

		Convey("When a block is immediately followed by a catch", func() {
			// Thrower credit goes to whoever acted immediately before, but
			// only when that action was itself a catch or pull. A block
			// preceding a catch fires no completion at all.
			out2, err := engine.Aggregate(ctx, []model.Event{
				ev("Blocker", model.ActionDefenseBlock, 0, 0, 0),
				ev("Receiver", model.ActionCatch, 0, 30, 1),
			})
			So(err, ShouldBeNil)
			got := byName(out2)

			Convey("Then no yardage flows because a block cannot precede a completion", func() {
				So(got["Blocker"].ThrowingYards, ShouldEqual, 0.0)
				So(got["Receiver"].ReceivingYards, ShouldEqual, 0.0)
			})
		})

		Convey("When a catch chain runs through the same player twice", func() {
			// Give-and-go: A catches, B catches, A catches again.
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("A", model.ActionCatch, 0, 0, 0),
				ev("B", model.ActionCatch, 0, 10, 1),
				ev("A", model.ActionCatch, 0, 22, 2),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then A accumulates both throwing and receiving yardage", func() {
				So(got["A"].ThrowingYards, ShouldEqual, 10.0)
				So(got["A"].ReceivingYards, ShouldEqual, 12.0)
				So(got["A"].Touches, ShouldEqual, 1)
				So(got["B"].ThrowingYards, ShouldEqual, 12.0)
				So(got["B"].ReceivingYards, ShouldEqual, 10.0)
			})
		})
	})
}

func TestEngine_TurnoverRule(t *testing.T) {
	Convey("Given an aggregation engine", t, func() {
		engine := stats.NewEngine()
		ctx := context.Background()

		Convey("When a player catches and then turns the disc over", func() {
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("Alice", model.ActionPull, 0, 0, 0),
				ev("Bob", model.ActionCatch, 0, 20, 1),
				ev("Bob", model.ActionTurnover, 0, 20, 2),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then Bob keeps his completion stats and gains one turnover", func() {
				So(got["Bob"].Touches, ShouldEqual, 1)
				So(got["Bob"].ReceivingYards, ShouldEqual, 20.0)
				So(got["Bob"].Turnovers, ShouldEqual, 1)
			})

			Convey("And no yardage is computed for the turnover pair", func() {
				So(got["Bob"].ThrowingYards, ShouldEqual, 0.0)
			})
		})

		Convey("When the very first sorted event is a turnover", func() {
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("Eve", model.ActionTurnover, 0, 0, 0),
				ev("Bob", model.ActionPull, 0, 10, 1),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then it is never evaluated as current and counts nothing", func() {
				So(got["Eve"].Turnovers, ShouldEqual, 0)
			})
		})

		Convey("When turnovers happen back to back", func() {
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("A", model.ActionCatch, 0, 0, 0),
				ev("B", model.ActionTurnover, 0, 5, 1),
				ev("C", model.ActionTurnover, 0, 9, 2),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then each turnover is attributed to its own actor", func() {
				So(got["B"].Turnovers, ShouldEqual, 1)
				So(got["C"].Turnovers, ShouldEqual, 1)
			})
		})
	})
}

func TestEngine_Ordering(t *testing.T) {
	Convey("Given an aggregation engine", t, func() {
		engine := stats.NewEngine()
		ctx := context.Background()

		Convey("When the same events arrive in shuffled order", func() {
			ordered := []model.Event{
				ev("A", model.ActionPull, 0, 0, 0),
				ev("B", model.ActionCatch, 0, 10, 1),
				ev("C", model.ActionCatch, 0, 25, 2),
			}
			shuffled := []model.Event{ordered[2], ordered[0], ordered[1]}

			out1, err1 := engine.Aggregate(ctx, ordered)
			out2, err2 := engine.Aggregate(ctx, shuffled)

			Convey("Then output is independent of input order", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(byName(out1), ShouldResemble, byName(out2))
			})
		})

		Convey("When two events carry equal timestamps", func() {
			// The sort is stable: equal timestamps preserve input order,
			// so the catch stays adjacent to the pull that precedes it in
			// the input slice.
			events := []model.Event{
				ev("A", model.ActionPull, 0, 0, 1),
				ev("B", model.ActionCatch, 0, 20, 1),
			}
			out, err := engine.Aggregate(ctx, events)
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then the pair resolves deterministically in input order", func() {
				So(got["A"].ThrowingYards, ShouldEqual, 20.0)
				So(got["B"].ReceivingYards, ShouldEqual, 20.0)
				So(got["B"].Touches, ShouldEqual, 1)
			})

			Convey("And swapping the input order swaps the pair roles", func() {
				swapped := []model.Event{events[1], events[0]}
				out2, err2 := engine.Aggregate(ctx, swapped)
				So(err2, ShouldBeNil)
				got2 := byName(out2)
				// Now the catch comes first; pull-after-catch fires no rule.
				So(got2["A"].ThrowingYards, ShouldEqual, 0.0)
				So(got2["B"].Touches, ShouldEqual, 0)
			})
		})

		Convey("When aggregating the same input twice", func() {
			events := []model.Event{
				ev("A", model.ActionPull, 0, 0, 0),
				ev("B", model.ActionCatch, 5, 18, 1),
				ev("B", model.ActionTurnover, 5, 18, 2),
			}
			out1, err1 := engine.Aggregate(ctx, events)
			out2, err2 := engine.Aggregate(ctx, events)

			Convey("Then results are identical and the input is not mutated", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(byName(out1), ShouldResemble, byName(out2))
				So(events[0].Action, ShouldEqual, model.ActionPull)
				So(events[0].Timestamp.Equal(base), ShouldBeTrue)
			})
		})
	})
}

func TestEngine_Properties(t *testing.T) {
	Convey("Given a longer mixed event sequence", t, func() {
		engine := stats.NewEngine()
		ctx := context.Background()

		events := []model.Event{
			ev("A", model.ActionPull, 20, 0, 0),
			ev("B", model.ActionCatch, 18, 25, 1), // completion
			ev("C", model.ActionCatch, 10, 40, 2), // completion
			ev("C", model.ActionThrowaway, 10, 40, 3),
			ev("D", model.ActionTurnover, 12, 55, 4),
			ev("E", model.ActionDefenseBlock, 15, 60, 5),
			ev("B", model.ActionCatch, 20, 70, 6), // not a completion (block precedes)
			ev("F", model.ActionCatch, 20, 95, 7), // completion
			ev("F", model.ActionGoal, 20, 100, 8),
		}

		out, err := engine.Aggregate(ctx, events)
		So(err, ShouldBeNil)

		Convey("Then every numeric field is non-negative", func() {
			for _, r := range out {
				So(r.Touches, ShouldBeGreaterThanOrEqualTo, 0)
				So(r.ThrowingYards, ShouldBeGreaterThanOrEqualTo, 0.0)
				So(r.ReceivingYards, ShouldBeGreaterThanOrEqualTo, 0.0)
				So(r.Turnovers, ShouldBeGreaterThanOrEqualTo, 0)
			}
		})

		Convey("Then total touches equal the number of completion pairs", func() {
			touches := 0
			for _, r := range out {
				touches += r.Touches
			}
			So(touches, ShouldEqual, 3)
		})

		Convey("Then total turnovers equal the turnover events past index zero", func() {
			turnovers := 0
			for _, r := range out {
				turnovers += r.Turnovers
			}
			So(turnovers, ShouldEqual, 1)
		})

		Convey("Then every actor of an evaluated pair has exactly one record", func() {
			names := make(map[string]int)
			for _, r := range out {
				names[r.PlayerName]++
			}
			for name, n := range names {
				So(n, ShouldEqual, 1)
				So(name, ShouldBeIn, []string{"A", "B", "C", "D", "E", "F"})
			}
			So(len(out), ShouldEqual, 6)
		})
	})
}

func TestEngine_Rounding(t *testing.T) {
	Convey("Given throws with irrational distances", t, func() {
		engine := stats.NewEngine()
		ctx := context.Background()

		Convey("When a player accumulates several diagonal completions", func() {
			// Each hop is sqrt(2) yards; three hops accumulate before any
			// rounding happens.
			out, err := engine.Aggregate(ctx, []model.Event{
				ev("A", model.ActionCatch, 0, 0, 0),
				ev("B", model.ActionCatch, 1, 1, 1),
				ev("A", model.ActionCatch, 2, 2, 2),
				ev("B", model.ActionCatch, 3, 3, 3),
			})
			So(err, ShouldBeNil)
			got := byName(out)

			Convey("Then rounding applies once at emission, not per addition", func() {
				// 2*sqrt(2) = 2.828... -> 2.8; rounding per hop would give
				// 1.4+1.4 = 2.8 here, so also assert the 3-hop total on B+A.
				So(got["B"].ReceivingYards, ShouldEqual, math.Round(2*math.Sqrt2*10)/10)
				So(got["A"].ThrowingYards, ShouldEqual, math.Round(2*math.Sqrt2*10)/10)
				So(got["A"].ReceivingYards, ShouldEqual, 1.4)
			})

			Convey("And yardage carries exactly one decimal place", func() {
				for _, r := range out {
					So(r.ThrowingYards*10, ShouldAlmostEqual, math.Round(r.ThrowingYards*10), 1e-9)
					So(r.ReceivingYards*10, ShouldAlmostEqual, math.Round(r.ReceivingYards*10), 1e-9)
				}
			})
		})
	})
}

func TestEngine_MalformedInput(t *testing.T) {
	Convey("Given an aggregation engine", t, func() {
		engine := stats.NewEngine()
		ctx := context.Background()
		good := ev("A", model.ActionPull, 0, 0, 0)

		Convey("When an event is missing its player name", func() {
			bad := ev(" ", model.ActionCatch, 0, 10, 1)
			out, err := engine.Aggregate(ctx, []model.Event{good, bad})

			Convey("Then the whole call fails with no partial result", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, stats.ErrMalformedEvent), ShouldBeTrue)
				So(out, ShouldBeNil)
			})
		})

		Convey("When an event has a zero timestamp", func() {
			bad := model.Event{PlayerName: "B", Action: model.ActionCatch}
			_, err := engine.Aggregate(ctx, []model.Event{good, bad})

			Convey("Then the call fails as malformed input", func() {
				So(errors.Is(err, stats.ErrMalformedEvent), ShouldBeTrue)
			})
		})

		Convey("When an event carries non-finite coordinates", func() {
			bad := ev("B", model.ActionCatch, math.NaN(), 10, 1)
			_, err := engine.Aggregate(ctx, []model.Event{good, bad})

			Convey("Then it is rejected instead of propagating NaN yardage", func() {
				So(errors.Is(err, stats.ErrMalformedEvent), ShouldBeTrue)
			})

			inf := ev("B", model.ActionCatch, 0, math.Inf(1), 1)
			_, err = engine.Aggregate(ctx, []model.Event{good, inf})
			So(errors.Is(err, stats.ErrMalformedEvent), ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := engine.Aggregate(cancelled, []model.Event{good, ev("B", model.ActionCatch, 0, 10, 1)})

			Convey("Then the call fails synchronously", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
