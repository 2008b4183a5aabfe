package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/BigBang1112/tmwrr-sub000/pkg/retry"
)

func TestPolicy_Do(t *testing.T) {
	Convey("Given a fast retry policy", t, func() {
		p := retry.NewPolicy(
			retry.WithInterval(time.Millisecond),
			retry.WithAttemptTimeout(50*time.Millisecond),
			retry.WithJitter(0),
		)

		Convey("When the operation succeeds immediately", func() {
			calls := 0
			err := p.Do(context.Background(), func(context.Context) error {
				calls++
				return nil
			})

			Convey("Then it should run exactly once", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When the operation fails transiently then succeeds", func() {
			transient := errors.New("data still stale")
			calls := 0
			err := p.Do(context.Background(), func(context.Context) error {
				calls++
				if calls < 3 {
					return transient
				}
				return nil
			})

			Convey("Then it should keep retrying until success", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 3)
			})
		})

		Convey("When the operation returns a permanent error", func() {
			boom := errors.New("category does not exist")
			calls := 0
			err := p.Do(context.Background(), func(context.Context) error {
				calls++
				return retry.Permanent(boom)
			})

			Convey("Then it should give up after a single attempt", func() {
				So(calls, ShouldEqual, 1)
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When the caller's context is cancelled mid-retry", func() {
			ctx, cancel := context.WithCancel(context.Background())
			transient := errors.New("data still stale")
			calls := 0
			err := p.Do(ctx, func(context.Context) error {
				calls++
				if calls == 2 {
					cancel()
				}
				return transient
			})

			Convey("Then the loop should stop instead of retrying forever", func() {
				So(err, ShouldNotBeNil)
				So(calls, ShouldBeLessThanOrEqualTo, 3)
			})
		})

		Convey("When an attempt outlives the per-attempt timeout", func() {
			tight := retry.NewPolicy(
				retry.WithInterval(time.Millisecond),
				retry.WithAttemptTimeout(5*time.Millisecond),
				retry.WithJitter(0),
			)
			var sawDeadline bool
			calls := 0
			err := tight.Do(context.Background(), func(actx context.Context) error {
				calls++
				select {
				case <-actx.Done():
					sawDeadline = true
					return retry.Permanent(actx.Err())
				case <-time.After(time.Second):
					return nil
				}
			})

			Convey("Then the attempt context should expire on its own", func() {
				So(sawDeadline, ShouldBeTrue)
				So(calls, ShouldEqual, 1)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}
