package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivanchev/except"
)

func main() {
	var (
		duration time.Duration
		workers  int
		trace    bool
	)
	flag.DurationVar(&duration, "duration", 10*time.Second, "how long to run")
	flag.IntVar(&workers, "workers", 5, "number of concurrent workers")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.Parse()

	// each worker nests up to four protected blocks at once
	opts := []except.Option{
		except.WithEnvCapacity(8 * workers),
		except.WithRecordCapacity(8 * workers),
	}
	if trace {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		opts = append(opts, except.WithLogger(log))
	}
	reg := except.New(opts...)

	fmt.Printf("stress testing try/catch for %v with %v workers\n", duration, workers)

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var total atomic.Int64
	var group errgroup.Group
	for i := 0; i < workers; i++ {
		rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(i)))
		group.Go(func() error {
			for ctx.Err() == nil {
				secrets := [3]int{rng.Int(), rng.Int(), rng.Int()}
				if err := runScenario(reg, secrets); err != nil {
					return err
				}
				total.Add(1)
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	start := time.Now()
	for running := true; running; {
		select {
		case <-tick.C:
			color.Green("after %.0fs: %v runs ok", time.Since(start).Seconds(), total.Load())
		case err := <-done:
			if err != nil {
				color.Red("FAILED: %v", err)
				os.Exit(1)
			}
			running = false
		}
	}

	if err := reg.Close(); err != nil {
		color.Red("LEAKS: %v", err)
		os.Exit(1)
	}
	color.Green("successfully completed %v runs with %v workers", total.Load(), workers)
}

// runScenario is the canonical round trip: an inner failure wrapped as
// the cause of a second exception, repeated across two more frames
// with the last secret appended along the way, then checked against
// the expected concatenation of all three secrets.
func runScenario(reg *except.Registry, secrets [3]int) error {
	var got string
	reg.Try(func() {
		reg.Try(func() {
			inner(reg, secrets)
		}, func(e *except.Exception) {
			e.Appendf(" %d", secrets[2])
			reg.Repeat(e)
		})
	}, func(e *except.Exception) {
		got = fmt.Sprintf("%v %v", e.Cause().Message(), e.Message())
		reg.Free(e)
	})

	want := fmt.Sprintf("%v %v %v", secrets[0], secrets[1], secrets[2])
	if got != want {
		return fmt.Errorf("scenario corrupted: got %q, want %q", got, want)
	}
	return nil
}

func inner(reg *except.Registry, secrets [3]int) {
	reg.Try(func() {
		reg.Try(func() {
			reg.Throw(except.CodeOther, nil, "no error")
		}, func(e *except.Exception) {
			reg.Free(e)
			cause := reg.Alloc(except.CodeOther, nil, "%d", secrets[0])
			reg.Throw(except.CodeOther, cause, "%d", secrets[1])
		})
	}, func(e *except.Exception) {
		reg.Repeat(e)
	})
}
