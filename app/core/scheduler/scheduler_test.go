package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegisterValidation(t *testing.T) {
	s := New()
	if err := s.Register(JobSpec{}); err == nil {
		t.Fatal("expected validation error")
	}
	if err := s.Register(JobSpec{Name: "both", Interval: time.Second, At: "06:30", Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatal("expected error for dual trigger")
	}
	if err := s.Register(JobSpec{Name: "bad-at", At: "25:99", Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatal("expected error for malformed daily trigger")
	}

	valid := JobSpec{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run:      func(context.Context) error { return nil },
	}
	if err := s.Register(valid); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := s.Register(valid); !errors.Is(err, ErrJobExists) {
		t.Fatalf("expected ErrJobExists, got: %v", err)
	}
}

func TestStartAndStop(t *testing.T) {
	s := New()
	var runs atomic.Int32

	err := s.Register(JobSpec{
		Name:       "counter",
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if runs.Load() == 0 {
		t.Fatal("expected job to run immediately when RunOnStart is true")
	}

	if err := s.Stop(200 * time.Millisecond); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestCancelStopsJob(t *testing.T) {
	s := New()
	runs := make(chan struct{}, 8)
	err := s.Register(JobSpec{
		Name:     "removable",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			select {
			case runs <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop(200 * time.Millisecond)

	select {
	case <-runs:
	case <-time.After(80 * time.Millisecond):
		t.Fatal("expected initial scheduler run")
	}

	if err := s.Cancel("removable"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := s.Cancel("removable"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	for {
		select {
		case <-runs:
			t.Fatal("expected no runs after cancel")
		default:
			return
		}
	}
}

func TestReplaceSwapsSpec(t *testing.T) {
	s := New()
	oldRuns := make(chan struct{}, 8)
	newRuns := make(chan struct{}, 8)

	if err := s.Replace(JobSpec{Name: "missing", Interval: time.Second, Run: func(context.Context) error { return nil }}); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for unknown job, got: %v", err)
	}

	err := s.Register(JobSpec{
		Name:     "swap",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			select {
			case oldRuns <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop(200 * time.Millisecond)

	select {
	case <-oldRuns:
	case <-time.After(80 * time.Millisecond):
		t.Fatal("expected original job to run")
	}

	err = s.Replace(JobSpec{
		Name:       "swap",
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
		Run: func(context.Context) error {
			select {
			case newRuns <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	select {
	case <-newRuns:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected replacement job to run")
	}

	if h := s.Health(); h.RegisteredJobs != 1 || h.RunningJobs != 1 {
		t.Fatalf("unexpected health after replace: %+v", h)
	}
}

func TestJobTimeout(t *testing.T) {
	s := New()
	finished := make(chan struct{}, 1)

	err := s.Register(JobSpec{
		Name:     "timeout",
		Interval: 10 * time.Millisecond,
		Timeout:  20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			finished <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop(200 * time.Millisecond)

	select {
	case <-finished:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected timeout to cancel job context")
	}
}

func TestNextDailyRun(t *testing.T) {
	tz := time.UTC
	now := time.Date(2025, 9, 15, 6, 0, 0, 0, tz)

	next, err := NextDailyRun(now, "06:30", tz)
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if want := time.Date(2025, 9, 15, 6, 30, 0, 0, tz); !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}

	// Already past today's trigger: roll to tomorrow.
	next, err = NextDailyRun(time.Date(2025, 9, 15, 6, 30, 0, 0, tz), "06:30", tz)
	if err != nil {
		t.Fatalf("next run: %v", err)
	}
	if want := time.Date(2025, 9, 16, 6, 30, 0, 0, tz); !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}

	if _, err := NextDailyRun(now, "late", tz); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSnapshotTracksLastRunState(t *testing.T) {
	s := New()
	failed := errors.New("boom")

	err := s.Register(JobSpec{
		Name:       "status-job",
		Interval:   100 * time.Millisecond,
		RunOnStart: true,
		Run: func(context.Context) error {
			return failed
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop(200 * time.Millisecond)

	deadline := time.Now().Add(150 * time.Millisecond)
	for {
		snap := s.Snapshot()
		if len(snap) == 1 && snap[0].Runs > 0 {
			if snap[0].Name != "status-job" {
				t.Fatalf("unexpected job name: %s", snap[0].Name)
			}
			if snap[0].LastError != failed.Error() {
				t.Fatalf("unexpected last error: %s", snap[0].LastError)
			}
			if snap[0].LastStartAt.IsZero() || snap[0].LastEndAt.IsZero() {
				t.Fatal("expected start and end time to be set")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot did not observe job run: %+v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
