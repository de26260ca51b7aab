package state

import (
	"context"
	"testing"
	"time"
)

func newTestEnv(t *testing.T) (*Env, *State, chan func(*State) error) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dispatchChan := make(chan func(*State) error, 10)
	env := &Env{
		DispatchChannel: dispatchChan,
		Context:         ctx,
		Cancel: func(err error) {
			cancel()
		},
	}
	return env, &State{Env: env}, dispatchChan
}

func TestDispatch(t *testing.T) {
	env, st, dispatchChan := newTestEnv(t)

	var called bool
	env.Dispatch(func(s *State) error {
		called = true
		return nil
	})

	select {
	case f := <-dispatchChan:
		if err := f(st); err != nil {
			t.Errorf("Dispatch error: %v", err)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for dispatched function")
	}

	if !called {
		t.Fatal("Dispatch function was not executed")
	}
}

func TestDispatchWait(t *testing.T) {
	env, st, dispatchChan := newTestEnv(t)

	go func() {
		f := <-dispatchChan
		_ = f(st)
	}()

	res, err := env.DispatchWait(func(s *State) (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.(int) != 42 {
		t.Fatalf("DispatchWait returned %v", res)
	}
}

func TestScheduleTask(t *testing.T) {
	env, st, dispatchChan := newTestEnv(t)

	var taskCalled bool
	env.ScheduleTask(func(s *State) error {
		taskCalled = true
		return nil
	}, 50*time.Millisecond)

	// Wait enough time for the scheduled task to be dispatched.
	time.Sleep(100 * time.Millisecond)
	select {
	case f := <-dispatchChan:
		if err := f(st); err != nil {
			t.Errorf("Scheduled task error: %v", err)
		}
	default:
		t.Fatal("No task was scheduled")
	}

	if !taskCalled {
		t.Fatal("Scheduled task was not executed")
	}
}

func TestKValuesSnapshot(t *testing.T) {
	env, _, _ := newTestEnv(t)
	if env.KValues() != DefaultKValues {
		t.Error("unset accessor must fall back to defaults")
	}
	k := KValues{K1: 2, K3: 2}
	env.SetKValues(k)
	if env.KValues() != k {
		t.Error("snapshot must reflect the last stored value")
	}
}
