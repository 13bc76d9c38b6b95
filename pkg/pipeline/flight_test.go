package pipeline

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestShareMergesConcurrentCalls(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const callers = 8
	var launched, done sync.WaitGroup
	results := make([]any, callers)
	launched.Add(callers)
	done.Add(callers)
	for i := range callers {
		go func() {
			defer done.Done()
			launched.Done()
			v, err := r.share(ctx, "k", fn)
			if err != nil {
				t.Errorf("share() error: %v", err)
			}
			results[i] = v
		}()
	}
	launched.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fn ran %d times, want 1", got)
	}
	for i, v := range results {
		if v != 42 {
			t.Errorf("caller %d got %v, want 42", i, v)
		}
	}
}

func TestShareCallerCancelled(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.share(ctx, "k", func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("share() error = %v, want context.Canceled", err)
	}
}

func TestShareTakesOverFromCancelledLeader(t *testing.T) {
	r, _ := newTestRunner(t)
	leaderCtx, cancelLeader := context.WithCancel(context.Background())

	var calls atomic.Int32
	entered := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return "done", nil
	}

	leaderErr := make(chan error, 1)
	go func() {
		_, err := r.share(leaderCtx, "k", fn)
		leaderErr <- err
	}()
	<-entered

	followerVal := make(chan any, 1)
	go func() {
		v, err := r.share(context.Background(), "k", fn)
		if err != nil {
			t.Errorf("follower error: %v", err)
		}
		followerVal <- v
	}()
	cancelLeader()

	if err := <-leaderErr; !stderrors.Is(err, context.Canceled) {
		t.Errorf("leader error = %v, want context.Canceled", err)
	}
	if v := <-followerVal; v != "done" {
		t.Errorf("follower got %v, want done", v)
	}
}

func TestRunnerSequenceConcurrentCallersAgree(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	const callers = 6
	var wg sync.WaitGroup
	results := make([]*SequenceResult, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Sequence(ctx, Options{MaxN: 40, Workers: 2})
			if err != nil {
				t.Errorf("Sequence() error: %v", err)
				return
			}
			results[i] = res
		}()
	}
	wg.Wait()

	for i, res := range results {
		if res == nil {
			continue
		}
		if res.Values[15].Int64() != 29379 {
			t.Errorf("caller %d: Values[15] = %s, want 29379", i, res.Values[15])
		}
	}
}

func TestRunnerSequenceCancelled(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Sequence(ctx, Options{MaxN: 60})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Sequence() error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Errorf("Sequence() result = %+v, want nil", res)
	}
}
