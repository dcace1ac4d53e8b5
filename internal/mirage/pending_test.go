package mirage

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestPending_ResultBeforeAndAfter(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	p := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 7, nil
	})

	if _, err := p.Result(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Result before completion err = %v, want ErrNotReady", err)
	}
	close(release)
	<-p.Done()
	if v, err := p.Result(); v != 7 || err != nil {
		t.Errorf("Result = %d, %v; want 7", v, err)
	}
}

func TestPending_WaitReturnsError(t *testing.T) {
	want := errors.New("failed")
	p := Go(context.Background(), func(context.Context) (string, error) { return "", want })
	if _, err := p.Wait(context.Background()); !errors.Is(err, want) {
		t.Errorf("Wait err = %v, want %v", err, want)
	}
}

func TestPending_WaitContextDone(t *testing.T) {
	p := newPending[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v, want DeadlineExceeded", err)
	}
	if _, err := p.Result(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Result err = %v, want ErrNotReady", err)
	}
}

func TestSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleep on cancelled ctx = %v", err)
	}
	if err := sleep(context.Background(), 0); err != nil {
		t.Errorf("sleep(0) = %v", err)
	}
}
