package daemon_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storyreel/internal/daemon"
	"storyreel/internal/testsupport"
)

func TestDaemonServesAndShutsDown(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	// Wait for the listener to come up on its ephemeral port.
	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + d.Addr() + "/health")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("api never became reachable: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	defer first.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- first.Run(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := http.Get("http://" + first.Addr() + "/health"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first instance never came up")
		}
		time.Sleep(10 * time.Millisecond)
	}

	second, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	defer second.Close()

	if err := second.Run(context.Background()); err == nil {
		t.Fatal("expected second instance to fail on lock")
	}

	cancel()
	<-done
}
