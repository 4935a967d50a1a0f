package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"recipe-sync/internal/domain/job"

	"github.com/google/uuid"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
		return nil
	}
}

func TestHub_PublishOnlyReachesOwner(t *testing.T) {
	h := startHub(t)

	owner := uuid.New()
	other := uuid.New()
	a := &Client{hub: h, userID: owner.String(), send: make(chan []byte, 4)}
	b := &Client{hub: h, userID: other.String(), send: make(chan []byte, 4)}
	h.Register(a)
	h.Register(b)
	waitForClients(t, h, 2)

	n := NewNotifier(h)
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	j := job.ScrapingJob{ID: uuid.New(), UserID: owner, Status: job.StatusProcessing}
	n.JobStalled(context.Background(), j, "no_items")

	var evt JobEvent
	if err := json.Unmarshal(receive(t, a), &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.Type != EventJobStalled || evt.JobID != j.ID.String() || evt.Reason != "no_items" {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if evt.Timestamp != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected timestamp %q", evt.Timestamp)
	}

	select {
	case msg := <-b.send:
		t.Fatalf("other user received %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)

	c := &Client{hub: h, userID: uuid.NewString(), send: make(chan []byte, 1)}
	h.Register(c)
	waitForClients(t, h, 1)

	h.Unregister(c)
	waitForClients(t, h, 0)

	if _, ok := <-c.send; ok {
		t.Fatalf("expected send channel closed")
	}
}

func TestNotifier_NilHub(t *testing.T) {
	var n *Notifier
	n.JobUpdated(context.Background(), job.ScrapingJob{})
	NewNotifier(nil).JobUpdated(context.Background(), job.ScrapingJob{})
}
