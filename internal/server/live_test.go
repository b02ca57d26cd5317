package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/service"
)

func TestHubBroadcastReachesClient(t *testing.T) {
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := &liveClient{hub: h, send: make(chan []byte, clientSendSize)}
	h.add(c)

	h.BroadcastScan(service.ScanFeedEvent{RollNo: "B21ME1042", Result: "ALLOWED"})

	select {
	case msg := <-c.send:
		assert.Contains(t, string(msg), "B21ME1042")
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := &liveClient{hub: h, send: make(chan []byte, clientSendSize)}
	h.add(c)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, open := <-c.send
	assert.False(t, open, "registered client left open on shutdown")
}

func TestHubAddRemoveAfterShutdown(t *testing.T) {
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	late := &liveClient{hub: h, send: make(chan []byte, clientSendSize)}
	returned := make(chan struct{})
	go func() {
		h.add(late)
		h.remove(late)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after hub shutdown")
	}

	_, open := <-late.send
	require.False(t, open, "late client must be closed, not parked")
}
