package host

import (
	"context"
	"testing"
	"time"

	"ona/abi"
	"ona/alloc"
	"ona/graphics"
	"ona/linear"
)

func TestChannelRoundTripsThroughHost(t *testing.T) {
	h, _ := newTestHost(t)
	ch := h.channelOpen()
	if !ch.Valid() {
		t.Fatal("expected a valid channel handle")
	}

	done := make(chan struct{})
	go func() {
		h.channelSend(ch, []byte("hello"))
		close(done)
	}()

	data, ok := h.channelReceive(ch)
	if !ok || string(data) != "hello" {
		t.Fatalf("got (%q, %v), want (%q, true)", data, ok, "hello")
	}
	<-done

	h.channelClose(ch)
	if _, ok := h.channelReceive(ch); ok {
		t.Fatal("expected receiving from a closed, unknown channel to report !ok")
	}
}

func newTestHost(t *testing.T) (*Host, *graphics.TestBackendView) {
	t.Helper()
	server, err := graphics.NewTestServer()
	if err != nil {
		t.Fatalf("NewTestServer: %v", err)
	}
	h, err := newWithServer(server, Options{Width: 320, Height: 240, ConcurrencyFraction: 1})
	if err != nil {
		t.Fatalf("newWithServer: %v", err)
	}
	t.Cleanup(h.Close)
	return h, server.TestBackend()
}

func TestRunStopsOnQuit(t *testing.T) {
	h, fb := newTestHost(t)
	fb.QueueQuit()

	done := make(chan struct{})
	go func() {
		h.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after a quit event")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h, _ := newTestHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestMaterialCreateAndRenderSpriteRoundTrip(t *testing.T) {
	h, fb := newTestHost(t)

	im, errCode := h.imageSolid(alloc.Default(), abi.Point2{X: 4, Y: 4}, abi.Color{R: 255, G: 0, B: 0, A: 255})
	if errCode != abi.ImageErrorNone {
		t.Fatalf("imageSolid failed: %v", errCode)
	}
	material := h.materialCreate(&im)
	if !material.Valid() {
		t.Fatal("expected a valid material handle")
	}

	queue := h.graphicsQueueForSlot(0)
	h.renderSprite(queue, material, abi.Sprite{Origin: abi.Vector3{10, 10, 0}, Tint: abi.Color{R: 255, G: 255, B: 255, A: 255}})
	h.server.Update()

	if len(fb.Draws()) != 1 {
		t.Fatalf("expected renderSprite to produce one batched draw, got %d", len(fb.Draws()))
	}
}

func TestOptionsFromConfigAppliesDefaults(t *testing.T) {
	opts := OptionsFromConfig(emptyConfig{})
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight || opts.Title != DefaultTitle {
		t.Fatalf("expected defaults, got %+v", opts)
	}
}

type emptyConfig struct{}

func (emptyConfig) String(string) (string, bool)          { return "", false }
func (emptyConfig) Vector2(string) (linear.Vector2, bool) { return linear.Vector2{}, false }
func (emptyConfig) StringSlice(string) ([]string, bool)   { return nil, false }
