package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egregors/iotsim/internal/telemetry"
)

type notifySpy struct {
	msgs []string
}

func (n *notifySpy) Notify(_ context.Context, _, message string) error {
	n.msgs = append(n.msgs, message)
	return nil
}

type collector struct {
	readings []telemetry.Reading
	errs     []error
}

func (c *collector) emit(r telemetry.Reading) { c.readings = append(c.readings, r) }
func (c *collector) fail(err error)           { c.errs = append(c.errs, err) }

func writeFile(t *testing.T, path, content string, mod time.Time) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFileTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.log")
	spy := &notifySpy{}
	ft := NewFileTail(path, time.Second, spy)
	c := &collector{}
	ctx := context.Background()
	mod := time.Now().Add(-time.Minute)

	// no file yet: one error and one notification per outage
	ft.check(ctx, c.emit, c.fail)
	ft.check(ctx, c.emit, c.fail)
	require.Len(t, c.errs, 1)
	assert.ErrorIs(t, c.errs[0], ErrDataFileMissing)
	require.Len(t, spy.msgs, 1)
	assert.Contains(t, spy.msgs[0], "data.log")

	// only the banner so far
	writeFile(t, path, telemetry.Banner+"\n", mod)
	ft.check(ctx, c.emit, c.fail)
	assert.Empty(t, c.readings)

	log := telemetry.Banner + "\nT:26.9,H:60.1\n"
	writeFile(t, path, log, mod.Add(time.Second))
	ft.check(ctx, c.emit, c.fail)
	assert.Equal(t, []telemetry.Reading{{Temperature: 26.9, Humidity: 60.1}}, c.readings)

	// unchanged file is not reported twice
	ft.check(ctx, c.emit, c.fail)
	assert.Len(t, c.readings, 1)

	log += "T:25.9,H:61.1\n"
	writeFile(t, path, log, mod.Add(2*time.Second))
	ft.check(ctx, c.emit, c.fail)
	require.Len(t, c.readings, 2)
	assert.Equal(t, telemetry.Reading{Temperature: 25.9, Humidity: 61.1}, c.readings[1])

	// a second outage notifies again
	require.NoError(t, os.Remove(path))
	ft.check(ctx, c.emit, c.fail)
	assert.Len(t, spy.msgs, 2)
	assert.Len(t, c.errs, 2)
}

func TestFileTailLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.log")

	var sb strings.Builder
	sb.WriteString(telemetry.Banner + "\n")
	for sb.Len() < 3*tailWindow {
		sb.WriteString("T:20.0,H:50.0\n")
	}
	sb.WriteString("T:29.9,H:69.9\n")
	writeFile(t, path, sb.String(), time.Now())

	c := &collector{}
	NewFileTail(path, 0, nil).check(context.Background(), c.emit, c.fail)

	assert.Equal(t, []telemetry.Reading{{Temperature: 29.9, Humidity: 69.9}}, c.readings)
	assert.Empty(t, c.errs)
}

func TestFileTailRunStops(t *testing.T) {
	ft := NewFileTail(filepath.Join(t.TempDir(), "data.log"), 10*time.Millisecond, nil)
	c := &collector{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, ft.Run(ctx, c.emit, c.fail))
	assert.Len(t, c.errs, 1)
}

func TestDecodePayload(t *testing.T) {
	r, err := decodePayload([]byte(`{"sensorId":"s1","timestamp":"2024-11-06T15:04:05Z","temperature":21.3,"humidity":51.7}`))
	require.NoError(t, err)
	assert.Equal(t, telemetry.Reading{Temperature: 21.3, Humidity: 51.7}, r)

	r, err = decodePayload([]byte("T:21.3,H:51.7\n"))
	require.NoError(t, err)
	assert.Equal(t, telemetry.Reading{Temperature: 21.3, Humidity: 51.7}, r)

	_, err = decodePayload([]byte("hello"))
	assert.ErrorIs(t, err, telemetry.ErrNotSample)
}

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMessage struct {
	mqtt.Message
	payload []byte
}

func (m fakeMessage) Payload() []byte { return m.payload }
func (m fakeMessage) Topic() string   { return "sensors/readings" }

// fakeSubscriber only implements what MQTTSource uses; other calls panic.
type fakeSubscriber struct {
	mqtt.Client

	subscribed   chan mqtt.MessageHandler
	subErr       error
	disconnected bool
}

func (f *fakeSubscriber) Subscribe(_ string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	if f.subErr == nil {
		f.subscribed <- cb
	}
	return doneToken{err: f.subErr}
}

func (f *fakeSubscriber) Unsubscribe(...string) mqtt.Token { return doneToken{} }

func (f *fakeSubscriber) Disconnect(uint) { f.disconnected = true }

func TestMQTTSource(t *testing.T) {
	client := &fakeSubscriber{subscribed: make(chan mqtt.MessageHandler, 1)}
	src := &MQTTSource{client: client, topic: "sensors/readings"}

	c := &collector{}
	got := make(chan telemetry.Reading, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, func(r telemetry.Reading) { got <- r }, c.fail)
	}()

	cb := <-client.subscribed
	cb(client, fakeMessage{payload: []byte(`{"temperature":22.1,"humidity":62.5}`)})
	assert.Equal(t, telemetry.Reading{Temperature: 22.1, Humidity: 62.5}, <-got)

	cb(client, fakeMessage{payload: []byte("garbage")})
	assert.Len(t, c.errs, 1)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, client.disconnected)
}

func TestMQTTSourceSubscribeError(t *testing.T) {
	boom := errors.New("not authorized")
	src := &MQTTSource{client: &fakeSubscriber{subErr: boom}, topic: "t"}

	err := src.Run(context.Background(), func(telemetry.Reading) {}, func(error) {})
	assert.ErrorIs(t, err, boom)
}
