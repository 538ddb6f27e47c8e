package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/egregors/iotsim/internal/notifier"
	"github.com/egregors/iotsim/internal/publish"
	"github.com/egregors/iotsim/internal/telemetry"
	"github.com/egregors/iotsim/log"
)

const (
	DefaultPoll = 2 * time.Second

	// tailWindow bytes from the end of the file are enough to hold the last line.
	tailWindow = 4 << 10
)

var ErrDataFileMissing = errors.New("data file not found, is the simulator running?")

// Source feeds readings to the dashboard until ctx is done. Non-fatal
// problems go to fail, a returned error stops the dashboard.
type Source interface {
	Run(ctx context.Context, emit func(telemetry.Reading), fail func(error)) error
}

// FileTail polls a file the simulator's stdout is redirected to and reports
// its last sample whenever the file changes.
type FileTail struct {
	path     string
	poll     time.Duration
	notifier notifier.Notifier

	missing bool
	size    int64
	modTime time.Time
}

func NewFileTail(path string, poll time.Duration, n notifier.Notifier) *FileTail {
	if poll <= 0 {
		poll = DefaultPoll
	}
	if n == nil {
		n = notifier.NewNoop()
	}

	return &FileTail{path: path, poll: poll, notifier: n}
}

func (f *FileTail) Run(ctx context.Context, emit func(telemetry.Reading), fail func(error)) error {
	log.Info.Printf("tail %s every %v", f.path, f.poll)

	t := time.NewTicker(f.poll)
	defer t.Stop()

	for {
		f.check(ctx, emit, fail)

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func (f *FileTail) check(ctx context.Context, emit func(telemetry.Reading), fail func(error)) {
	r, changed, err := f.readLast()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.outage(ctx, fail)
	case err != nil:
		f.missing = false
		if !errors.Is(err, telemetry.ErrNotSample) {
			log.Erro.Printf("can't read %s: %s", f.path, err.Error())
			fail(err)
		}
	default:
		if f.missing {
			log.Info.Printf("%s is back", f.path)
		}
		f.missing = false
		if changed {
			emit(r)
		}
	}
}

// outage reports a missing file once until it shows up again.
func (f *FileTail) outage(ctx context.Context, fail func(error)) {
	if f.missing {
		return
	}
	f.missing = true

	log.Erro.Printf("%s: %s", f.path, ErrDataFileMissing.Error())
	fail(ErrDataFileMissing)

	msg := fmt.Sprintf("%s: %s", f.path, ErrDataFileMissing.Error())
	if err := f.notifier.Notify(ctx, "IoT simulator offline", msg); err != nil {
		log.Erro.Printf("can't notify: %s", err.Error())
	}
}

func (f *FileTail) readLast() (telemetry.Reading, bool, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return telemetry.Reading{}, false, err
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return telemetry.Reading{}, false, err
	}

	changed := st.Size() != f.size || !st.ModTime().Equal(f.modTime)
	if !changed {
		return telemetry.Reading{}, false, nil
	}

	// a window starting mid line can't yield a false sample: only line
	// starts carry the "T:" prefix
	if off := st.Size() - tailWindow; off > 0 {
		if _, err := file.Seek(off, io.SeekStart); err != nil {
			return telemetry.Reading{}, false, err
		}
	}

	r, err := telemetry.LastSample(file)
	if err != nil {
		return telemetry.Reading{}, false, err
	}
	f.size, f.modTime = st.Size(), st.ModTime()

	return r, true, nil
}

// MQTTSource subscribes to the topic the simulator publishes to.
type MQTTSource struct {
	client mqtt.Client
	topic  string
}

func NewMQTTSource(broker, topic string) (*MQTTSource, error) {
	if topic == "" {
		topic = publish.DefaultMQTTTopic
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(publish.ClientID("iotsim-dashboard")).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("can't connect to MQTT broker %s: %w", broker, token.Error())
	}
	log.Info.Printf("dashboard connected to MQTT broker at %s", broker)

	return &MQTTSource{client: client, topic: topic}, nil
}

func (m *MQTTSource) Run(ctx context.Context, emit func(telemetry.Reading), fail func(error)) error {
	token := m.client.Subscribe(m.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		r, err := decodePayload(msg.Payload())
		if err != nil {
			log.Erro.Printf("bad payload on %s: %s", msg.Topic(), err.Error())
			fail(err)
			return
		}
		emit(r)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("can't subscribe to %s: %w", m.topic, token.Error())
	}
	log.Info.Printf("subscribed to %s", m.topic)

	<-ctx.Done()

	m.client.Unsubscribe(m.topic).WaitTimeout(time.Second)
	m.client.Disconnect(250)

	return nil
}

// decodePayload accepts JSON messages and bare text lines.
func decodePayload(b []byte) (telemetry.Reading, error) {
	if m, err := publish.Decode(b); err == nil {
		return m.Reading(), nil
	}

	return telemetry.Parse(string(b))
}
