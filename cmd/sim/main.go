package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/egregors/iotsim/internal/console"
	"github.com/egregors/iotsim/internal/publish"
	"github.com/egregors/iotsim/internal/sensors"
	"github.com/egregors/iotsim/log"
	"github.com/egregors/iotsim/srv"
)

var revision = "HEAD"

type opts struct {
	interval     durationFlag
	count        int
	serialPort   string
	baud         uint
	mqttBroker   string
	mqttTopic    string
	kafkaBrokers string
	kafkaTopic   string
	sensorID     string
	debug        bool
}

func main() {
	// a closed stdout must come back as a write error instead of killing
	// the process with SIGPIPE
	signal.Ignore(syscall.SIGPIPE)

	o := parseFlags()
	setupLogger(o.debug)
	log.Info.Printf("iotsim revision: %s", revision)

	out := makeConsole(o)
	publishers := makePublishers(o)

	server := srv.New(
		out,
		sensors.NewDefault(),
		srv.WithInterval(o.interval.Duration),
		srv.WithCount(o.count),
		srv.WithPublishers(asSrvPublishers(publishers)...),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go graceful(cancel)

	err := server.Run(ctx)
	cancel()
	shutdown(out, publishers)

	if err != nil {
		if errors.Is(err, srv.ErrOutputWrite) {
			log.Erro.Printf("output is gone, stop: %s", err.Error())
		} else {
			log.Erro.Printf("can't run simulator: %s", err.Error())
		}
		os.Exit(1)
	}

	log.Info.Println("bye")
}

func parseFlags() opts {
	o := opts{interval: durationFlag{srv.DefaultInterval}}

	flag.Var(&o.interval, "interval", "pause between samples")
	flag.IntVar(&o.count, "count", 0, "stop after N samples (0 runs forever)")
	flag.StringVar(&o.serialPort, "serial", "", "write samples to this serial device instead of stdout")
	flag.UintVar(&o.baud, "baud", console.DefaultBaudRate, "serial baud rate")
	flag.StringVar(&o.mqttBroker, "mqtt-broker", "", "also publish samples to this MQTT broker, e.g. tcp://localhost:1883")
	flag.StringVar(&o.mqttTopic, "mqtt-topic", publish.DefaultMQTTTopic, "MQTT topic")
	flag.StringVar(&o.kafkaBrokers, "kafka-brokers", "", "also publish samples to these comma separated Kafka brokers")
	flag.StringVar(&o.kafkaTopic, "kafka-topic", publish.DefaultKafkaTopic, "Kafka topic")
	flag.StringVar(&o.sensorID, "sensor-id", "riscv-sim-01", "sensor id put into published messages")
	flag.BoolVar(&o.debug, "debug", false, "verbose logs")
	flag.Parse()

	return o
}

func graceful(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Info.Println("simulator shutdown...")

	signal.Stop(c)
	cancel()
}

func shutdown(out *console.Console, publishers []publish.Publisher) {
	for _, p := range publishers {
		if err := p.Close(); err != nil {
			log.Erro.Printf("can't close publisher: %s", err.Error())
		}
	}

	if err := out.Close(); err != nil {
		log.Erro.Printf("can't close output: %s", err.Error())
	}
}

func makeConsole(o opts) *console.Console {
	out, err := console.Open(console.Config{SerialPort: o.serialPort, BaudRate: o.baud})
	if err != nil {
		log.Erro.Printf("can't open output: %s", err.Error())
		os.Exit(1)
	}

	return out
}

func makePublishers(o opts) []publish.Publisher {
	var ps []publish.Publisher

	if o.mqttBroker != "" {
		m, err := publish.NewMQTT(publish.MQTTOpts{
			Broker:   o.mqttBroker,
			Topic:    o.mqttTopic,
			SensorID: o.sensorID,
		})
		if err != nil {
			log.Erro.Printf("can't create MQTT publisher: %s", err.Error())
			os.Exit(1)
		}
		ps = append(ps, m)
	}

	if brokers := splitCSV(o.kafkaBrokers); len(brokers) > 0 {
		ps = append(ps, publish.NewKafka(publish.KafkaOpts{
			Brokers:  brokers,
			Topic:    o.kafkaTopic,
			SensorID: o.sensorID,
		}))
	}

	return ps
}

func asSrvPublishers(ps []publish.Publisher) []srv.Publisher {
	out := make([]srv.Publisher, 0, len(ps))
	for _, p := range ps {
		out = append(out, p)
	}

	return out
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}

	return out
}

func setupLogger(debug bool) {
	if !debug {
		log.Debg.Off()
	}
}
