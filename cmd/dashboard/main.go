package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brutella/hap"

	"github.com/egregors/iotsim/internal/dashboard"
	"github.com/egregors/iotsim/internal/homekit"
	"github.com/egregors/iotsim/internal/metrics"
	"github.com/egregors/iotsim/internal/notifier"
	"github.com/egregors/iotsim/internal/publish"
	"github.com/egregors/iotsim/log"
)

const (
	metricsRetention = 24 * time.Hour
	hapPIN           = "11112222" // TODO: read the pin from a secret file instead of a flag default
)

var revision = "HEAD"

type opts struct {
	addr       string
	file       string
	poll       time.Duration
	mqttBroker string
	mqttTopic  string
	homekit    bool
	hapDB      string
	hapPin     string
	ntfyURL    string
	retention  time.Duration
	dump       string
	debug      bool
}

func main() {
	o := parseFlags()
	setupLogger(o.debug)
	log.Info.Printf("iotsim dashboard revision: %s", revision)

	m := metrics.New(metrics.WithRetention(o.retention), metrics.WithBackup(o.dump))
	server := dashboard.New(dashboard.Opts{
		Addr:    o.addr,
		Source:  makeSource(o),
		Hap:     makeHkSrv(o),
		Metrics: m,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go graceful(cancel)

	if err := server.Run(ctx); err != nil {
		log.Erro.Printf("can't run dashboard: %s", err.Error())
		os.Exit(1)
	}

	if err := m.Dump(); err != nil {
		log.Erro.Printf("can't make a metrics dump: %s", err.Error())
	}

	log.Info.Println("bye")
}

func parseFlags() opts {
	var o opts

	flag.StringVar(&o.addr, "addr", dashboard.DefaultAddr, "listen address")
	flag.StringVar(&o.file, "file", "data.log", "file the simulator output is redirected to")
	flag.DurationVar(&o.poll, "poll", dashboard.DefaultPoll, "how often to check the file")
	flag.StringVar(&o.mqttBroker, "mqtt-broker", "", "read samples from this MQTT broker instead of the file")
	flag.StringVar(&o.mqttTopic, "mqtt-topic", publish.DefaultMQTTTopic, "MQTT topic")
	flag.BoolVar(&o.homekit, "homekit", false, "expose readings as a HomeKit bridge")
	flag.StringVar(&o.hapDB, "hap-db", "./db", "HomeKit pairing store directory")
	flag.StringVar(&o.hapPin, "hap-pin", hapPIN, "HomeKit setup pin")
	flag.StringVar(&o.ntfyURL, "ntfy-url", "", "ntfy.sh topic URL for outage notifications")
	flag.DurationVar(&o.retention, "retention", metricsRetention, "history retention")
	flag.StringVar(&o.dump, "dump", "", "keep history in this file between restarts")
	flag.BoolVar(&o.debug, "debug", false, "verbose logs")
	flag.Parse()

	return o
}

func graceful(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Info.Println("dashboard shutdown...")

	signal.Stop(c)

	log.Info.Println("ctx cancel")
	cancel()
}

func makeSource(o opts) dashboard.Source {
	if o.mqttBroker != "" {
		src, err := dashboard.NewMQTTSource(o.mqttBroker, o.mqttTopic)
		if err != nil {
			log.Erro.Printf("can't create MQTT source: %s", err.Error())
			os.Exit(1)
		}

		return src
	}

	return dashboard.NewFileTail(o.file, o.poll, makeNotifier(o))
}

func makeNotifier(o opts) notifier.Notifier {
	if o.ntfyURL == "" {
		return notifier.NewNoop()
	}

	return notifier.NewNtfy(o.ntfyURL)
}

func makeHkSrv(o opts) dashboard.HapServer {
	if !o.homekit {
		return &homekit.NoopHap{}
	}

	hk, err := homekit.NewHapSrv(homekit.DefaultOpts(hap.NewFsStore(o.hapDB), o.hapPin))
	if err != nil {
		log.Erro.Printf("can't create HAP server: %s", err.Error())
		os.Exit(1)
	}

	return hk
}

func setupLogger(debug bool) {
	if !debug {
		log.Debg.Off()
	}
}
