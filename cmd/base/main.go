// Command base is the stationary device entrypoint: it scans for a shears
// advertiser, offloads its CSV log over the radio link's log-transfer
// service, and forwards chunks and status to the host over a framed serial
// uplink.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"watermelon-log-transfer/internal/base/basecfg"
	"watermelon-log-transfer/internal/base/logclient"
	"watermelon-log-transfer/internal/base/reqqueue"
	"watermelon-log-transfer/internal/base/supervisor"
	"watermelon-log-transfer/internal/base/uplink"
	"watermelon-log-transfer/internal/gpioedge"
	"watermelon-log-transfer/internal/indicator"
	"watermelon-log-transfer/internal/radiolink"
	"watermelon-log-transfer/internal/serialport"
	"watermelon-log-transfer/internal/serialproto"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./base.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := basecfg.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hostPort, err := serialport.Open(serialport.Config{Device: cfg.Serial.Device, Baud: cfg.Serial.Baud})
	if err != nil {
		log.Fatalf("host serial open failed: %v", err)
	}
	defer hostPort.Close()
	host := uplink.New(hostPort)

	var indLine indicator.Line = indicator.NullLine{}
	if cfg.Indicator.Line != "" {
		if l, err := indicator.OpenGPIO(cfg.Indicator.Chip, cfg.Indicator.Line); err != nil {
			log.Printf("base: indicator gpio unavailable, using null line: %v", err)
		} else {
			indLine = l
		}
	}
	ind := indicator.New(indLine)
	defer ind.Close()

	central, err := radiolink.NewProductionCentral()
	if err != nil {
		log.Fatalf("base: %v (no radio backend linked for this build)", err)
	}

	client := logclient.New(controlWriter{central}, host, logclient.PolicyStrict)

	// sup is forward-declared so onConnState can close over it: the
	// supervisor itself is the thing that invokes onConnState, so the
	// reference only needs to be valid by the time a connection happens,
	// not at closure-construction time.
	var sup *supervisor.Supervisor
	onConnState := func(connected bool) {
		code := serialproto.StatusLinkDown
		if connected {
			code = serialproto.StatusLinkUp
		}
		if err := host.SendStatus(code); err != nil {
			log.Printf("base: host status send failed: %v", err)
		}
		if connected && cfg.OnConnect.Basename != "" {
			sup.RequestLog(cfg.OnConnect.Basename, reqqueue.TriggerApplication)
		}
	}
	sup = supervisor.New(central, client, ind, cfg.Radio.TargetName, onConnState)

	if cfg.Button.Line != "" {
		watcher, err := gpioedge.Watch(gpioedge.Config{Chip: cfg.Button.Chip, Line: cfg.Button.Line}, func() {
			if cfg.OnConnect.Basename == "" {
				log.Printf("base: offload button pressed but no basename configured")
				return
			}
			sup.RequestLog(cfg.OnConnect.Basename, reqqueue.TriggerButton)
		})
		if err != nil {
			log.Fatalf("base: offload button watch failed: %v", err)
		}
		defer watcher.Close()
	}

	log.Printf("base starting: target=%s serial=%s", cfg.Radio.TargetName, cfg.Serial.Device)

	if err := sup.Start(); err != nil {
		log.Fatalf("base: scan start failed: %v", err)
	}

	<-ctx.Done()
	log.Printf("base stopping")
}

// controlWriter adapts radiolink.Central.WriteControl to logclient's narrow
// ControlWriter capability.
type controlWriter struct {
	central radiolink.Central
}

func (w controlWriter) WriteControl(payload []byte) error {
	return w.central.WriteControl(payload)
}
