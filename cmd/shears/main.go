// Command shears is the handheld device entrypoint: it reads GPS bytes off a
// serial UART, reassembles NMEA lines, saves a CSV row on each save request,
// and serves file offload requests from a connected base over the radio
// link's log-transfer service.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watermelon-log-transfer/internal/csvlog"
	"watermelon-log-transfer/internal/gpioedge"
	"watermelon-log-transfer/internal/indicator"
	"watermelon-log-transfer/internal/radiolink"
	"watermelon-log-transfer/internal/serialport"
	"watermelon-log-transfer/internal/shears/lineassembler"
	"watermelon-log-transfer/internal/shears/logserver"
	"watermelon-log-transfer/internal/shears/savecoord"
	"watermelon-log-transfer/internal/shears/shearscfg"
	"watermelon-log-transfer/internal/shears/supervisor"
)

func main() {
	var configPath string
	var printCSV bool
	flag.StringVar(&configPath, "config", "./shears.yaml", "Path to YAML config")
	flag.BoolVar(&printCSV, "print-csv", false, "Print the last few CSV rows and exit")
	flag.Parse()

	cfg, err := shearscfg.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if printCSV {
		records, err := csvlog.Tail(cfg.CSV.Path, 10)
		if err != nil {
			log.Fatalf("csv tail failed: %v", err)
		}
		os.Stdout.WriteString(csvlog.FormatTable(records))
		return
	}

	if err := csvlog.EnsureFile(cfg.CSV.Path); err != nil {
		log.Fatalf("csv init failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gpsPort, err := serialport.Open(serialport.Config{Device: cfg.GPS.Device, Baud: cfg.GPS.Baud})
	if err != nil {
		log.Fatalf("gps serial open failed: %v", err)
	}
	defer gpsPort.Close()

	assembler := lineassembler.New(lineassembler.MinBufferSize)
	saver := savecoord.New(assembler, cfg.CSV.Path)

	var indLine indicator.Line = indicator.NullLine{}
	if cfg.Indicator.Line != "" {
		if l, err := indicator.OpenGPIO(cfg.Indicator.Chip, cfg.Indicator.Line); err != nil {
			log.Printf("shears: indicator gpio unavailable, using null line: %v", err)
		} else {
			indLine = l
		}
	}
	ind := indicator.New(indLine)
	defer ind.Close()

	peripheral, err := radiolink.NewProductionPeripheral()
	if err != nil {
		log.Fatalf("shears: %v (no radio backend linked for this build)", err)
	}
	server := logserver.New(logserver.FixedPrefixResolver("/storage"), peripheral)
	sup := supervisor.New(peripheral, server, ind, cfg.Radio.LocalName, cfg.Radio.ServiceID)

	watcher, err := gpioedge.Watch(gpioedge.Config{Chip: cfg.Button.Chip, Line: cfg.Button.Line}, saver.RequestSave)
	if err != nil {
		log.Fatalf("shears: save button watch failed: %v", err)
	}
	defer watcher.Close()

	log.Printf("shears starting: local_name=%s service_id=0x%04X gps=%s csv=%s", cfg.Radio.LocalName, cfg.Radio.ServiceID, cfg.GPS.Device, cfg.CSV.Path)

	go func() {
		if err := assembler.Run(ctx, gpsPort); err != nil && ctx.Err() == nil {
			log.Printf("shears: line assembler stopped: %v", err)
		}
	}()

	go func() {
		if err := saver.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("shears: save coordinator stopped: %v", err)
		}
	}()

	go runServerLoop(ctx, server)

	if err := sup.Start(); err != nil {
		log.Fatalf("shears: advertise failed: %v", err)
	}

	<-ctx.Done()
	log.Printf("shears stopping")
}

// runServerLoop drives logserver.Server.Step() on a fixed cadence: 10ms
// while a transfer is active, 50ms while idle.
func runServerLoop(ctx context.Context, server *logserver.Server) {
	const activeInterval = 10 * time.Millisecond
	const idleInterval = 50 * time.Millisecond

	timer := time.NewTimer(idleInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			server.Step()
			if server.Snapshot().State == logserver.StateIdle {
				timer.Reset(idleInterval)
			} else {
				timer.Reset(activeInterval)
			}
		}
	}
}
