package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrvmon/internal/baseline"
	"hrvmon/internal/config"
	"hrvmon/internal/core"
	"hrvmon/internal/ingest"
	"hrvmon/internal/progress"
	"hrvmon/internal/report"
	"hrvmon/internal/session"
	"hrvmon/internal/sink"
)

const (
	ExitSuccess           = 0
	ExitCalibrationFailed = 1
	ExitError             = 2
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional, defaults apply)")
	natsURL := flag.String("nats", "", "NATS url (overrides config)")
	duration := flag.Duration("duration", 0, "session duration (0 = run until interrupt)")
	output := flag.String("output", "text", "output format: text, json")
	quiet := flag.Bool("quiet", false, "suppress progress output during the session")
	recalibrate := flag.Bool("recalibrate", false, "discard the cached baseline and calibrate fresh")
	flag.Parse()

	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "error: --output must be 'text' or 'json', got %q\n", *output)
		os.Exit(ExitError)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
		cfg = loaded
	}
	if *natsURL != "" {
		cfg.NATS.URL = *natsURL
	}

	logger := log.New(os.Stderr, "hrvmon ", log.LstdFlags)

	if *recalibrate {
		if err := os.Remove(cfg.Baseline.File); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "error: removing cached baseline: %v\n", err)
			os.Exit(ExitError)
		}
	}
	store := baseline.NewFileStore(cfg.Baseline.File)

	fileSink, err := sink.NewFileSink(cfg.Results.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	mem := sink.NewMemory()

	var ctrl *session.Controller
	nc, err := ingest.Connect(cfg.NATS.URL, func() {
		if ctrl != nil {
			ctrl.Stop()
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	defer nc.Drain()

	sinks := sink.Fanout{fileSink, mem}
	if cfg.NATS.PublishResults {
		sinks = append(sinks, sink.NewNATSSink(nc, cfg.NATS.ResultSubject))
	}

	ctrl, err = session.New(session.Options{
		BaselineDuration:   cfg.Session.BaselineDuration,
		WindowDuration:     cfg.Session.WindowDuration,
		CalibrationTimeout: cfg.Session.CalibrationTimeout,
		Stress:             cfg.Stress,
		Distraction:        cfg.Distraction,
		Sink:               sinks,
		Store:              store,
		Logger:             logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	if err := ctrl.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	sub, err := ingest.Subscribe(nc, cfg.NATS.SampleSubject, ctrl, core.RealClock{}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	defer sub.Unsubscribe()

	prog := progress.NewProgress(ctrl, *quiet)
	prog.Printf("hrvmon session %s starting: baseline %v, windows %v",
		ctrl.SessionID(), cfg.Session.BaselineDuration, cfg.Session.WindowDuration)
	prog.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var timerCh <-chan time.Time
	if *duration > 0 {
		timer := time.NewTimer(*duration)
		defer timer.Stop()
		timerCh = timer.C
	}

	select {
	case <-sigCh:
		if !*quiet {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		}
		ctrl.Stop()
	case <-timerCh:
		ctrl.Stop()
	case <-ctrl.Done():
	}
	<-ctrl.Done()
	prog.Stop()

	rep := report.Compute(mem.Records())
	if *output == "json" {
		report.FormatJSON(os.Stdout, rep)
	} else {
		report.FormatText(os.Stdout, rep)
	}

	if err := ctrl.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, core.ErrCalibrationTimeout) {
			os.Exit(ExitCalibrationFailed)
		}
		os.Exit(ExitError)
	}

	os.Exit(ExitSuccess)
}
