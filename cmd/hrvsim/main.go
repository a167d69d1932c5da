package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"hrvmon/internal/ingest"
	"hrvmon/internal/simulate"
)

const (
	ExitSuccess = 0
	ExitError   = 2
)

func main() {
	natsURL := flag.String("nats", "nats://127.0.0.1:4222", "NATS url")
	subject := flag.String("subject", "hrv.samples", "subject to publish heart rate frames on")
	hr := flag.Float64("hr", 70, "resting heart rate, bpm")
	variability := flag.Float64("variability", 40, "RR wobble amplitude, ms")
	notifyRate := flag.Float64("rate", 1, "notifications per second")
	stressAfter := flag.Duration("stress-after", 0, "switch to a stressed profile after this long (0 = never)")
	duration := flag.Duration("duration", 0, "how long to publish (0 = until interrupt)")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *notifyRate <= 0 {
		fmt.Fprintln(os.Stderr, "error: --rate must be positive")
		os.Exit(ExitError)
	}

	nc, err := ingest.Connect(*natsURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	defer nc.Drain()

	sim := simulate.NewRRSim(*hr, *variability, *seed)

	var ctx context.Context
	var cancel context.CancelFunc
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), *duration)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("hrvsim: stopping")
		cancel()
	}()

	if *stressAfter > 0 {
		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(*stressAfter):
				// elevated rate, suppressed variability
				sim.SetHeartRate(*hr + 25)
				sim.SetVariability(*variability / 4)
				log.Println("hrvsim: switching to stressed profile")
			}
		}()
	}

	log.Printf("hrvsim: publishing to %s at %.1f/s (hr %.0f, variability %.0fms)",
		*subject, *notifyRate, *hr, *variability)

	limiter := rate.NewLimiter(rate.Limit(*notifyRate), 1)
	notifyPeriodMS := 1000.0 / *notifyRate

	for {
		if err := limiter.Wait(ctx); err != nil {
			// context cancelled
			os.Exit(ExitSuccess)
		}

		// pack the beats that elapsed during one notification period,
		// the way a strap batches RR intervals per notification
		var rrs []float64
		var lastHR int
		for budget := notifyPeriodMS; budget > 0; {
			rr, bpm := sim.Next()
			rrs = append(rrs, rr)
			lastHR = bpm
			budget -= rr
		}

		frame := ingest.EncodeHeartRate(float64(lastHR), rrs)
		if err := nc.Publish(*subject, frame); err != nil {
			fmt.Fprintf(os.Stderr, "error: publish: %v\n", err)
			os.Exit(ExitError)
		}
	}
}
