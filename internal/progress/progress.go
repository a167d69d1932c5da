package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"hrvmon/internal/session"
)

type Progress struct {
	startTime  time.Time
	controller *session.Controller
	ticker     *time.Ticker
	stopCh     chan struct{}
	stopped    atomic.Bool
	quiet      bool
	output     io.Writer
	mu         sync.Mutex
}

func NewProgress(c *session.Controller, quiet bool) *Progress {
	return &Progress{
		controller: c,
		quiet:      quiet,
		output:     os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(1 * time.Second)
	go p.run()
}

func (p *Progress) run() {
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	elapsed := time.Since(p.startTime).Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60

	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.controller.Phase() {
	case session.Calibrating:
		fmt.Fprintf(p.output, "\033[K[%02d:%02d] Calibrating baseline: %.0f%%",
			mins, secs, p.controller.CalibrationProgress()*100)
	case session.Monitoring:
		rec, ok := p.controller.LastRecord()
		if !ok {
			fmt.Fprintf(p.output, "\033[K[%02d:%02d] Monitoring | waiting for first window",
				mins, secs)
			return
		}
		marker := ""
		if rec.Distraction {
			marker = " | DISTRACTED"
		}
		fmt.Fprintf(p.output, "\033[K[%02d:%02d] Monitoring | stress: %s (%.2f) | streak: %.1f%s",
			mins, secs, rec.Stress.Level, rec.Stress.Score, rec.Streak, marker)
	}
}

func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K")
	p.mu.Unlock()
}

func (p *Progress) Print(message string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K%s\n", message)
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K"+format+"\n", args...)
	p.mu.Unlock()
}
