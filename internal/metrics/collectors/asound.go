package collectors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smazurov/soundnode/internal/logging"
	"github.com/smazurov/soundnode/internal/metrics"
)

// AsoundCollector collects ALSA card and substream state from /proc/asound.
type AsoundCollector struct {
	logger   logging.Logger
	procPath string
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewAsoundCollector creates a new /proc/asound collector.
func NewAsoundCollector() *AsoundCollector {
	return &AsoundCollector{
		logger:   logging.GetLogger("metrics"),
		procPath: "/proc/asound",
		interval: 10 * time.Second,
	}
}

// Start begins collecting ALSA metrics.
func (a *AsoundCollector) Start(ctx context.Context) error {
	if _, err := os.Stat(a.procPath); err != nil {
		return fmt.Errorf("alsa proc interface unavailable: %w", err)
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	go a.run()
	return nil
}

// Stop stops the collector.
func (a *AsoundCollector) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	return nil
}

func (a *AsoundCollector) run() {
	a.logger.Info("Starting ALSA metrics collection", "path", a.procPath, "interval", a.interval)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.collectMetrics()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.collectMetrics()
		}
	}
}

func (a *AsoundCollector) collectMetrics() {
	file, err := os.Open(filepath.Join(a.procPath, "cards"))
	if err != nil {
		a.logger.Warn("Failed to open ALSA cards file", "error", err)
		return
	}
	defer file.Close()

	cards, err := parseCards(file)
	if err != nil {
		a.logger.Warn("Failed to parse ALSA cards", "error", err)
		return
	}

	metrics.ResetALSACards()
	for _, card := range cards {
		metrics.SetALSACard(card.Number, card.ID, card.Driver)
	}
	metrics.SetALSASubstreams(a.substreamStates())
}

type procCard struct {
	Number string
	ID     string
	Driver string
	Name   string
}

// parseCards reads the format of /proc/asound/cards:
//
//	 0 [PCH            ]: HDA-Intel - HDA Intel PCH
//	                      HDA Intel PCH at 0xf7f10000 irq 32
func parseCards(r io.Reader) ([]procCard, error) {
	var cards []procCard
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		card, err := parseCardLine(scanner.Text())
		if err != nil {
			continue // long-name continuation line
		}
		cards = append(cards, *card)
	}

	return cards, scanner.Err()
}

func parseCardLine(line string) (*procCard, error) {
	line = strings.TrimSpace(line)
	open := strings.IndexByte(line, '[')
	closing := strings.Index(line, "]:")
	if open <= 0 || closing < open {
		return nil, fmt.Errorf("not a card line")
	}

	number := strings.TrimSpace(line[:open])
	for _, c := range number {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("invalid card number %q", number)
		}
	}

	rest := strings.TrimSpace(line[closing+2:])
	driver, name, found := strings.Cut(rest, " - ")
	if !found {
		return nil, fmt.Errorf("missing driver separator")
	}

	return &procCard{
		Number: number,
		ID:     strings.TrimSpace(line[open+1 : closing]),
		Driver: strings.TrimSpace(driver),
		Name:   strings.TrimSpace(name),
	}, nil
}

// substreamStates counts substreams by the first line of their status file,
// which is "closed" or "state: RUNNING" and similar.
func (a *AsoundCollector) substreamStates() map[string]int {
	counts := make(map[string]int)
	matches, _ := filepath.Glob(filepath.Join(a.procPath, "card*", "pcm*", "sub*", "status"))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		counts[parseSubstreamState(string(data))]++
	}
	return counts
}

func parseSubstreamState(status string) string {
	first, _, _ := strings.Cut(status, "\n")
	first = strings.TrimSpace(first)
	if state, ok := strings.CutPrefix(first, "state:"); ok {
		return strings.ToLower(strings.TrimSpace(state))
	}
	return strings.ToLower(first)
}
