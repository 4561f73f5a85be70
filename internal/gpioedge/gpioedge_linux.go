//go:build linux

package gpioedge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

type lineWatcher struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func watch(cfg Config, onFallingEdge func()) (Watcher, error) {
	if onFallingEdge == nil {
		return nil, fmt.Errorf("gpioedge: onFallingEdge is nil")
	}
	if strings.TrimSpace(cfg.Line) == "" {
		return nil, fmt.Errorf("gpioedge: line name is required")
	}

	chipCandidates := []string{}
	if cfg.Chip != "" {
		chipCandidates = append(chipCandidates, cfg.Chip)
	} else {
		entries, _ := os.ReadDir("/dev")
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "gpiochip") {
				chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
			}
		}
	}

	handler := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge {
			onFallingEdge()
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(cfg.Line)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(handler),
			gpiocdev.WithConsumer("watermelon-log-transfer"),
		)
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &lineWatcher{chip: chip, line: line}, nil
	}

	return nil, fmt.Errorf("gpioedge: line %q not found (or busy)", cfg.Line)
}

func (w *lineWatcher) Close() error {
	if w == nil || w.line == nil {
		return nil
	}
	err := w.line.Close()
	w.line = nil
	if w.chip != nil {
		_ = w.chip.Close()
		w.chip = nil
	}
	return err
}
