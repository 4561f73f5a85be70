//go:build linux

package indicator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

type gpioLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// OpenGPIO drives the indicator LED as a digital output on the named GPIO
// line, following the same chip-probing shape as the save-button watcher in
// internal/gpioedge (both descend from the teacher's fancontrol GPIO
// backend).
func OpenGPIO(chipHint, lineName string) (Line, error) {
	if strings.TrimSpace(lineName) == "" {
		return nil, fmt.Errorf("indicator: line name is required")
	}

	chipCandidates := []string{}
	if chipHint != "" {
		chipCandidates = append(chipCandidates, chipHint)
	} else {
		entries, _ := os.ReadDir("/dev")
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "gpiochip") {
				chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
			}
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("watermelon-log-transfer-led"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &gpioLine{chip: chip, line: line}, nil
	}

	return nil, fmt.Errorf("indicator: gpio line %q not found (or busy)", lineName)
}

func (g *gpioLine) Set(on bool) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("indicator: gpio driver not initialized")
	}
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *gpioLine) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	_ = g.line.SetValue(0)
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
