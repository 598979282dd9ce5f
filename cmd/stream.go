// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/Thermoquad/tmagscope/pkg/capture"
	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
	"github.com/spf13/cobra"
)

// busSource skips malformed analyzer lines and maps a closed connection to io.EOF
type busSource struct {
	src     capture.Source
	skipped int
}

func (b *busSource) Next() (capture.Event, error) {
	for {
		ev, err := b.src.Next()
		if err == nil {
			slog.Debug("bus event", "type", ev.Type.String(), "time", ev.Time,
				"mosi", fmt.Sprintf("% X", ev.MOSI), "miso", fmt.Sprintf("% X", ev.MISO))
			return ev, nil
		}
		if errors.Is(err, capture.ErrBadRecord) {
			b.skipped++
			log.Printf("Skipping record: %v", err)
			continue
		}
		if isClosed(err) {
			return capture.Event{}, io.EOF
		}
		return capture.Event{}, err
	}
}

// pipeline couples an event source with the decoder configured by the flags
type pipeline struct {
	bus    *busSource
	asm    *tmag5170.Assembler
	cfg    tmag5170.Config
	info   string
	live   bool
	closer io.Closer
}

// openPipeline opens the capture file named by args, or the connection
func openPipeline(cmd *cobra.Command, args []string) (*pipeline, error) {
	asm, cfg, err := newAssembler(cmd)
	if err != nil {
		return nil, err
	}

	src, closer, info, err := openEventSource(args)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		bus:    &busSource{src: src},
		asm:    asm,
		cfg:    cfg,
		info:   info,
		live:   len(args) == 0,
		closer: closer,
	}, nil
}

func (p *pipeline) Close() error {
	return p.closer.Close()
}

func (p *pipeline) banner(title string) {
	fmt.Printf("tmagscope - %s\n", title)
	fmt.Printf("Source: %s\n", p.info)
	fmt.Printf("Data type: %s\n", p.cfg.DataType.Description())
	if p.live {
		fmt.Printf("Press Ctrl+C to exit\n")
	}
	fmt.Println()
}

// run decodes the source until it is exhausted or fn fails
func (p *pipeline) run(fn func(*tmag5170.DecodedTransaction) error) error {
	err := capture.Replay(p.bus, p.asm, fn)
	if p.bus.skipped > 0 {
		log.Printf("Skipped %d malformed records", p.bus.skipped)
	}
	return err
}

// runPipeline prints a banner and calls fn for every decoded transaction
func runPipeline(cmd *cobra.Command, args []string, title string,
	fn func(*tmag5170.DecodedTransaction, tmag5170.Config) error) error {
	p, err := openPipeline(cmd, args)
	if err != nil {
		return err
	}
	defer p.Close()

	p.banner(title)
	return p.run(func(t *tmag5170.DecodedTransaction) error {
		return fn(t, p.cfg)
	})
}
