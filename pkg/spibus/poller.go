// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package spibus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/tmagscope/pkg/capture"
	"github.com/Thermoquad/tmagscope/pkg/tmag5170"
)

// ErrNoRegisters is returned by NewPoller when there is nothing to poll
var ErrNoRegisters = errors.New("no registers to poll")

// Poller reads a list of registers in turn and yields each exchange as an
// enable, result, disable event sequence. It implements capture.Source.
type Poller struct {
	ctx      context.Context
	conn     Conn
	addrs    []uint8
	cmd      uint8
	interval time.Duration
	cycles   int

	next    int
	done    int
	pending []capture.Event
	now     func() time.Time
}

// NewPoller polls addrs over conn, pausing interval between full cycles.
// cmd is placed in the CMD bits of every request (0 for plain reads).
// cycles limits the number of passes over addrs; 0 polls until ctx is done.
func NewPoller(ctx context.Context, conn Conn, addrs []uint8, cmd uint8, interval time.Duration, cycles int) (*Poller, error) {
	if len(addrs) == 0 {
		return nil, ErrNoRegisters
	}
	return &Poller{
		ctx:      ctx,
		conn:     conn,
		addrs:    addrs,
		cmd:      cmd,
		interval: interval,
		cycles:   cycles,
		now:      time.Now,
	}, nil
}

// Next returns the next event, exchanging a new frame when the previous one
// has been fully delivered. It returns io.EOF once the cycle limit is
// reached or the context is cancelled.
func (p *Poller) Next() (capture.Event, error) {
	if len(p.pending) == 0 {
		if err := p.exchange(); err != nil {
			return capture.Event{}, err
		}
	}
	ev := p.pending[0]
	p.pending = p.pending[1:]
	return ev, nil
}

func (p *Poller) exchange() error {
	if p.next == 0 && p.done > 0 {
		if p.cycles > 0 && p.done >= p.cycles {
			return io.EOF
		}
		if err := p.wait(); err != nil {
			return err
		}
	}
	if p.ctx.Err() != nil {
		return io.EOF
	}

	addr := p.addrs[p.next]
	tx := tmag5170.EncodeReadCommand(addr, p.cmd)
	rx := make([]byte, len(tx))

	start := p.now()
	if err := p.conn.Tx(tx, rx); err != nil {
		return fmt.Errorf("read %s: %w", tmag5170.RegisterName(addr), err)
	}
	end := p.now()

	p.pending = append(p.pending,
		capture.Event{Time: start, Type: tmag5170.EventEnable},
		capture.Event{Time: end, Type: tmag5170.EventResult, MOSI: tx, MISO: rx},
		capture.Event{Time: end, Type: tmag5170.EventDisable},
	)

	p.next++
	if p.next == len(p.addrs) {
		p.next = 0
		p.done++
	}
	return nil
}

func (p *Poller) wait() error {
	if p.interval <= 0 {
		return nil
	}
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-p.ctx.Done():
		return io.EOF
	case <-timer.C:
		return nil
	}
}
