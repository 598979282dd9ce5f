// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package spibus talks to a TMAG5170 on a Linux spidev bus and presents the
// exchanged frames as analyzer events.
package spibus

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Conn is a full-duplex SPI connection
type Conn interface {
	Tx(w, r []byte) error
}

// Device is an SPI port connected at the TMAG5170 bus settings
type Device struct {
	conn   spi.Conn
	port   spi.PortCloser
	device string
	speed  physic.Frequency
}

// Open initializes periph.io and connects to device in SPI mode 0, 8 bits per word
func Open(device string, speedHz int64) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io: %w", err)
	}

	port, err := spireg.Open(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI device %s: %w", device, err)
	}

	speed := physic.Frequency(speedHz) * physic.Hertz
	conn, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect to SPI device %s: %w", device, err)
	}

	return &Device{
		conn:   conn,
		port:   port,
		device: device,
		speed:  speed,
	}, nil
}

// Tx performs one full-duplex transfer with chip select held for its duration
func (d *Device) Tx(w, r []byte) error {
	if len(w) != len(r) {
		return fmt.Errorf("tx and rx buffers must be the same length")
	}
	if err := d.conn.Tx(w, r); err != nil {
		return fmt.Errorf("SPI transfer failed: %w", err)
	}
	return nil
}

// Close releases the SPI port
func (d *Device) Close() error {
	return d.port.Close()
}

// String describes the device and bus speed
func (d *Device) String() string {
	return fmt.Sprintf("SPI: %s @ %s", d.device, d.speed)
}
