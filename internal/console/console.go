// Package console opens the primary text sink of the simulator: the process
// stdout or a serial line, the way the board firmware talks to its UART.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jacobsa/go-serial/serial"

	"github.com/egregors/iotsim/log"
)

const DefaultBaudRate = 115200

type Config struct {
	SerialPort string // empty means stdout
	BaudRate   uint
}

// Console is a line sink: bytes become visible to readers on Flush.
type Console struct {
	*bufio.Writer
	closer io.Closer
}

func (c *Console) Close() error {
	if err := c.Flush(); err != nil {
		_ = c.closer.Close()
		return err
	}

	return c.closer.Close()
}

func Open(cfg Config) (*Console, error) {
	if cfg.SerialPort == "" {
		return wrap(os.Stdout, stdoutCloser{}), nil
	}

	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.SerialPort,
		BaudRate:        cfg.BaudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return nil, fmt.Errorf("can't open serial port %s: %w", cfg.SerialPort, err)
	}
	log.Info.Printf("serial port opened on %s at %d baud", cfg.SerialPort, cfg.BaudRate)

	return wrap(port, port), nil
}

// stdoutCloser leaves the process stdout open.
type stdoutCloser struct{}

func (stdoutCloser) Close() error { return nil }

func wrap(w io.Writer, c io.Closer) *Console {
	return &Console{Writer: bufio.NewWriter(w), closer: c}
}
