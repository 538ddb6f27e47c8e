package main

import (
	"fmt"
	"time"
)

// durationFlag rejects negative pauses at parse time.
type durationFlag struct {
	time.Duration
}

func (d *durationFlag) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %s", v)
	}
	d.Duration = v

	return nil
}
