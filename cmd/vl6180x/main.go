// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// vl6180x reads distance and ambient light from a VL6180X sensor.
//
// Without -sim it needs a host with an I²C bus:
//
//	vl6180x -bus 1 -mode range -n 100 -bar
//	vl6180x -config sensor.yaml -mode interleaved -plot out.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/tofdevices/rangebar"
	"github.com/GermanBionicSystems/tofdevices/vl6180x"
	"github.com/GermanBionicSystems/tofdevices/vl6180x/vl6180xtest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// recorder keeps the readings for the plot and displays them.
type recorder struct {
	w   io.Writer
	bar *rangebar.Dev
	rng []float64
	lux []float64
}

// measurementError reports whether err is an error of a single reading that
// does not prevent the next ones.
func measurementError(err error) bool {
	var rerr *vl6180x.RangeStatusError
	var aerr *vl6180x.AmbientStatusError
	return errors.As(err, &rerr) || errors.As(err, &aerr) || errors.Is(err, vl6180x.ErrTimeout)
}

func (r *recorder) addRange(d physic.Distance, err error) error {
	if err != nil {
		if !measurementError(err) {
			return err
		}
		r.rng = append(r.rng, math.NaN())
		if r.bar != nil {
			return r.bar.ShowError(err)
		}
		_, err = fmt.Fprintf(r.w, "range: %v\n", err)
		return err
	}
	r.rng = append(r.rng, float64(d)/float64(physic.MilliMetre))
	if r.bar != nil {
		return r.bar.Show(d)
	}
	_, err = fmt.Fprintf(r.w, "range: %s\n", d)
	return err
}

func (r *recorder) addLux(l float64, err error) error {
	if err != nil {
		if !measurementError(err) {
			return err
		}
		r.lux = append(r.lux, math.NaN())
		if r.bar != nil {
			return nil
		}
		_, err = fmt.Fprintf(r.w, "ambient: %v\n", err)
		return err
	}
	r.lux = append(r.lux, l)
	if r.bar == nil {
		_, err = fmt.Fprintf(r.w, "ambient: %.2f lux\n", l)
	}
	return err
}

// irqWait blocks until the interrupt pin rises, or always returns
// immediately when no pin is used.
type irqWait func() bool

func noIRQ() bool { return true }

func edgeIRQ(p gpio.PinIn) (irqWait, error) {
	if err := p.In(gpio.PullNoChange, gpio.RisingEdge); err != nil {
		return nil, err
	}
	return func() bool { return p.WaitForEdge(time.Second) }, nil
}

// acquire runs n measurements in mode, 0 means until ctx is canceled. It
// returns the device in Ready mode.
func acquire(ctx context.Context, d *vl6180x.Dev, mode string, n int, wait irqWait, rec *recorder) (*vl6180x.Dev, error) {
	more := func(i int) bool {
		return (n == 0 || i < n) && ctx.Err() == nil
	}
	switch mode {
	case "single":
		for i := 0; more(i); i++ {
			if err := rec.addRange(d.PollRangeSingleBlocking()); err != nil {
				return d, err
			}
			if err := rec.addLux(d.PollAmbientLuxSingleBlocking()); err != nil {
				return d, err
			}
		}
		return d, nil

	case "range":
		c, err := d.StartRangeContinuous()
		if err != nil {
			return nil, err
		}
		for i := 0; more(i); i++ {
			var r physic.Distance
			if wait() {
				r, err = c.ReadRangeBlocking()
			} else {
				r, err = 0, vl6180x.ErrTimeout
			}
			if err = rec.addRange(r, err); err != nil {
				break
			}
		}
		d2, serr := c.StopRangeContinuous()
		if err == nil {
			err = serr
		}
		return d2, err

	case "ambient":
		c, err := d.StartAmbientContinuous()
		if err != nil {
			return nil, err
		}
		for i := 0; more(i); i++ {
			var l float64
			if wait() {
				l, err = c.ReadAmbientLuxBlocking()
			} else {
				l, err = 0, vl6180x.ErrTimeout
			}
			if err = rec.addLux(l, err); err != nil {
				break
			}
		}
		d2, serr := c.StopAmbientContinuous()
		if err == nil {
			err = serr
		}
		return d2, err

	case "interleaved":
		c, err := d.StartInterleavedContinuous()
		if err != nil {
			return nil, err
		}
		for i := 0; more(i); i++ {
			if !wait() {
				if err = rec.addLux(0, vl6180x.ErrTimeout); err != nil {
					break
				}
				continue
			}
			if err = rec.addLux(c.ReadAmbientLuxBlocking()); err != nil {
				break
			}
			if err = rec.addRange(c.ReadRangeBlocking()); err != nil {
				break
			}
		}
		d2, serr := c.StopInterleavedContinuous()
		if err == nil {
			err = serr
		}
		return d2, err

	default:
		return d, fmt.Errorf("unknown mode %q", mode)
	}
}

// simulated returns a simulator producing a slow sine wave.
func simulated() *vl6180xtest.Sensor {
	s := vl6180xtest.New()
	s.Latency = 2
	s.Sample = func(n int) (byte, uint16) {
		x := float64(n) / 8
		return byte(100 + 80*math.Sin(x)), uint16(300 + 200*math.Cos(x/3))
	}
	return s
}

// open initializes the sensor at its power on address, then moves it to the
// configured one. The new address is lost on the next power cycle.
func open(b i2c.Bus, cfg vl6180x.Config) (*vl6180x.Dev, error) {
	addr := cfg.Address()
	if err := cfg.SetAddress(vl6180x.DefaultAddress); err != nil {
		return nil, err
	}
	d, err := vl6180x.NewI2C(b, &cfg)
	if err != nil {
		return nil, err
	}
	if addr != vl6180x.DefaultAddress {
		if err := d.ChangeAddress(addr); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func mainImpl(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("vl6180x", flag.ExitOnError)
	busName := fs.String("bus", "", "I²C bus to use")
	cfgPath := fs.String("config", "", "YAML configuration file")
	xshutName := fs.String("xshut", "", "GPIO connected to XSHUT, the sensor is powered off on exit")
	irqName := fs.String("irq", "", "GPIO connected to GPIO1, used to wait for continuous readings")
	mode := fs.String("mode", "single", "single, range, ambient or interleaved")
	n := fs.Int("n", 10, "number of readings, 0 to run until interrupted")
	bar := fs.Bool("bar", false, "draw range readings as a bar")
	plotPath := fs.String("plot", "", "write a PNG plot of the readings")
	sim := fs.Bool("sim", false, "use a simulated sensor")
	verbose := fs.Bool("v", false, "verbose mode")
	address := fs.Uint("address", 0, "I²C address to move the sensor to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if fs.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg := vl6180x.NewConfig()
	if *cfgPath != "" {
		f, err := loadConfig(*cfgPath)
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}
		if err := f.apply(&cfg); err != nil {
			return fmt.Errorf("config %s: %w", *cfgPath, err)
		}
	}
	if *address != 0 {
		if err := cfg.SetAddress(uint16(*address)); err != nil {
			return err
		}
	}

	var b i2c.Bus
	var xshut gpio.PinOut
	wait := irqWait(noIRQ)
	if *sim {
		s := simulated()
		b = s
		if *xshutName != "" {
			xshut = s.XSHUT()
		}
		if *irqName != "" {
			log.Printf("-irq is ignored with -sim")
		}
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		bc, err := i2creg.Open(*busName)
		if err != nil {
			return err
		}
		defer bc.Close()
		b = bc
		if *xshutName != "" {
			p := gpioreg.ByName(*xshutName)
			if p == nil {
				return fmt.Errorf("unknown pin %q", *xshutName)
			}
			// The sensor boots within 1ms of XSHUT rising.
			if err := p.Out(gpio.High); err != nil {
				return err
			}
			time.Sleep(time.Millisecond)
			xshut = p
		}
		if *irqName != "" {
			p := gpioreg.ByName(*irqName)
			if p == nil {
				return fmt.Errorf("unknown pin %q", *irqName)
			}
			if wait, err = edgeIRQ(p); err != nil {
				return err
			}
		}
	}

	d, err := open(b, cfg)
	if err != nil {
		return err
	}
	d.EnableDebug(log.Printf)
	if id, err := d.Identification(); err == nil {
		log.Printf("model 0x%02X rev %d.%d module %d.%d", id.ModelID, id.ModelRev[0], id.ModelRev[1], id.ModuleRev[0], id.ModuleRev[1])
	}

	rec := &recorder{w: stdout}
	if *bar {
		full := 200 * physic.MilliMetre * physic.Distance(cfg.RangeScaling())
		if rec.bar, err = rangebar.New(&rangebar.Opts{Width: 50, Max: full}); err != nil {
			return err
		}
		defer rec.bar.Halt()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	d, err = acquire(ctx, d, *mode, *n, wait, rec)
	if d != nil && xshut != nil {
		if _, perr := d.PowerOff(xshut); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return err
	}

	if *plotPath != "" {
		var all []series
		if len(rec.rng) != 0 {
			all = append(all, series{name: "range", unit: "mm", values: rec.rng, r: 0.1, g: 0.4, b: 0.8})
		}
		if len(rec.lux) != 0 {
			all = append(all, series{name: "ambient", unit: "lux", values: rec.lux, r: 0.9, g: 0.5, b: 0.1})
		}
		if err := writePlot(*plotPath, fmt.Sprintf("VL6180X %s", *mode), all...); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := mainImpl(os.Args[1:], os.Stdout); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("vl6180x: %v", err)
	}
}
