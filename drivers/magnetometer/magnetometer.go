// Package magnetometer provides a bus-facing driver for an LSM303-style
// 3-axis magnetometer, the sample leaf device this repository's bus layer
// exists to carry data for. The I2C side follows the two-phase
// Trigger/Collect shape; busproto.Base wires the device into address
// arbitration like any other LOCAL driver.
package magnetometer

import (
	"errors"

	"tinygo.org/x/drivers"

	"github.com/jangala-dev/busproto-go/busproto"
)

// Address is the LSM303 magnetometer's fixed I2C address.
const Address = 0x1E

// Registers, per the ST LSM303 datasheet.
const (
	regCfgA    = 0x60
	regCfgC    = 0x62
	regStatus  = 0x67
	regOutXL   = 0x68
	regWhoAmI  = 0x4F
	whoAmIWant = 0x40

	statusDataReady = 0x01
)

// DriverClass tags this device's control packets on the bus. Arbitrary
// within this repository's scope; a deployment would coordinate it with
// every other driver class in use.
const DriverClass = 0x4C53_4D33 // "LSM3"

var (
	ErrNotReady  = errors.New("magnetometer: not ready")
	ErrNotWhoAmI = errors.New("magnetometer: unexpected WHO_AM_I")
)

// Sample holds one ENU-aligned reading: X is -raw_y, Y is -raw_x, Z is
// raw_z, per the sensor's mounting orientation.
type Sample struct {
	X, Y, Z int32
}

// Device wraps an I2C connection to the magnetometer and a busproto.Base
// so it can be registered as a LOCAL driver.
type Device struct {
	*busproto.Base
	bus     drivers.I2C
	Address uint16
	buf     [6]byte
	last    Sample
}

// New wires bus as this driver's busproto.Bus (for control-packet
// transmission) and i2c as the sensor's I2C connection. serial should be a
// value unique to the physical board (e.g. a flash-programmed ID).
func New(bus busproto.Bus, i2c drivers.I2C, serial uint32) *Device {
	return &Device{
		Base:    busproto.NewBase(bus, DriverClass, serial),
		bus:     i2c,
		Address: Address,
	}
}

// Configure verifies WHO_AM_I and puts the device into continuous mode with
// the data-ready latch enabled.
func (d *Device) Configure() error {
	who, err := d.readRegister(regWhoAmI)
	if err != nil {
		return err
	}
	if who != whoAmIWant {
		return ErrNotWhoAmI
	}
	if err := d.writeRegister(regCfgA, 0x0C); err != nil { // 100 Hz
		return err
	}
	return d.writeRegister(regCfgC, 0x01) // latch DRDY
}

// Trigger is a no-op for this device: the LSM303 free-runs in continuous
// mode once Configure has run. Kept so sensor polling loops can treat every
// device as trigger-then-collect.
func (d *Device) Trigger() error { return nil }

// Collect reads one sample if the data-ready bit is set, or returns
// ErrNotReady otherwise.
func (d *Device) Collect(out *Sample) error {
	status, err := d.readRegister(regStatus)
	if err != nil {
		return err
	}
	if status&statusDataReady == 0 {
		return ErrNotReady
	}

	data := d.buf[:]
	if err := d.bus.Tx(d.Address, []byte{regOutXL | 0x80}, data); err != nil {
		return err
	}
	rawX := int16(uint16(data[0]) | uint16(data[1])<<8)
	rawY := int16(uint16(data[2]) | uint16(data[3])<<8)
	rawZ := int16(uint16(data[4]) | uint16(data[5])<<8)

	s := Sample{
		X: -int32(rawY),
		Y: -int32(rawX),
		Z: int32(rawZ),
	}
	d.last = s
	if out != nil {
		*out = s
	}
	return nil
}

// Last returns the most recently collected sample.
func (d *Device) Last() Sample { return d.last }

func (d *Device) readRegister(reg byte) (byte, error) {
	out := [1]byte{}
	if err := d.bus.Tx(d.Address, []byte{reg}, out[:]); err != nil {
		return 0, err
	}
	return out[0], nil
}

func (d *Device) writeRegister(reg, val byte) error {
	return d.bus.Tx(d.Address, []byte{reg, val}, nil)
}
