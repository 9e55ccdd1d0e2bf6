// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

// Package thermo keeps the humidity fields of a humid air phase consistent with its
// specific humidity, temperature and pressure.
package thermo

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/bdrung/humidair/field"
	"github.com/bdrung/humidair/humidity"
)

var ErrNoHumidityField = errors.New("neither the specificHumidity nor the relHum field was provided")

// Store gives access to the fields of the start time.
type Store interface {
	Exists(name string) bool
	Load(name string) (*field.Scalar, error)
}

// Writer persists fields.
type Writer interface {
	Save(s *field.Scalar) error
}

// MethodSource publishes a saturation method that overrides the configured one,
// e.g. the method of a fixed humidity boundary condition.
type MethodSource interface {
	Method() (humidity.Method, bool)
}

// Options configures a Thermo.
type Options struct {
	Phase string

	// Method is used unless MethodSource publishes a method.
	Method       humidity.Method
	MethodSource MethodSource

	// Clamp is notified after every correction, if set.
	Clamp ClampObserver

	Log logrus.FieldLogger
}

// noCopy may be embedded into structs which must not be copied after first use.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Thermo owns the humidity fields of one phase. It must not be copied.
type Thermo struct {
	noCopy noCopy

	phase        string
	method       humidity.Method
	methodSource MethodSource
	clamp        ClampObserver
	log          logrus.FieldLogger
	mesh         *field.Mesh

	t, p *field.Scalar

	specificHumidity    *field.Scalar // nil until initialized
	relHum              *field.Scalar
	pSatH2O             *field.Scalar
	partialPressureH2O  *field.Scalar
	waterVapor          *field.Scalar
	maxWaterVapor       *field.Scalar
	maxSpecificHumidity *field.Scalar
	waterMass           *field.Scalar
	rho                 *field.Scalar

	initWithRelHumidity bool
}

// New allocates the humidity fields for the temperature t [K] and the pressure p [Pa].
func New(t, p *field.Scalar, opts Options) (*Thermo, error) {
	if t.Mesh() != p.Mesh() {
		return nil, fmt.Errorf("%w: '%s' and '%s' are defined on different meshes",
			field.ErrSizeMismatch, t.Name, p.Name)
	}
	if !opts.Method.Valid() {
		return nil, fmt.Errorf("%w %v", humidity.ErrUnknownMethod, opts.Method)
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := t.Mesh()
	th := &Thermo{
		phase:        opts.Phase,
		method:       opts.Method,
		methodSource: opts.MethodSource,
		clamp:        opts.Clamp,
		log:          log.WithField("phase", opts.Phase),
		mesh:         m,
		t:            t,
		p:            p,
	}
	th.relHum = field.NewScalar(th.name("relHum"), "1", m, 0)
	th.pSatH2O = field.NewScalar(th.name("pSatH2O"), "Pa", m, 0)
	th.partialPressureH2O = field.NewScalar(th.name("partialPressureH2O"), "Pa", m, 0)
	th.waterVapor = field.NewScalar(th.name("waterVapor"), "kg/m^3", m, 0)
	th.maxWaterVapor = field.NewScalar(th.name("maxWaterVapor"), "kg/m^3", m, 0)
	th.maxSpecificHumidity = field.NewScalar(th.name("maxSpecificHumidity"), "kg/kg", m, 0)
	th.waterMass = field.NewScalar(th.name("waterMass"), "kg", m, 0)
	th.rho = field.NewScalar(th.name("rho"), "kg/m^3", m, 0)
	return th, nil
}

func (th *Thermo) name(n string) string {
	return field.GroupName(n, th.phase)
}

// Initialize reads the specific humidity field. Without it, the relative humidity
// field is read and the specific humidity derived from it.
func (th *Thermo) Initialize(s Store) error {
	th.ReadMethod()

	if s.Exists(th.relHum.Name) {
		if err := th.load(s, th.relHum); err != nil {
			return err
		}
	}

	q := field.NewScalar(th.name("specificHumidity"), "kg/kg", th.mesh, 0)
	if s.Exists(q.Name) {
		th.log.Infof("Initialize humidity by using the %s field", q.Name)
		if err := th.load(s, q); err != nil {
			return err
		}
		th.specificHumidity = q
		return nil
	}

	if !s.Exists(th.relHum.Name) {
		return fmt.Errorf("%w (looked for %s and %s)", ErrNoHumidityField, q.Name, th.relHum.Name)
	}
	th.initWithRelHumidity = true
	th.log.Infof("Initialize humidity by using the %s field", th.relHum.Name)
	th.specificHumidity = q
	th.initialSpecificHumidityFromRelHumidity()
	return nil
}

func (th *Thermo) load(s Store, dst *field.Scalar) error {
	src, err := s.Load(dst.Name)
	if err != nil {
		return err
	}
	if err := dst.CopyFrom(src); err != nil {
		return fmt.Errorf("reading %s: %w", dst.Name, err)
	}
	return nil
}

func (th *Thermo) initialSpecificHumidityFromRelHumidity() {
	t, p, phi := th.t.Regions(), th.p.Regions(), th.relHum.Regions()
	q := th.specificHumidity.Regions()
	field.ForEachSample(q, func(r, i int) {
		q[r][i] = humidity.RelativeToSpecific(phi[r][i], t[r][i], p[r][i], th.method)
	})
}

// ReadMethod adopts the method published by the method source, if any.
func (th *Thermo) ReadMethod() {
	if th.methodSource == nil {
		return
	}
	m, ok := th.methodSource.Method()
	if !ok || m == th.method {
		return
	}
	th.method = m
	th.log.Infof("Saturation pressure calculation based on %s", m)
}

// Method returns the saturation method in use.
func (th *Thermo) Method() humidity.Method { return th.method }

// InitializedFromRelHumidity reports whether the specific humidity was derived from
// the relative humidity.
func (th *Thermo) InitializedFromRelHumidity() bool { return th.initWithRelHumidity }

func (th *Thermo) T() *field.Scalar                   { return th.t }
func (th *Thermo) P() *field.Scalar                   { return th.p }
func (th *Thermo) SpecificHumidity() *field.Scalar    { return th.specificHumidity }
func (th *Thermo) RelHum() *field.Scalar              { return th.relHum }
func (th *Thermo) PSatH2O() *field.Scalar             { return th.pSatH2O }
func (th *Thermo) PartialPressureH2O() *field.Scalar  { return th.partialPressureH2O }
func (th *Thermo) WaterVapor() *field.Scalar          { return th.waterVapor }
func (th *Thermo) MaxWaterVapor() *field.Scalar       { return th.maxWaterVapor }
func (th *Thermo) MaxSpecificHumidity() *field.Scalar { return th.maxSpecificHumidity }
func (th *Thermo) WaterMass() *field.Scalar           { return th.waterMass }
func (th *Thermo) Rho() *field.Scalar                 { return th.rho }

// TotalWaterMass returns the mass of water vapor in the domain in kg.
func (th *Thermo) TotalWaterMass() float64 {
	return floats.Sum(th.waterMass.Internal)
}

// CorrectRho adds deltaRho to the density.
func (th *Thermo) CorrectRho(deltaRho *field.Scalar) error {
	return th.rho.Add(deltaRho)
}

// CorrectRhoLimited adds deltaRho to the density and bounds it to [rhoMin, rhoMax].
func (th *Thermo) CorrectRhoLimited(deltaRho *field.Scalar, rhoMin, rhoMax float64) error {
	if err := th.rho.Add(deltaRho); err != nil {
		return err
	}
	th.rho.Clamp(rhoMin, rhoMax)
	return nil
}

// Write saves the fields that are read at the next start.
func (th *Thermo) Write(w Writer) error {
	if th.specificHumidity == nil {
		return errors.New("thermo: write before initialization")
	}
	for _, s := range []*field.Scalar{th.specificHumidity, th.relHum, th.rho} {
		if err := w.Save(s); err != nil {
			return err
		}
	}
	return nil
}
