// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

// Package boundary provides the fixed humidity boundary condition: a Dirichlet value for
// the specific humidity computed from a target humidity in one of three units.
package boundary

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/bdrung/humidair/config"
	"github.com/bdrung/humidair/field"
	"github.com/bdrung/humidair/humidity"
)

const TypeName = "fixedHumidity"

// Thermo provides the fields of the phase the boundary condition applies to.
type Thermo interface {
	T() *field.Scalar
	P() *field.Scalar
	SpecificHumidity() *field.Scalar
}

// FixedHumidity sets the specific humidity on one patch.
type FixedHumidity struct {
	Patch string

	mode       humidity.Mode
	method     humidity.Method
	methodName string // as configured, also in modes that ignore it
	value      float64
	conv       humidity.Conversion

	slot *humidity.MethodSlot
	log  logrus.FieldLogger

	updated bool
	values  []float64
}

// New creates the boundary condition of patch from its case file entry. Recognized
// entries are mode (default relative), method (default buck) and humidity (required).
// The saturation method is published into slot, if given.
func New(patch string, dict config.Dict, slot *humidity.MethodSlot, log logrus.FieldLogger) (*FixedHumidity, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("patch", patch)

	modeName, err := dict.LookupOrDefaultString("mode", "relative")
	if err != nil {
		return nil, fmt.Errorf("patch '%s': %w", patch, err)
	}
	mode, err := humidity.ParseMode(modeName)
	if err != nil {
		return nil, fmt.Errorf("patch '%s': %w", patch, err)
	}
	methodName, err := dict.LookupOrDefaultString("method", "buck")
	if err != nil {
		return nil, fmt.Errorf("patch '%s': %w", patch, err)
	}
	value, err := dict.LookupFloat("humidity")
	if err != nil {
		return nil, fmt.Errorf("patch '%s': %w", patch, err)
	}

	method := humidity.Buck
	if mode == humidity.Relative {
		method, err = humidity.ParseMethod(methodName)
		if err != nil {
			return nil, fmt.Errorf("patch '%s': %w", patch, err)
		}
	} else {
		if methodName != "buck" {
			log.Warnf("Method '%s' is ignored in %s mode", methodName, mode)
		}
		log.Infof("The specific value of the humidity is set to %g %s", value, mode.Unit())
	}

	conv, err := mode.Conversion(method)
	if err != nil {
		return nil, fmt.Errorf("patch '%s': %w", patch, err)
	}

	bc := &FixedHumidity{
		Patch:      patch,
		mode:       mode,
		method:     method,
		methodName: methodName,
		value:      value,
		conv:       conv,
		slot:       slot,
		log:        log,
	}
	if slot != nil {
		if prev, ok := slot.Publish(method); ok && prev != method {
			log.Warnf("Saturation method %s replaces %s of another patch", method, prev)
		}
	}
	return bc, nil
}

// FromCase creates the fixed humidity boundary conditions of the case, sorted by patch name.
// Entries of other types are left to other boundary conditions.
func FromCase(c *config.Case, slot *humidity.MethodSlot, log logrus.FieldLogger) ([]*FixedHumidity, error) {
	patches := make([]string, 0, len(c.BoundaryField))
	for patch := range c.BoundaryField {
		patches = append(patches, patch)
	}
	sort.Strings(patches)

	var bcs []*FixedHumidity
	for _, patch := range patches {
		dict := c.BoundaryField[patch]
		typeName, err := dict.LookupString("type")
		if err != nil {
			return nil, fmt.Errorf("patch '%s': %w", patch, err)
		}
		if typeName != TypeName {
			continue
		}
		bc, err := New(patch, dict, slot, log)
		if err != nil {
			return nil, err
		}
		bcs = append(bcs, bc)
	}
	return bcs, nil
}

func (bc *FixedHumidity) Mode() humidity.Mode     { return bc.mode }
func (bc *FixedHumidity) Method() humidity.Method { return bc.method }
func (bc *FixedHumidity) Humidity() float64       { return bc.value }

// Updated reports whether the coefficients were already updated in this step.
func (bc *FixedHumidity) Updated() bool { return bc.updated }

// UpdateCoeffs writes the specific humidity into the patch of the specific humidity field
// of th. It does nothing if the coefficients were already updated in this step.
func (bc *FixedHumidity) UpdateCoeffs(th Thermo) error {
	if bc.updated {
		return nil
	}
	q := th.SpecificHumidity()
	if q == nil {
		return errors.New("boundary: specific humidity field not initialized")
	}
	dst, err := q.Patch(bc.Patch)
	if err != nil {
		return err
	}
	t, err := th.T().Patch(bc.Patch)
	if err != nil {
		return err
	}
	p, err := th.P().Patch(bc.Patch)
	if err != nil {
		return err
	}

	if bc.slot != nil {
		bc.slot.Publish(bc.method)
	}
	humidity.ToSpecific(dst, t, p, bc.value, bc.conv)
	bc.values = append(bc.values[:0], dst...)
	bc.updated = true
	return nil
}

// Evaluate completes the step. The next UpdateCoeffs recomputes the patch values.
func (bc *FixedHumidity) Evaluate() {
	bc.updated = false
}

// Dict returns the case file entry that recreates the boundary condition. It includes the
// patch values of the last update.
func (bc *FixedHumidity) Dict() config.Dict {
	d := config.Dict{
		"type":     TypeName,
		"mode":     bc.mode.String(),
		"method":   bc.methodName,
		"humidity": bc.value,
	}
	if bc.values != nil {
		d["value"] = append([]float64(nil), bc.values...)
	}
	return d
}
