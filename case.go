// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/bdrung/humidair/boundary"
	"github.com/bdrung/humidair/config"
	"github.com/bdrung/humidair/field"
	"github.com/bdrung/humidair/humidity"
	"github.com/bdrung/humidair/store"
	"github.com/bdrung/humidair/thermo"
)

const caseFile = "case.toml"

type caseOptions struct {
	Dir             string
	Time            string
	Phase           string // overrides the phase of the case file
	Method          string // overrides the method of the case file
	MetricsTextfile string
}

type caseResult struct {
	Method         humidity.Method
	Clamp          thermo.ClampStats
	TotalWaterMass float64
}

// runCase updates the humidity fields of one time of a case. The fields are written back
// to the time directory together with the case file that recreates the boundary conditions.
func runCase(o caseOptions) (caseResult, error) {
	var result caseResult
	c, err := config.ReadCaseFile(filepath.Join(o.Dir, caseFile))
	if err != nil {
		return result, err
	}
	if o.Phase != "" {
		c.Phase = o.Phase
	}
	methodName, err := c.Thermo.LookupOrDefaultString("method", "buck")
	if err != nil {
		return result, fmt.Errorf("thermo: %w", err)
	}
	if o.Method != "" {
		methodName = o.Method
	}
	method, err := humidity.ParseMethod(methodName)
	if err != nil {
		return result, err
	}

	snapshot, err := store.Open(o.Dir, o.Time)
	if err != nil {
		return result, err
	}
	t, err := snapshot.Load(field.GroupName("T", c.Phase))
	if err != nil {
		return result, err
	}
	p, err := snapshot.Load(field.GroupName("p", c.Phase))
	if err != nil {
		return result, err
	}

	var slot humidity.MethodSlot
	bcs, err := boundary.FromCase(c, &slot, logrus.StandardLogger())
	if err != nil {
		return result, err
	}

	registry := prometheus.NewRegistry()
	clampMetrics := thermo.NewClampMetrics()
	waterMass := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "humidair_water_mass_kilograms",
		Help: "Mass of water vapor in the domain in kilogram.",
	}, []string{"phase"})
	registry.MustRegister(clampMetrics, waterMass)

	th, err := thermo.New(t, p, thermo.Options{
		Phase:        c.Phase,
		Method:       method,
		MethodSource: &slot,
		Clamp:        clampMetrics,
	})
	if err != nil {
		return result, err
	}
	if err := th.Initialize(snapshot); err != nil {
		return result, err
	}
	for _, bc := range bcs {
		if err := bc.UpdateCoeffs(th); err != nil {
			return result, err
		}
	}
	result.Clamp, err = th.Correct()
	if err != nil {
		return result, err
	}
	for _, bc := range bcs {
		bc.Evaluate()
		c.BoundaryField[bc.Patch] = bc.Dict()
	}
	result.Method = th.Method()
	result.TotalWaterMass = th.TotalWaterMass()
	waterMass.WithLabelValues(c.Phase).Set(result.TotalWaterMass)

	if err := th.Write(snapshot); err != nil {
		return result, err
	}
	if err := writeCase(filepath.Join(o.Dir, o.Time, caseFile), c); err != nil {
		return result, err
	}
	logrus.Infof("Water mass: %g kg (%d samples limited to 0, %d to saturation)",
		result.TotalWaterMass, result.Clamp.Below, result.Clamp.Above)

	if o.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(o.MetricsTextfile, registry); err != nil {
			return result, err
		}
	}
	return result, nil
}

func writeCase(path string, c *config.Case) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
