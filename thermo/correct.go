// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package thermo

import (
	"errors"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/bdrung/humidair/field"
	"github.com/bdrung/humidair/humidity"
)

// ClampStats counts the samples whose specific humidity was limited by a correction.
type ClampStats struct {
	Below int // set to 0
	Above int // set to the maximum specific humidity
}

// Correct derives all humidity fields from the specific humidity, temperature and
// pressure and then limits the specific humidity to [0, maxSpecificHumidity].
//
// The relative humidity and the water vapor are derived from the specific humidity
// as it was before limiting, i.e. from the value the transport equation produced.
func (th *Thermo) Correct() (ClampStats, error) {
	if th.specificHumidity == nil {
		return ClampStats{}, errors.New("thermo: correct before initialization")
	}
	th.ReadMethod()

	th.calcPSatH2O()
	th.calcPartialPressureH2O()
	th.calcRelHumidity()
	th.calcWaterVapor()
	th.calcMaxSpecificHumidity()
	stats := th.limitMax()
	th.calcWaterMass()

	if stats.Below > 0 || stats.Above > 0 {
		th.log.Debugf("Limited specific humidity: %d samples below 0, %d above saturation",
			stats.Below, stats.Above)
	}
	if th.clamp != nil {
		th.clamp.ObserveClamp(th.phase, stats)
	}
	return stats, nil
}

func (th *Thermo) calcPSatH2O() {
	t, pSat := th.t.Regions(), th.pSatH2O.Regions()
	field.ForEachSample(pSat, func(r, i int) {
		pSat[r][i] = humidity.SaturationPressure(t[r][i], th.method)
	})
}

func (th *Thermo) calcPartialPressureH2O() {
	t, p, q := th.t.Regions(), th.p.Regions(), th.specificHumidity.Regions()
	pw := th.partialPressureH2O.Regions()
	field.ForEachSample(pw, func(r, i int) {
		pw[r][i] = humidity.PartialPressureFromSpecificHumidity(q[r][i], t[r][i], p[r][i])
	})
}

func (th *Thermo) calcRelHumidity() {
	pw, pSat, phi := th.partialPressureH2O.Regions(), th.pSatH2O.Regions(), th.relHum.Regions()
	field.ForEachSample(phi, func(r, i int) {
		phi[r][i] = pw[r][i] / pSat[r][i]
	})
}

// calcWaterVapor also updates the density of the humid air.
func (th *Thermo) calcWaterVapor() {
	t, p, pw := th.t.Regions(), th.p.Regions(), th.partialPressureH2O.Regions()
	rhoWater, rho := th.waterVapor.Regions(), th.rho.Regions()
	field.ForEachSample(rhoWater, func(r, i int) {
		rhoWater[r][i] = humidity.DensityOfWaterVapor(pw[r][i], t[r][i])
		rho[r][i] = rhoWater[r][i] + humidity.DensityOfDryAir(p[r][i], pw[r][i], t[r][i])
	})
}

func (th *Thermo) calcMaxSpecificHumidity() {
	t, p, pSat := th.t.Regions(), th.p.Regions(), th.pSatH2O.Regions()
	qMax, maxWater := th.maxSpecificHumidity.Regions(), th.maxWaterVapor.Regions()
	field.ForEachSample(qMax, func(r, i int) {
		qMax[r][i] = humidity.SpecificHumidityFromPartialPressure(pSat[r][i], t[r][i], p[r][i])
		maxWater[r][i] = humidity.DensityOfWaterVapor(pSat[r][i], t[r][i])
	})
}

// limitMax bounds the specific humidity to [0, maxSpecificHumidity]. NaN becomes 0.
// Values are limited silently; upstream inconsistencies only show up in the stats.
func (th *Thermo) limitMax() ClampStats {
	q, qMax := th.specificHumidity.Regions(), th.maxSpecificHumidity.Regions()
	var below, above atomic.Int64
	field.ForEachSample(q, func(r, i int) {
		switch v := q[r][i]; {
		case !(v >= 0):
			q[r][i] = 0
			below.Add(1)
		case v > qMax[r][i]:
			q[r][i] = qMax[r][i]
			above.Add(1)
		}
	})
	return ClampStats{Below: int(below.Load()), Above: int(above.Load())}
}

// calcWaterMass integrates the water vapor over the cell volumes.
func (th *Thermo) calcWaterMass() {
	floats.MulTo(th.waterMass.Internal, th.waterVapor.Internal, th.mesh.Volumes)
}
