// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"net/http"

	logger "github.com/d2r2/go-logger"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	caseDir := pflag.String(
		"case", "", "Update the humidity fields of the case in this directory and exit.",
	)
	timeName := pflag.String("time", "0", "Time directory of the case to read and write.")
	phase := pflag.String("phase", "", "Phase name (overrides the phase of the case file).")
	method := pflag.String(
		"method", "", "Saturation pressure method 'buck' or 'magnus' (overrides the case file).",
	)
	metricsTextfile := pflag.String(
		"metrics.textfile", "", "Write the metrics of a case run to this file.",
	)
	listenAddress := pflag.String(
		"web.listen-address", ":9775", "Address on which to expose metrics and web interface.",
	)
	metricsPath := pflag.String(
		"web.telemetry-path", "/metrics", "Path under which to expose metrics.",
	)
	debug := pflag.Bool("debug", false, "Log debug messages.")
	pflag.Parse()

	level := logger.InfoLevel
	if *debug {
		level = logger.DebugLevel
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *caseDir != "" {
		_, err := runCase(caseOptions{
			Dir:             *caseDir,
			Time:            *timeName,
			Phase:           *phase,
			Method:          *method,
			MetricsTextfile: *metricsTextfile,
		})
		if err != nil {
			logrus.Fatal(err)
		}
		return
	}

	sensors, err := parseSensors(pflag.Args())
	if err != nil {
		logrus.Fatal(err)
	}

	logger.ChangePackageLogLevel("bsbmp", logger.InfoLevel)
	logger.ChangePackageLogLevel("i2c", logger.InfoLevel)
	logger.ChangePackageLogLevel("sht3x", logger.InfoLevel)
	logger.ChangePackageLogLevel("sensor", level)

	for _, flags := range sensors {
		sensor, err := flags.NewSensor()
		if err != nil {
			logrus.Fatal(err)
		}
		prometheus.MustRegister(NewSensorCollector(sensor, flags))
	}
	prometheus.MustRegister(versioncollector.NewCollector("humidair"))

	logrus.Infof(
		"Serving Prometheus humidity exporter on %s%s - for example http://localhost%s%s",
		*listenAddress,
		*metricsPath,
		*listenAddress,
		*metricsPath,
	)
	http.Handle(*metricsPath, promhttp.Handler())
	logrus.Fatal(http.ListenAndServe(*listenAddress, nil))
}
