// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import logger "github.com/d2r2/go-logger"

// lg logs the sensor readings. --debug lowers its level.
var lg = logger.NewPackageLogger("sensor", logger.InfoLevel)
