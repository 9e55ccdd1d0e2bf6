// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

// Package config reads the case file: string-keyed dictionaries decoded from TOML.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

var ErrMissingKey = errors.New("missing required entry")

// Dict is a dictionary of a case file, e.g. the entry of one boundary patch.
type Dict map[string]interface{}

// LookupOrDefaultString returns the string entry key or def if the entry does not exist.
func (d Dict) LookupOrDefaultString(key, def string) (string, error) {
	v, ok := d[key]
	if !ok {
		return def, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def, fmt.Errorf("entry '%s' is not a string: %v", key, err)
	}
	return s, nil
}

// LookupOrDefaultFloat returns the numeric entry key or def if the entry does not exist.
func (d Dict) LookupOrDefaultFloat(key string, def float64) (float64, error) {
	if _, ok := d[key]; !ok {
		return def, nil
	}
	return d.LookupFloat(key)
}

// LookupFloat returns the numeric entry key, which must exist.
func (d Dict) LookupFloat(key string) (float64, error) {
	v, ok := d[key]
	if !ok {
		return 0, fmt.Errorf("%w '%s'", ErrMissingKey, key)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("entry '%s' is not a number: %v", key, err)
	}
	return f, nil
}

// LookupString returns the string entry key, which must exist.
func (d Dict) LookupString(key string) (string, error) {
	if _, ok := d[key]; !ok {
		return "", fmt.Errorf("%w '%s'", ErrMissingKey, key)
	}
	return d.LookupOrDefaultString(key, "")
}
