// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Case is the content of a case file:
//
//	phase = "air"
//
//	[thermo]
//	method = "magnus"
//
//	[boundaryField.inlet]
//	type = "fixedHumidity"
//	mode = "relative"
//	method = "buck"
//	humidity = 0.5
type Case struct {
	Phase         string          `toml:"phase,omitempty"`
	Thermo        Dict            `toml:"thermo"`
	BoundaryField map[string]Dict `toml:"boundaryField"`
}

// ReadCase decodes a case file.
func ReadCase(r io.Reader) (*Case, error) {
	c := new(Case)
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown entry '%s'", undecoded[0])
	}
	if c.Thermo == nil {
		c.Thermo = Dict{}
	}
	return c, nil
}

// ReadCaseFile decodes the case file at path.
func ReadCaseFile(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := ReadCase(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Write encodes the case file.
func (c *Case) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
