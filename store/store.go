// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

// Package store reads and writes field snapshots as netCDF files.
//
// A case directory holds the mesh in mesh.nc and one directory per time, which
// contains one file per field:
//
//	case/mesh.nc
//	case/0/T.nc
//	case/0/p.nc
//	case/0/relHum.nc
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/sirupsen/logrus"

	"github.com/bdrung/humidair/field"
)

var ErrNotFound = errors.New("field not found")

const (
	internalVar  = "internalField"
	boundaryVar  = "boundaryField_"
	cellDim      = "cells"
	faceDim      = "faces_"
	meshFile     = "mesh.nc"
	volumeVar    = "V"
	fieldVersion = "1"
)

// Time is the snapshot of one time directory of a case.
type Time struct {
	Dir  string
	Name string
	Mesh *field.Mesh
	Log  logrus.FieldLogger
}

// Open returns the snapshot for the time name of the case in dir. The mesh is read
// from the case directory.
func Open(dir, name string) (*Time, error) {
	m, err := ReadMesh(filepath.Join(dir, meshFile))
	if err != nil {
		return nil, err
	}
	return &Time{Dir: dir, Name: name, Mesh: m, Log: logrus.StandardLogger()}, nil
}

func (t *Time) path(name string) string {
	return filepath.Join(t.Dir, t.Name, name+".nc")
}

// Exists reports whether the field was written for this time. A file that cannot be
// inspected counts as existing, so that Load reports why it cannot be read.
func (t *Time) Exists(name string) bool {
	_, err := os.Stat(t.path(name))
	return !errors.Is(err, os.ErrNotExist)
}

// Load reads the named field.
func (t *Time) Load(name string) (*field.Scalar, error) {
	path := t.path(name)
	ff, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: '%s' at time %s", ErrNotFound, name, t.Name)
	} else if err != nil {
		return nil, err
	}
	defer ff.Close()

	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %v", path, err)
	}
	internal, err := readVar(f, internalVar, t.Mesh.NCells())
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", path, err)
	}
	boundary := make([][]float64, len(t.Mesh.Patches))
	for i, p := range t.Mesh.Patches {
		boundary[i], err = readVar(f, boundaryVar+p.Name, p.Size)
		if err != nil {
			return nil, fmt.Errorf("store: reading %s: %w", path, err)
		}
	}
	units, _ := f.Header.GetAttribute(internalVar, "units").(string)
	t.Log.Debugf("Read field %s from %s", name, path)
	return field.FromValues(name, units, t.Mesh, internal, boundary)
}

// Save writes the field, replacing an earlier snapshot of it.
func (t *Time) Save(s *field.Scalar) error {
	if err := os.MkdirAll(filepath.Join(t.Dir, t.Name), 0o755); err != nil {
		return err
	}
	dims := []string{cellDim}
	lengths := []int{t.Mesh.NCells()}
	for _, p := range t.Mesh.Patches {
		dims = append(dims, faceDim+p.Name)
		lengths = append(lengths, p.Size)
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "field", s.Name)
	h.AddAttribute("", "time", t.Name)
	h.AddAttribute("", "data_version", fieldVersion)
	vars := []string{internalVar}
	h.AddVariable(internalVar, []string{cellDim}, []float64{0})
	for _, p := range t.Mesh.Patches {
		h.AddVariable(boundaryVar+p.Name, []string{faceDim + p.Name}, []float64{0})
		vars = append(vars, boundaryVar+p.Name)
	}
	if s.Units != "" {
		for _, v := range vars {
			h.AddAttribute(v, "units", s.Units)
		}
	}
	h.Define()

	values := map[string][]float64{internalVar: s.Internal}
	for i, p := range t.Mesh.Patches {
		values[boundaryVar+p.Name] = s.Boundary[i]
	}
	path := t.path(s.Name)
	if err := writeFile(path, h, values); err != nil {
		return fmt.Errorf("store: writing %s: %v", path, err)
	}
	t.Log.Debugf("Wrote field %s to %s", s.Name, path)
	return nil
}

func writeFile(path string, h *cdf.Header, values map[string][]float64) error {
	ff, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeVars(ff, h, values); err != nil {
		ff.Close()
		return err
	}
	return ff.Close()
}

func writeVars(ff *os.File, h *cdf.Header, values map[string][]float64) error {
	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		return err
	}
	for _, v := range f.Header.Variables() {
		data := values[v]
		n := f.Header.Lengths(v)[0]
		if n != len(data) {
			return fmt.Errorf("variable %s has %d values for dimension length %d", v, len(data), n)
		}
		if _, err := f.Writer(v, []int{0}, []int{n}).Write(data); err != nil {
			return fmt.Errorf("writing variable %s: %v", v, err)
		}
	}
	return cdf.UpdateNumRecs(ff)
}

func readVar(f *cdf.File, v string, n int) ([]float64, error) {
	lengths := f.Header.Lengths(v)
	if lengths == nil {
		return nil, fmt.Errorf("missing variable %s", v)
	}
	if len(lengths) != 1 || lengths[0] != n {
		return nil, fmt.Errorf("%w: variable %s has dimensions %v, want [%d]",
			field.ErrSizeMismatch, v, lengths, n)
	}
	r := f.Reader(v, nil, nil)
	data, ok := r.Zero(n).([]float64)
	if !ok {
		return nil, fmt.Errorf("variable %s is not of type double", v)
	}
	if _, err := r.Read(data); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", v, err)
	}
	return data, nil
}
