// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

// Package field holds per-cell scalar fields with one boundary region per patch.
package field

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrSizeMismatch = errors.New("field size mismatch")
	ErrUnknownPatch = errors.New("unknown patch")
)

// Patch is a named group of boundary faces.
type Patch struct {
	Name string
	Size int
}

// Mesh describes the cells and boundary patches that fields are indexed by.
type Mesh struct {
	Volumes []float64 // cell volumes in m³
	Patches []Patch
}

// NewMesh checks the patches and returns a mesh.
func NewMesh(volumes []float64, patches []Patch) (*Mesh, error) {
	if len(volumes) == 0 {
		return nil, errors.New("mesh without cells")
	}
	seen := make(map[string]bool, len(patches))
	for _, p := range patches {
		if p.Name == "" || strings.ContainsAny(p.Name, " \t\n/") {
			return nil, fmt.Errorf("invalid patch name '%s'", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate patch '%s'", p.Name)
		}
		if p.Size <= 0 {
			return nil, fmt.Errorf("patch '%s' has no faces", p.Name)
		}
		seen[p.Name] = true
	}
	return &Mesh{Volumes: volumes, Patches: patches}, nil
}

// NCells returns the number of cells.
func (m *Mesh) NCells() int {
	return len(m.Volumes)
}

// PatchIndex returns the index of the named patch.
func (m *Mesh) PatchIndex(name string) (int, error) {
	for i, p := range m.Patches {
		if p.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w '%s'", ErrUnknownPatch, name)
}

// TotalVolume returns the sum of all cell volumes.
func (m *Mesh) TotalVolume() float64 {
	return floats.Sum(m.Volumes)
}

// Scalar is a scalar field: one value per cell plus one value per boundary face.
type Scalar struct {
	Name     string
	Units    string
	Internal []float64
	Boundary [][]float64 // same order as Mesh.Patches
	mesh     *Mesh
}

// NewScalar allocates a field on m with every value set to value.
func NewScalar(name, units string, m *Mesh, value float64) *Scalar {
	s := &Scalar{
		Name:     name,
		Units:    units,
		Internal: make([]float64, m.NCells()),
		Boundary: make([][]float64, len(m.Patches)),
		mesh:     m,
	}
	for i, p := range m.Patches {
		s.Boundary[i] = make([]float64, p.Size)
	}
	s.Fill(value)
	return s
}

// FromValues wraps existing values into a field on m after checking their sizes.
func FromValues(name, units string, m *Mesh, internal []float64, boundary [][]float64) (*Scalar, error) {
	if len(internal) != m.NCells() {
		return nil, fmt.Errorf("%w: field '%s' has %d internal values for %d cells",
			ErrSizeMismatch, name, len(internal), m.NCells())
	}
	if len(boundary) != len(m.Patches) {
		return nil, fmt.Errorf("%w: field '%s' has %d boundary regions for %d patches",
			ErrSizeMismatch, name, len(boundary), len(m.Patches))
	}
	for i, p := range m.Patches {
		if len(boundary[i]) != p.Size {
			return nil, fmt.Errorf("%w: field '%s' has %d values on patch '%s' with %d faces",
				ErrSizeMismatch, name, len(boundary[i]), p.Name, p.Size)
		}
	}
	return &Scalar{Name: name, Units: units, Internal: internal, Boundary: boundary, mesh: m}, nil
}

// Mesh returns the mesh the field is defined on.
func (s *Scalar) Mesh() *Mesh {
	return s.mesh
}

// Patch returns the values of the named boundary patch. The slice shares the
// storage of the field.
func (s *Scalar) Patch(name string) ([]float64, error) {
	i, err := s.mesh.PatchIndex(name)
	if err != nil {
		return nil, fmt.Errorf("field '%s': %w", s.Name, err)
	}
	return s.Boundary[i], nil
}

// Regions returns the internal values followed by the values of every patch.
func (s *Scalar) Regions() [][]float64 {
	regions := make([][]float64, 0, 1+len(s.Boundary))
	regions = append(regions, s.Internal)
	return append(regions, s.Boundary...)
}

// Fill sets every internal and boundary value.
func (s *Scalar) Fill(value float64) {
	for _, r := range s.Regions() {
		for i := range r {
			r[i] = value
		}
	}
}

// CopyFrom copies all values of o, which must be defined on the same mesh.
func (s *Scalar) CopyFrom(o *Scalar) error {
	if o.mesh != s.mesh {
		if err := sameShape(s, o); err != nil {
			return err
		}
	}
	copy(s.Internal, o.Internal)
	for i := range s.Boundary {
		copy(s.Boundary[i], o.Boundary[i])
	}
	return nil
}

// Add adds the values of o element-wise.
func (s *Scalar) Add(o *Scalar) error {
	if err := sameShape(s, o); err != nil {
		return err
	}
	floats.Add(s.Internal, o.Internal)
	for i := range s.Boundary {
		floats.Add(s.Boundary[i], o.Boundary[i])
	}
	return nil
}

// Clamp bounds every value to [lower, upper].
func (s *Scalar) Clamp(lower, upper float64) {
	for _, r := range s.Regions() {
		for i, v := range r {
			r[i] = min(max(v, lower), upper)
		}
	}
}

func sameShape(s, o *Scalar) error {
	if len(s.Internal) != len(o.Internal) || len(s.Boundary) != len(o.Boundary) {
		return fmt.Errorf("%w: '%s' and '%s'", ErrSizeMismatch, s.Name, o.Name)
	}
	for i := range s.Boundary {
		if len(s.Boundary[i]) != len(o.Boundary[i]) {
			return fmt.Errorf("%w: '%s' and '%s' on patch %d", ErrSizeMismatch, s.Name, o.Name, i)
		}
	}
	return nil
}

// GroupName returns the name of a field of the given phase.
func GroupName(name, phase string) string {
	if phase == "" {
		return name
	}
	return name + "." + phase
}
