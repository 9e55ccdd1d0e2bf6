// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"

	"github.com/bdrung/humidair/field"
)

// ReadMesh reads the cell volumes and the boundary patches from a mesh file.
// Every dimension named faces_<patch> defines a patch, in file order.
func ReadMesh(path string) (*field.Mesh, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("store: reading mesh %s: %v", path, err)
	}

	dims := f.Header.Dimensions("")
	lengths := f.Header.Lengths("")
	nCells := -1
	var patches []field.Patch
	for i, d := range dims {
		switch {
		case d == cellDim:
			nCells = lengths[i]
		case strings.HasPrefix(d, faceDim):
			patches = append(patches, field.Patch{Name: strings.TrimPrefix(d, faceDim), Size: lengths[i]})
		}
	}
	if nCells < 0 {
		return nil, fmt.Errorf("store: mesh %s has no '%s' dimension", path, cellDim)
	}
	volumes, err := readVar(f, volumeVar, nCells)
	if err != nil {
		return nil, fmt.Errorf("store: reading mesh %s: %w", path, err)
	}
	return field.NewMesh(volumes, patches)
}

// WriteMesh writes m to the mesh file of the case in dir.
func WriteMesh(dir string, m *field.Mesh) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dims := []string{cellDim}
	lengths := []int{m.NCells()}
	for _, p := range m.Patches {
		dims = append(dims, faceDim+p.Name)
		lengths = append(lengths, p.Size)
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", "humidair mesh: cell volumes and boundary patch sizes")
	h.AddAttribute("", "data_version", fieldVersion)
	h.AddVariable(volumeVar, []string{cellDim}, []float64{0})
	h.AddAttribute(volumeVar, "units", "m^3")
	h.Define()

	path := filepath.Join(dir, meshFile)
	if err := writeFile(path, h, map[string][]float64{volumeVar: m.Volumes}); err != nil {
		return fmt.Errorf("store: writing mesh %s: %v", path, err)
	}
	return nil
}
