// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package humidity

import "sync/atomic"

// MethodSlot holds the saturation method chosen by a boundary condition so that the
// bulk thermo of the same mesh evaluates the same correlation. It is written before
// any per-sample evaluation of a solver step and read afterwards.
type MethodSlot struct {
	v atomic.Int32 // method + 1, zero when unset
}

// Publish stores the method and returns the previously published one, if any.
func (s *MethodSlot) Publish(m Method) (prev Method, ok bool) {
	old := s.v.Swap(int32(m) + 1)
	if old == 0 {
		return Buck, false
	}
	return Method(old - 1), true
}

// Method returns the published method.
func (s *MethodSlot) Method() (Method, bool) {
	v := s.v.Load()
	if v == 0 {
		return Buck, false
	}
	return Method(v - 1), true
}
