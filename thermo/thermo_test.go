// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package thermo

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"github.com/bdrung/humidair/field"
	"github.com/bdrung/humidair/humidity"
)

type memStore map[string]*field.Scalar

func (s memStore) Exists(name string) bool { return s[name] != nil }

func (s memStore) Load(name string) (*field.Scalar, error) {
	if f := s[name]; f != nil {
		return f, nil
	}
	return nil, errors.New("not found: " + name)
}

func (s memStore) Save(f *field.Scalar) error {
	s[f.Name] = f
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testThermo returns a thermo on a mesh with three cells and one patch of two faces
// at 300 K and 101325 Pa.
func testThermo(t *testing.T, opts Options) *Thermo {
	t.Helper()
	m, err := field.NewMesh([]float64{1, 2, 0.5}, []field.Patch{{Name: "inlet", Size: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Log == nil {
		opts.Log = quietLogger()
	}
	th, err := New(field.NewScalar("T", "K", m, 300), field.NewScalar("p", "Pa", m, 101325), opts)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return th
}

func relHumStore(th *Thermo, phi float64) memStore {
	return memStore{th.RelHum().Name: field.NewScalar(th.RelHum().Name, "1", th.mesh, phi)}
}

func forAll(t *testing.T, s *field.Scalar, check func(v float64) bool, msg string) {
	t.Helper()
	for r, values := range s.Regions() {
		for i, v := range values {
			if !check(v) {
				t.Errorf("%s[%d][%d] = %.10g: %s", s.Name, r, i, v, msg)
			}
		}
	}
}

func TestNewInvalidMethod(t *testing.T) {
	m, _ := field.NewMesh([]float64{1}, nil)
	T, p := field.NewScalar("T", "K", m, 300), field.NewScalar("p", "Pa", m, 1e5)
	if _, err := New(T, p, Options{Method: humidity.Method(5)}); !errors.Is(err, humidity.ErrUnknownMethod) {
		t.Errorf("New() with invalid method: error = %v", err)
	}
	other, _ := field.NewMesh([]float64{1}, nil)
	if _, err := New(T, field.NewScalar("p", "Pa", other, 1e5), Options{}); !errors.Is(err, field.ErrSizeMismatch) {
		t.Errorf("New() with fields on different meshes: error = %v", err)
	}
}

func TestInitializeFromSpecificHumidity(t *testing.T) {
	th := testThermo(t, Options{Phase: "air"})
	q := field.NewScalar("specificHumidity.air", "kg/kg", th.mesh, 0.008)
	if err := th.Initialize(memStore{q.Name: q}); err != nil {
		t.Fatalf("Initialize() unexpected error: %v", err)
	}
	if th.InitializedFromRelHumidity() {
		t.Error("initialized from relHum although specificHumidity exists")
	}
	forAll(t, th.SpecificHumidity(), func(v float64) bool { return v == 0.008 }, "want 0.008")
}

func TestInitializeFromRelHumidity(t *testing.T) {
	th := testThermo(t, Options{})
	if err := th.Initialize(relHumStore(th, 0.5)); err != nil {
		t.Fatalf("Initialize() unexpected error: %v", err)
	}
	if !th.InitializedFromRelHumidity() {
		t.Error("not initialized from relHum")
	}
	want := humidity.RelativeToSpecific(0.5, 300, 101325, humidity.Buck)
	forAll(t, th.SpecificHumidity(), func(v float64) bool { return v == want }, "not derived from relHum")
}

func TestInitializeWithoutHumidity(t *testing.T) {
	th := testThermo(t, Options{})
	err := th.Initialize(memStore{})
	if !errors.Is(err, ErrNoHumidityField) {
		t.Fatalf("Initialize() error = %v, want ErrNoHumidityField", err)
	}
	if th.SpecificHumidity() != nil {
		t.Error("specific humidity allocated although initialization failed")
	}
	if _, err := th.Correct(); err == nil {
		t.Error("Correct() before initialization succeeded")
	}
}

func TestCorrect(t *testing.T) {
	th := testThermo(t, Options{})
	if err := th.Initialize(relHumStore(th, 0.5)); err != nil {
		t.Fatalf("Initialize() unexpected error: %v", err)
	}
	stats, err := th.Correct()
	if err != nil {
		t.Fatalf("Correct() unexpected error: %v", err)
	}
	if stats != (ClampStats{}) {
		t.Errorf("Correct() limited samples: %+v", stats)
	}

	near := func(want, tol float64) func(float64) bool {
		return func(v float64) bool { return math.Abs(v-want) <= tol*want }
	}
	forAll(t, th.PSatH2O(), near(3535.244078, 1e-9), "want 3535.24 Pa")
	forAll(t, th.PartialPressureH2O(), near(1767.622039, 1e-9), "want 1767.62 Pa")
	forAll(t, th.RelHum(), near(0.5, 1e-9), "relative humidity does not round trip")
	forAll(t, th.WaterVapor(), near(0.0127669465, 1e-8), "want 0.01277 kg/m³")
	forAll(t, th.Rho(), near(0.0127669465+1.1560657656, 1e-8), "want 1.1688 kg/m³")
	forAll(t, th.SpecificHumidity(), near(0.0109228176, 1e-8), "want 0.010923 kg/kg")

	qMax := humidity.MaxSpecificHumidity(300, 101325, humidity.Buck)
	forAll(t, th.MaxSpecificHumidity(), near(qMax, 1e-12), "want saturation specific humidity")
	forAll(t, th.MaxWaterVapor(), near(0.0255338929, 1e-8), "want saturated vapor density")

	wantMass := []float64{0.0127669465, 2 * 0.0127669465, 0.5 * 0.0127669465}
	for i, want := range wantMass {
		if got := th.WaterMass().Internal[i]; math.Abs(got-want) > 1e-8*want {
			t.Errorf("waterMass[%d] = %g, want %g", i, got, want)
		}
	}
	if got, want := th.TotalWaterMass(), 3.5*0.0127669465; math.Abs(got-want) > 1e-8*want {
		t.Errorf("TotalWaterMass() = %g, want %g", got, want)
	}
}

func TestCorrectLimitsSpecificHumidity(t *testing.T) {
	th := testThermo(t, Options{})
	if err := th.Initialize(relHumStore(th, 1.2)); err != nil {
		t.Fatalf("Initialize() unexpected error: %v", err)
	}
	q := th.SpecificHumidity()
	q.Internal[1] = -0.002
	q.Boundary[0][0] = math.NaN()

	stats, err := th.Correct()
	if err != nil {
		t.Fatalf("Correct() unexpected error: %v", err)
	}
	if stats != (ClampStats{Below: 2, Above: 3}) {
		t.Errorf("Correct() stats = %+v, want 2 below and 3 above", stats)
	}
	qMax := th.MaxSpecificHumidity()
	if q.Internal[0] != qMax.Internal[0] || q.Internal[2] != qMax.Internal[2] || q.Boundary[0][1] != qMax.Boundary[0][1] {
		t.Errorf("supersaturated samples not limited to maximum: %v, max %v", q.Regions(), qMax.Regions())
	}
	if q.Internal[1] != 0 || q.Boundary[0][0] != 0 {
		t.Errorf("negative and NaN samples not limited to 0: %v", q.Regions())
	}
	// derived from the value before limiting
	if phi := th.RelHum().Internal[0]; math.Abs(phi-1.2) > 1e-9 {
		t.Errorf("relHum = %g, want 1.2", phi)
	}
}

func TestMethodOverride(t *testing.T) {
	var slot humidity.MethodSlot
	th := testThermo(t, Options{Method: humidity.Buck, MethodSource: &slot})
	if err := th.Initialize(relHumStore(th, 0.4)); err != nil {
		t.Fatalf("Initialize() unexpected error: %v", err)
	}
	if th.Method() != humidity.Buck {
		t.Fatalf("Method() = %v before publishing", th.Method())
	}

	slot.Publish(humidity.Magnus)
	if _, err := th.Correct(); err != nil {
		t.Fatalf("Correct() unexpected error: %v", err)
	}
	if th.Method() != humidity.Magnus {
		t.Errorf("Method() = %v, want magnus", th.Method())
	}
	want := humidity.SaturationPressure(300, humidity.Magnus)
	forAll(t, th.PSatH2O(), func(v float64) bool { return v == want }, "not computed with magnus")
}

func TestCorrectRho(t *testing.T) {
	th := testThermo(t, Options{})
	if err := th.Initialize(relHumStore(th, 0.5)); err != nil {
		t.Fatal(err)
	}
	if _, err := th.Correct(); err != nil {
		t.Fatal(err)
	}
	rho0 := th.Rho().Internal[0]
	delta := field.NewScalar("deltaRho", "kg/m^3", th.mesh, 0.1)
	if err := th.CorrectRho(delta); err != nil {
		t.Fatalf("CorrectRho() unexpected error: %v", err)
	}
	if got := th.Rho().Internal[0]; math.Abs(got-rho0-0.1) > 1e-12 {
		t.Errorf("rho = %g after CorrectRho, want %g", got, rho0+0.1)
	}
	if err := th.CorrectRhoLimited(delta, 0.5, 1.2); err != nil {
		t.Fatalf("CorrectRhoLimited() unexpected error: %v", err)
	}
	forAll(t, th.Rho(), func(v float64) bool { return v == 1.2 }, "not limited to 1.2")
}

func TestWrite(t *testing.T) {
	th := testThermo(t, Options{Phase: "air"})
	out := memStore{}
	if err := th.Write(out); err == nil || !strings.Contains(err.Error(), "before initialization") {
		t.Errorf("Write() before initialization: error = %v", err)
	}
	if err := th.Initialize(relHumStore(th, 0.5)); err != nil {
		t.Fatal(err)
	}
	if err := th.Write(out); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	for _, name := range []string{"specificHumidity.air", "relHum.air", "rho.air"} {
		if !out.Exists(name) {
			t.Errorf("Write() did not save %s", name)
		}
	}
}

func TestClampMetrics(t *testing.T) {
	metrics := NewClampMetrics()
	th := testThermo(t, Options{Phase: "air", Clamp: metrics})
	if err := th.Initialize(relHumStore(th, 1.1)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := th.Correct(); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(metrics.Corrections.WithLabelValues("air")); got != 2 {
		t.Errorf("corrections = %g, want 2", got)
	}
	// the second correction starts from limited values
	if got := testutil.ToFloat64(metrics.Clamped.WithLabelValues("air", "upper")); got != 5 {
		t.Errorf("clamped upper = %g, want 5", got)
	}
	if got := testutil.ToFloat64(metrics.Clamped.WithLabelValues("air", "lower")); got != 0 {
		t.Errorf("clamped lower = %g, want 0", got)
	}
}
