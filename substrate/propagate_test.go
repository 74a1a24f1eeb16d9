package substrate

import (
	"math"
	"testing"

	"github.com/fathom-sim/fathom/config"
	"github.com/fathom-sim/fathom/field"
)

func TestDecayStrictlyDecreasing(t *testing.T) {
	u := mustUniverse(t, 100, 100, 50, 2)

	if err := u.ApplyStamp(StampExplosion, Vec3{}, 10, 1); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}

	prev := u.QueryPoint(Vec3{}).Get(field.Noise)
	if prev <= 0 {
		t.Fatalf("no noise after explosion: %v", prev)
	}

	for i := 0; i < 20; i++ {
		u.Step(0.1)
		cur := u.QueryPoint(Vec3{}).Get(field.Noise)
		if cur >= prev {
			t.Fatalf("noise not strictly decreasing at step %d: %v >= %v", i, cur, prev)
		}
		if cur <= 0 {
			t.Fatalf("noise reached zero at step %d; decay should only approach it", i)
		}
		prev = cur
	}
}

func TestDiffusionChangesNonEquilibriumPoint(t *testing.T) {
	u := mustUniverse(t, 64, 64, 32, 2)

	u.SetPoint(Vec3{}, field.Temperature, 800)
	before := u.QueryPoint(Vec3{}).Get(field.Temperature)

	u.Step(0.5)

	after := u.QueryPoint(Vec3{}).Get(field.Temperature)
	if after == before {
		t.Errorf("temperature at hot spot unchanged after step: %v", after)
	}
	if after >= before {
		t.Errorf("hot spot should cool toward neighbors: before %v, after %v", before, after)
	}

	// Heat must show up in a neighboring cell.
	neighbor := u.QueryPoint(Vec3{2.5, 0.5, 0.5}).Get(field.Temperature)
	if neighbor <= 293 {
		t.Errorf("neighbor did not warm: %v", neighbor)
	}
}

func TestDiffusionUniformIsStable(t *testing.T) {
	u := mustUniverse(t, 64, 64, 32, 4)

	// Ambient everywhere is already an equilibrium; stepping must not move it.
	for i := 0; i < 5; i++ {
		u.Step(1.0)
	}
	res, err := u.QueryVolume(Vec3{}, 30)
	if err != nil {
		t.Fatalf("QueryVolume failed: %v", err)
	}
	if got := res.Variance(field.Temperature); got != 0 {
		t.Errorf("uniform temperature grew variance %v after stepping", got)
	}
	if got := res.Mean(field.Temperature); got != 293 {
		t.Errorf("uniform temperature drifted to %v", got)
	}
}

func TestStepStableAtLargeDT(t *testing.T) {
	u := mustUniverse(t, 64, 64, 32, 4)
	u.SetPoint(Vec3{}, field.Temperature, 10000)

	// Far beyond any sane dt; the coefficient cap keeps the update a
	// convex combination so values cannot overshoot or oscillate.
	for i := 0; i < 50; i++ {
		u.Step(100)
	}

	res, err := u.QueryVolume(Vec3{}, 40)
	if err != nil {
		t.Fatalf("QueryVolume failed: %v", err)
	}
	if res.Max(field.Temperature) > 10000 || res.Min(field.Temperature) < 0 {
		t.Errorf("temperature left physical range: [%v, %v]",
			res.Min(field.Temperature), res.Max(field.Temperature))
	}
}

func TestNoNaNOrInfUnderStress(t *testing.T) {
	u, err := NewSeeded(100, 100, 50, 2, 99)
	if err != nil {
		t.Fatalf("NewSeeded failed: %v", err)
	}

	kinds := []StampKind{StampFire, StampExplosion, StampSonarPing}
	for i := 0; i < 30; i++ {
		k := kinds[i%len(kinds)]
		c := Vec3{float32(i%10) * 7, float32(i%7) * 9, float32(i % 5)}
		if err := u.ApplyStamp(k, c, 25, 1); err != nil {
			t.Fatalf("stamp %d failed: %v", i, err)
		}
		u.Step(0.5)
	}

	res, err := u.QueryVolume(Vec3{}, 200)
	if err != nil {
		t.Fatalf("QueryVolume failed: %v", err)
	}
	for _, f := range field.All() {
		for name, v := range map[string]float32{
			"mean": res.Mean(f), "min": res.Min(f),
			"max": res.Max(f), "variance": res.Variance(f),
		} {
			f64 := float64(v)
			if math.IsNaN(f64) || math.IsInf(f64, 0) {
				t.Errorf("%s %s is not finite: %v", f, name, v)
			}
		}
	}
}

func TestRateOverrides(t *testing.T) {
	slow := mustUniverse(t, 64, 64, 32, 2)
	fast := mustUniverse(t, 64, 64, 32, 2)

	if err := fast.ApplyRateOverrides([]config.FieldRateConfig{
		{Name: "noise", Decay: 3.0},
	}); err != nil {
		t.Fatalf("ApplyRateOverrides failed: %v", err)
	}
	if err := fast.ApplyRateOverrides([]config.FieldRateConfig{
		{Name: "plasma", Decay: 1.0},
	}); err == nil {
		t.Error("unknown field name in override should fail")
	}

	for _, u := range []*Universe{slow, fast} {
		if err := u.ApplyStamp(StampExplosion, Vec3{}, 10, 1); err != nil {
			t.Fatalf("ApplyStamp failed: %v", err)
		}
		u.Step(1.0)
	}

	slowNoise := slow.QueryPoint(Vec3{}).Get(field.Noise)
	fastNoise := fast.QueryPoint(Vec3{}).Get(field.Noise)
	if fastNoise >= slowNoise {
		t.Errorf("higher decay rate should fade noise faster: %v >= %v", fastNoise, slowNoise)
	}
}
