package substrate

import (
	"errors"
	"math"
	"testing"

	"github.com/fathom-sim/fathom/field"
)

func TestStampKindNames(t *testing.T) {
	for _, k := range []StampKind{StampFire, StampExplosion, StampSonarPing} {
		parsed, err := ParseStampKind(k.String())
		if err != nil {
			t.Fatalf("ParseStampKind(%q) failed: %v", k.String(), err)
		}
		if parsed != k {
			t.Errorf("ParseStampKind(%q) = %v, want %v", k.String(), parsed, k)
		}
	}
	if _, err := ParseStampKind("meteor"); !errors.Is(err, ErrInvalidStamp) {
		t.Errorf("ParseStampKind(meteor) error = %v, want ErrInvalidStamp", err)
	}
}

func TestStampRejectsBadParameters(t *testing.T) {
	u := mustUniverse(t, 64, 64, 32, 2)

	if err := u.ApplyStamp(StampFire, Vec3{}, -5, 1); !errors.Is(err, ErrInvalidStamp) {
		t.Errorf("negative radius error = %v, want ErrInvalidStamp", err)
	}
	if err := u.ApplyStamp(StampFire, Vec3{}, 5, -1); !errors.Is(err, ErrInvalidStamp) {
		t.Errorf("negative intensity error = %v, want ErrInvalidStamp", err)
	}
	nan := float32(math.NaN())
	if err := u.ApplyStamp(StampExplosion, Vec3{nan, 0, 0}, 5, 1); !errors.Is(err, ErrInvalidStamp) {
		t.Errorf("NaN center error = %v, want ErrInvalidStamp", err)
	}

	// A rejected stamp must leave the grids untouched.
	res, err := u.QueryVolume(Vec3{}, 20)
	if err != nil {
		t.Fatalf("QueryVolume failed: %v", err)
	}
	if got := res.Max(field.Noise); got != 0 {
		t.Errorf("noise after rejected stamps = %v, want 0", got)
	}
}

func TestStampFalloffMonotone(t *testing.T) {
	u := mustUniverse(t, 200, 200, 50, 2)

	if err := u.ApplyStamp(StampExplosion, Vec3{}, 30, 1); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}

	prev := u.QueryPoint(Vec3{1, 1, 1}).Get(field.Noise)
	if prev <= 0 {
		t.Fatalf("no noise at stamp center: %v", prev)
	}
	for _, x := range []float32{8, 16, 24} {
		cur := u.QueryPoint(Vec3{x, 1, 1}).Get(field.Noise)
		if cur > prev {
			t.Errorf("noise not monotone non-increasing at x=%v: %v > %v", x, cur, prev)
		}
		prev = cur
	}

	// Beyond the radius the field is unaffected.
	if got := u.QueryPoint(Vec3{60, 0, 0}).Get(field.Noise); got != 0 {
		t.Errorf("noise beyond stamp radius = %v, want 0", got)
	}
	if got := u.QueryPoint(Vec3{60, 0, 0}).Get(field.Temperature); got != 293 {
		t.Errorf("temperature beyond stamp radius = %v, want 293", got)
	}
}

func TestExplosionEffects(t *testing.T) {
	u := mustUniverse(t, 100, 100, 50, 2)
	u.SetPoint(Vec3{}, field.Occupancy, 1)

	if err := u.ApplyStamp(StampExplosion, Vec3{}, 10, 1); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}

	res, err := u.QueryVolume(Vec3{}, 10)
	if err != nil {
		t.Fatalf("QueryVolume failed: %v", err)
	}
	if res.Mean(field.Temperature) <= 293 {
		t.Errorf("explosion did not heat: mean temp %v", res.Mean(field.Temperature))
	}
	if res.Max(field.Noise) <= 0 {
		t.Errorf("explosion did not add noise: max %v", res.Max(field.Noise))
	}
	if res.Min(field.Integrity) >= 1 {
		t.Errorf("explosion did not damage integrity: min %v", res.Min(field.Integrity))
	}
}

func TestSonarPingEffects(t *testing.T) {
	u := mustUniverse(t, 100, 100, 50, 2)

	if err := u.ApplyStamp(StampSonarPing, Vec3{}, 20, 0.9); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}

	p := u.QueryPoint(Vec3{})
	if got := p.Get(field.SonarReturn); got <= 0 {
		t.Errorf("sonar return at ping center = %v, want > 0", got)
	}
	if got := p.Get(field.Noise); got <= 0 {
		t.Errorf("noise at ping center = %v, want > 0", got)
	}

	// Max blend: a weaker overlapping ping must not reduce the return.
	before := p.Get(field.SonarReturn)
	if err := u.ApplyStamp(StampSonarPing, Vec3{}, 20, 0.1); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}
	after := u.QueryPoint(Vec3{}).Get(field.SonarReturn)
	if after < before {
		t.Errorf("weaker ping reduced sonar return: %v -> %v", before, after)
	}
}

func TestSonarPingBlendsTowardMax(t *testing.T) {
	u := mustUniverse(t, 100, 100, 50, 2)

	// Pre-existing return at half radius: the ping eases the cell toward
	// max(current, intensity) by the falloff weight rather than replacing it.
	u.SetPoint(Vec3{11, 1, 0}, field.SonarReturn, 0.3)
	if err := u.ApplyStamp(StampSonarPing, Vec3{1, 1, 0}, 20, 1); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}

	got := u.QueryPoint(Vec3{11, 1, 0}).Get(field.SonarReturn)
	want := float32(0.3 + (1-0.3)*0.5)
	if diff := got - want; diff < -1e-4 || diff > 1e-4 {
		t.Errorf("sonar return at half radius = %v, want %v", got, want)
	}
}

func TestStampZeroRadiusIsNoop(t *testing.T) {
	u := mustUniverse(t, 64, 64, 32, 2)
	if err := u.ApplyStamp(StampFire, Vec3{}, 0, 1); err != nil {
		t.Fatalf("zero radius stamp errored: %v", err)
	}
	if got := u.QueryPoint(Vec3{}).Get(field.Temperature); got != 293 {
		t.Errorf("zero radius stamp changed temperature: %v", got)
	}
}

func TestStampValuesStayInRange(t *testing.T) {
	u := mustUniverse(t, 64, 64, 32, 2)

	// Stack many maximal stamps; clamping keeps every field in range.
	for i := 0; i < 20; i++ {
		if err := u.ApplyStamp(StampExplosion, Vec3{}, 20, 1); err != nil {
			t.Fatalf("ApplyStamp failed: %v", err)
		}
	}
	res, err := u.QueryVolume(Vec3{}, 25)
	if err != nil {
		t.Fatalf("QueryVolume failed: %v", err)
	}
	for _, f := range field.All() {
		spec := field.Spec(f)
		if res.Min(f) < spec.Min || res.Max(f) > spec.Max {
			t.Errorf("%s out of range: [%v, %v] not within [%v, %v]",
				f, res.Min(f), res.Max(f), spec.Min, spec.Max)
		}
	}
}
