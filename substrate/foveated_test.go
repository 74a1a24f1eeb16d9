package substrate

import (
	"errors"
	"math"
	"testing"

	"github.com/fathom-sim/fathom/config"
)

func TestFoveatedShapeLaw(t *testing.T) {
	u := mustUniverse(t, 200, 200, 50, 2)

	cases := []struct {
		shells []Shell
		want   int
	}{
		{nil, 112}, // default shells (16+8+4)*4
		{[]Shell{{0, 10, 16}, {10, 50, 8}, {50, 200, 4}}, 112},
		{[]Shell{{0, 20, 6}}, 24},
		{[]Shell{{0, 5, 3}, {5, 10, 5}}, 32},
	}
	for _, c := range cases {
		got, err := u.ObserveFoveated(Vec3{}, 0, c.shells)
		if err != nil {
			t.Fatalf("ObserveFoveated(%v) failed: %v", c.shells, err)
		}
		if len(got) != c.want {
			t.Errorf("ObserveFoveated(%v) length = %d, want %d", c.shells, len(got), c.want)
		}
	}
}

func TestFoveatedInvalidShell(t *testing.T) {
	u := mustUniverse(t, 100, 100, 50, 2)

	bad := [][]Shell{
		{{RadiusInner: 0, RadiusOuter: 10, Sectors: 0}},
		{{RadiusInner: 0, RadiusOuter: 10, Sectors: -4}},
		{{RadiusInner: 10, RadiusOuter: 10, Sectors: 4}},
		{{RadiusInner: 20, RadiusOuter: 10, Sectors: 4}},
		{{RadiusInner: -5, RadiusOuter: 10, Sectors: 4}},
		{{RadiusInner: 0, RadiusOuter: float32(math.NaN()), Sectors: 4}},
	}
	for _, shells := range bad {
		if _, err := u.ObserveFoveated(Vec3{}, 0, shells); !errors.Is(err, ErrInvalidShell) {
			t.Errorf("shells %v error = %v, want ErrInvalidShell", shells, err)
		}
	}
}

func TestFoveatedAmbientBaseline(t *testing.T) {
	u := mustUniverse(t, 200, 200, 50, 2)

	out, err := u.ObserveFoveated(Vec3{}, 0, nil)
	if err != nil {
		t.Fatalf("ObserveFoveated failed: %v", err)
	}

	// Unperturbed substrate: every sector reads the ambient of its field.
	// Per-sector order is [temperature, noise, occupancy, sonar_return].
	for i := 0; i < len(out); i += FoveaFieldCount {
		if out[i] != 293 {
			t.Errorf("sector %d temperature = %v, want 293", i/FoveaFieldCount, out[i])
		}
		for j := 1; j < FoveaFieldCount; j++ {
			if out[i+j] != 0 {
				t.Errorf("sector %d field %d = %v, want 0", i/FoveaFieldCount, j, out[i+j])
			}
		}
	}
}

func TestFoveatedDirectional(t *testing.T) {
	u := mustUniverse(t, 400, 400, 50, 2)

	// Heat source due east of the observer.
	if err := u.ApplyStamp(StampFire, Vec3{30, 0, 0}, 10, 1); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}

	shells := []Shell{{RadiusInner: 10, RadiusOuter: 50, Sectors: 8}}
	out, err := u.ObserveFoveated(Vec3{}, 0, shells)
	if err != nil {
		t.Fatalf("ObserveFoveated failed: %v", err)
	}

	// Heading east: sector 0 faces the fire, sector 4 faces away.
	front := out[0*FoveaFieldCount] // temperature
	back := out[4*FoveaFieldCount]
	if front <= back {
		t.Errorf("front sector temperature %v not above back sector %v", front, back)
	}

	// Rotate the observer to face away; the hot sector follows the heading.
	out, err = u.ObserveFoveated(Vec3{}, math.Pi, shells)
	if err != nil {
		t.Fatalf("ObserveFoveated failed: %v", err)
	}
	front = out[0*FoveaFieldCount]
	back = out[4*FoveaFieldCount]
	if back <= front {
		t.Errorf("after turning, back sector %v should read the fire, front %v", back, front)
	}
}

func TestFoveatedHeadingPreservesShape(t *testing.T) {
	u := mustUniverse(t, 200, 200, 50, 2)
	if err := u.ApplyStamp(StampExplosion, Vec3{20, 10, 0}, 15, 1); err != nil {
		t.Fatalf("ApplyStamp failed: %v", err)
	}

	a, err := u.ObserveFoveated(Vec3{}, 0.3, nil)
	if err != nil {
		t.Fatalf("ObserveFoveated failed: %v", err)
	}
	b, err := u.ObserveFoveated(Vec3{}, 2.1, nil)
	if err != nil {
		t.Fatalf("ObserveFoveated failed: %v", err)
	}
	if len(a) != len(b) {
		t.Errorf("heading changed output length: %d vs %d", len(a), len(b))
	}
}

func TestFoveatedDeterministic(t *testing.T) {
	build := func() []float32 {
		u, err := NewSeeded(200, 200, 50, 2, 11)
		if err != nil {
			t.Fatalf("NewSeeded failed: %v", err)
		}
		if err := u.ApplyStamp(StampSonarPing, Vec3{40, -20, 0}, 30, 0.8); err != nil {
			t.Fatalf("stamp: %v", err)
		}
		u.Step(0.1)
		out, err := u.ObserveFoveated(Vec3{5, 5, 0}, 1.2, nil)
		if err != nil {
			t.Fatalf("ObserveFoveated failed: %v", err)
		}
		return out
	}

	a := build()
	b := build()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("foveated vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestShellsFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}

	shells, err := ShellsFromConfig(cfg)
	if err != nil {
		t.Fatalf("ShellsFromConfig failed: %v", err)
	}
	if FoveatedLen(shells) != 112 {
		t.Errorf("configured shells length = %d, want 112", FoveatedLen(shells))
	}

	cfg.Fovea.Shells[0].Sectors = 0
	if _, err := ShellsFromConfig(cfg); !errors.Is(err, ErrInvalidShell) {
		t.Errorf("zero-sector config shell error = %v, want ErrInvalidShell", err)
	}
}
