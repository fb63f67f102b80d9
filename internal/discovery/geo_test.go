package discovery

import (
	"math"
	"testing"
)

func TestHaversineM(t *testing.T) {
	// Bristol to Bath, roughly 18.5 km.
	d := haversineM(51.4545, -2.5879, 51.3811, -2.3590)
	if d < 17500 || d > 19500 {
		t.Fatalf("Bristol-Bath distance = %.0fm, want ~18500m", d)
	}

	if d := haversineM(51.5, -0.12, 51.5, -0.12); d != 0 {
		t.Fatalf("zero distance = %f, want 0", d)
	}
}

func TestHaversineMiles(t *testing.T) {
	m := haversineM(51.4545, -2.5879, 51.3811, -2.3590)
	mi := haversineMiles(51.4545, -2.5879, 51.3811, -2.3590)
	if got := m / metersPerMile; math.Abs(got-mi) > 1e-9 {
		t.Fatalf("miles = %f, want %f", mi, got)
	}
}
