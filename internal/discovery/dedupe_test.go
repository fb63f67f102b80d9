package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skyfield-labs/aeromap/internal/model"
)

func sup(name string, lat, lon, conf float64) model.Supplier {
	return model.Supplier{Name: name, Lat: lat, Lon: lon, Confidence: conf}
}

func TestDeduplicate(t *testing.T) {
	t.Run("near duplicates with same name collapse", func(t *testing.T) {
		// ~11m apart at this latitude.
		in := []model.Supplier{
			sup("Aero Ltd", 51.4545, -2.5879, 0.5),
			sup("aero ltd", 51.4546, -2.5879, 0.9),
		}
		out := Deduplicate(in, 50)
		assert.Len(t, out, 1)
		assert.Equal(t, 0.9, out[0].Confidence, "higher confidence survives")
	})

	t.Run("near duplicates with different names kept", func(t *testing.T) {
		in := []model.Supplier{
			sup("Aero Ltd", 51.4545, -2.5879, 0.9),
			sup("Composite Co", 51.4546, -2.5879, 0.9),
		}
		out := Deduplicate(in, 50)
		assert.Len(t, out, 2)
	})

	t.Run("unknown name merges with anything nearby", func(t *testing.T) {
		in := []model.Supplier{
			sup("Aero Ltd", 51.4545, -2.5879, 0.9),
			sup("Unknown", 51.4546, -2.5879, 0.5),
		}
		out := Deduplicate(in, 50)
		assert.Len(t, out, 1)
		assert.Equal(t, "Aero Ltd", out[0].Name)
	})

	t.Run("same name far apart kept", func(t *testing.T) {
		in := []model.Supplier{
			sup("Aero Ltd", 51.4545, -2.5879, 0.9),
			sup("Aero Ltd", 51.4645, -2.5879, 0.9),
		}
		out := Deduplicate(in, 50)
		assert.Len(t, out, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Deduplicate(nil, 50))
	})
}
