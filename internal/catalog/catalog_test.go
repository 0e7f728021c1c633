package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "SAR", c.Currency)
	assert.Len(t, c.Vehicles, 6)
	assert.Len(t, c.Categories, 6)
	assert.Len(t, c.Services, 22)

	p, ok := c.Standard.Lookup("camry", "jeddah-airport-makkah")
	require.True(t, ok)
	assert.EqualValues(t, 250, p)

	p, ok = c.Surge.Lookup("camry", "jeddah-airport-makkah")
	require.True(t, ok)
	assert.EqualValues(t, 350, p)

	_, ok = c.Standard.Lookup("camry", "jabal-khandamah")
	assert.False(t, ok, "camry does not run jabal khandamah")

	_, ok = c.Standard.Lookup("tesla", "hourly")
	assert.False(t, ok)
}

func TestSurgeNeverCheaper(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for v, row := range c.Standard {
		for s, std := range row {
			surge, ok := c.Surge.Lookup(v, s)
			require.True(t, ok, "%s/%s missing from surge table", v, s)
			assert.GreaterOrEqual(t, surge, std, "%s/%s", v, s)
		}
	}
}

func TestLookups(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	v, ok := c.VehicleByID("coaster")
	require.True(t, ok)
	assert.Equal(t, 24, v.Capacity)

	_, ok = c.VehicleByID("nope")
	assert.False(t, ok)

	s, ok := c.ServiceByID("makkah-madina")
	require.True(t, ok)
	assert.Equal(t, "intercity", s.Category)
	assert.True(t, s.Popular)

	meeqat := c.ServicesByCategory("meeqat")
	require.Len(t, meeqat, 2)
	assert.Equal(t, "masjid-ayesha", meeqat[0].ID)

	assert.Empty(t, c.ServicesByCategory("helicopter"))
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"no vehicles", `{"vehicles":[]}`},
		{"negative price", `{"vehicles":[{"id":"camry"}],"standard":{"camry":{"hourly":-1}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `{"currency":"SAR","vehicles":[{"id":"camry","capacity":4}],"standard":{"camry":{"hourly":90}},"surge":{"camry":{"hourly":120}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	p, ok := c.Surge.Lookup("camry", "hourly")
	require.True(t, ok)
	assert.EqualValues(t, 120, p)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestFormatPrice(t *testing.T) {
	tests := map[int64]string{
		0:       "0 SAR",
		250:     "250 SAR",
		1250:    "1,250 SAR",
		2400:    "2,400 SAR",
		1234567: "1,234,567 SAR",
		-1500:   "-1,500 SAR",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPrice(in))
	}
}
