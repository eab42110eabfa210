package plugin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpi/internal/config"
)

func newTestWeatherPlugin(now time.Time) *WeatherPlugin {
	p := NewWeatherPlugin(config.CapabilityConfig{
		Name:        "weather_forecast",
		Description: "Weather forecasts",
		Category:    "environment",
		Operations:  []string{"GET", "LIST"},
	})
	p.now = func() time.Time { return now }
	return p
}

func TestWeatherGetIsStableWithinADay(t *testing.T) {
	morning := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	first, err := newTestWeatherPlugin(morning).Execute("GET", map[string]any{"location": "Tokyo"})
	require.NoError(t, err)
	second, err := newTestWeatherPlugin(evening).Execute("GET", map[string]any{"location": "Tokyo"})
	require.NoError(t, err)

	a := first.(map[string]any)
	b := second.(map[string]any)
	assert.Equal(t, a["condition"], b["condition"])
	assert.Equal(t, a["temperature"], b["temperature"])
	assert.Equal(t, a["forecast"], b["forecast"])
}

func TestWeatherGetShape(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	result, err := newTestWeatherPlugin(now).Execute("GET", map[string]any{"location": "London"})
	require.NoError(t, err)

	m := result.(map[string]any)
	assert.Equal(t, "London", m["location"])
	assert.Contains(t, conditions, m["condition"])

	temps := m["temperature"].(map[string]any)
	assert.LessOrEqual(t, temps["min"].(int), temps["current"].(int))
	assert.LessOrEqual(t, temps["current"].(int), temps["max"].(int))

	forecast := m["forecast"].([]map[string]any)
	require.Len(t, forecast, 3)
	assert.Equal(t, "Today", forecast[0]["day"])
	assert.Equal(t, m["condition"], forecast[0]["condition"])
}

func TestWeatherSeedsDivergeByLocationAndDay(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	assert.NotEqual(t,
		forecastSeed("Tokyo", day),
		forecastSeed("Paris", day))
	assert.NotEqual(t,
		forecastSeed("Tokyo", day),
		forecastSeed("Tokyo", day.AddDate(0, 0, 1)))
}

func TestWeatherGetUnknownLocation(t *testing.T) {
	p := newTestWeatherPlugin(time.Now())

	_, err := p.Execute("GET", map[string]any{"location": "Atlantis"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWeatherGetRequiresLocation(t *testing.T) {
	p := newTestWeatherPlugin(time.Now())

	_, err := p.Execute("GET", nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestWeatherList(t *testing.T) {
	p := newTestWeatherPlugin(time.Now())

	result, err := p.Execute("LIST", nil)
	require.NoError(t, err)

	m := result.(map[string]any)
	assert.Equal(t, len(defaultLocations), m["count"])
	assert.Equal(t, defaultLocations, m["available_locations"])
	assert.Len(t, m["results"].([]any), len(defaultLocations))
}

func TestWeatherRejectsSearch(t *testing.T) {
	p := newTestWeatherPlugin(time.Now())

	_, err := p.Execute("SEARCH", map[string]any{"query": "rain"})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestWeatherHasNoResources(t *testing.T) {
	p := newTestWeatherPlugin(time.Now())

	assert.Empty(t, p.Resources())
	_, err := p.ReadResource("data.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
