package plugin

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"mcpi/internal/config"

	"github.com/mark3labs/mcp-go/mcp"
)

// WeatherPlugin is the dynamic-plugin variant: its data is computed per call
// instead of read from a static dataset. Forecasts are seeded from the
// location name and the current day, so repeated calls within a day are
// stable while different locations diverge.
type WeatherPlugin struct {
	name        string
	description string
	category    string
	operations  map[string]bool
	opOrder     []string
	locations   []string
	now         func() time.Time
}

var defaultLocations = []string{"New York", "London", "Tokyo", "Sydney", "Paris"}

// NewWeatherPlugin builds a weather plugin over the default location list.
func NewWeatherPlugin(cap config.CapabilityConfig) *WeatherPlugin {
	return &WeatherPlugin{
		name:        cap.Name,
		description: cap.Description,
		category:    cap.Category,
		operations:  operationSet(cap.Operations),
		opOrder:     cap.Operations,
		locations:   defaultLocations,
		now:         time.Now,
	}
}

func (p *WeatherPlugin) Metadata() Metadata {
	return Metadata{
		Name:        p.name,
		Description: p.description,
		Category:    p.category,
		Operations:  p.opOrder,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"operation": map[string]any{
					"type":        "string",
					"enum":        p.opOrder,
					"description": "Operation to perform",
				},
				"location": map[string]any{
					"type":        "string",
					"description": "Location for the forecast (GET)",
				},
			},
			Required: []string{"operation"},
		},
	}
}

func (p *WeatherPlugin) Execute(operation string, params map[string]any) (any, error) {
	if !p.operations[operation] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation)
	}
	switch operation {
	case "GET":
		location := stringParam(params, "location")
		if location == "" {
			return nil, fmt.Errorf("%w: GET requires a location", ErrInvalidParams)
		}
		if !p.knownLocation(location) {
			return nil, fmt.Errorf("%w: location %q (available: %v)", ErrNotFound, location, p.locations)
		}
		return p.forecast(location), nil
	case "LIST":
		forecasts := make([]any, 0, len(p.locations))
		for _, location := range p.locations {
			forecasts = append(forecasts, p.forecast(location))
		}
		return map[string]any{
			"results":             forecasts,
			"count":               len(forecasts),
			"available_locations": p.locations,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation)
	}
}

func (p *WeatherPlugin) knownLocation(location string) bool {
	for _, l := range p.locations {
		if l == location {
			return true
		}
	}
	return false
}

var conditions = []string{"Sunny", "Cloudy", "Rainy", "Snowy", "Windy", "Foggy"}

var conditionBaseTemp = map[string]int{
	"Sunny":  75,
	"Cloudy": 65,
	"Rainy":  55,
	"Snowy":  30,
	"Windy":  60,
	"Foggy":  55,
}

// forecast generates a three-day forecast for one location.
func (p *WeatherPlugin) forecast(location string) map[string]any {
	now := p.now().UTC()
	rng := rand.New(rand.NewSource(forecastSeed(location, now)))

	condition := conditions[rng.Intn(len(conditions))]
	base := conditionBaseTemp[condition]
	tempMin := base - rng.Intn(10)
	tempMax := base + rng.Intn(10)
	current := tempMin + rng.Intn(tempMax-tempMin+1)

	windSpeed := 2 + rng.Intn(13)
	if condition == "Windy" {
		windSpeed = 15 + rng.Intn(15)
	}

	days := []string{"Today", "Tomorrow", "Day after tomorrow"}
	forecast := make([]map[string]any, 0, len(days))
	for i, day := range days {
		forecast = append(forecast, map[string]any{
			"day":           day,
			"condition":     conditions[rng.Intn(len(conditions))],
			"temp_min":      tempMin - 2*i + rng.Intn(11) - 5,
			"temp_max":      tempMax - 2*i + rng.Intn(11) - 5,
			"precipitation": rng.Intn(100),
		})
	}
	// The leading day always reflects today's headline condition.
	forecast[0]["condition"] = condition

	return map[string]any{
		"location": location,
		"condition": condition,
		"temperature": map[string]any{
			"current": current,
			"min":     tempMin,
			"max":     tempMax,
		},
		"humidity":   30 + rng.Intn(60),
		"wind_speed": windSpeed,
		"updated":    now.Format(time.RFC3339),
		"forecast":   forecast,
	}
}

// forecastSeed keys the generator on location and calendar day.
func forecastSeed(location string, now time.Time) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%s", location, now.Format("2006-01-02"))
	return int64(h.Sum64())
}

func (p *WeatherPlugin) Resources() []ResourceInfo {
	return nil
}

func (p *WeatherPlugin) ReadResource(suffix string) (string, error) {
	return "", fmt.Errorf("%w: resource %q", ErrNotFound, suffix)
}
