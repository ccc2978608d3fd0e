package llm

import (
	"regexp"
	"strings"
)

// Price is USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Cost is the USD charge for the given token counts.
func (p Price) Cost(input, output int) float64 {
	return (float64(input)*p.Input + float64(output)*p.Output) / 1e6
}

// prices covers the default models and their usual alternatives. Keys are
// model IDs without a date suffix or OpenRouter vendor prefix.
var prices = map[string]Price{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4-1":   {15, 75},
	"gpt-4o":            {2.5, 10},
	"gpt-4o-mini":       {0.15, 0.6},
	"gpt-4.1":           {2, 8},
	"gpt-4.1-mini":      {0.4, 1.6},
	"gpt-4.1-nano":      {0.1, 0.4},
	"gpt-5":             {1.25, 10},
	"gpt-5-mini":        {0.25, 2},
	"o4-mini":           {1.1, 4.4},
	"gemini-2.0-flash":  {0.1, 0.4},
	"gemini-2.5-flash":  {0.3, 2.5},
	"gemini-2.5-pro":    {1.25, 10},
}

// snapshot matches a dated model suffix such as -20251001 or -2024-07-18.
var snapshot = regexp.MustCompile(`-\d{4}-?\d{2}-?\d{2}$`)

// PriceOf looks up model, ignoring an OpenRouter "vendor/" prefix and a
// snapshot date.
func PriceOf(model string) (Price, bool) {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	p, ok := prices[snapshot.ReplaceAllString(model, "")]
	return p, ok
}
