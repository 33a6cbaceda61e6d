package envista

import "sort"

// Variable describes one of the meteorological metrics collected by the
// Envista stations.
type Variable struct {
	Code        string `json:"code"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

// variables is the static catalog of known channel codes. It is never
// mutated after initialization.
var variables = map[string]Variable{
	"BP":         {Code: "BP", Unit: "hPa", Description: "Average pressure at station level"},
	"Diff":       {Code: "Diff", Unit: "w/m²", Description: "Diffused radiation"},
	"Grad":       {Code: "Grad", Unit: "w/m²", Description: "Global radiation"},
	"NIP":        {Code: "NIP", Unit: "w/m²", Description: "Direct radiation"},
	"Rain":       {Code: "Rain", Unit: "mm", Description: "Rainfall"},
	"Rain_1_min": {Code: "Rain_1_min", Unit: "mm", Description: "Rainfall per minute"},
	"RH":         {Code: "RH", Unit: "%", Description: "Relative humidity"},
	"STDwd":      {Code: "STDwd", Unit: "deg", Description: "Standard deviation wind direction"},
	"TD":         {Code: "TD", Unit: "°C", Description: "Temperature"},
	"TDmax":      {Code: "TDmax", Unit: "°C", Description: "Maximum temperature"},
	"TDmin":      {Code: "TDmin", Unit: "°C", Description: "Minimum temperature"},
	"TG":         {Code: "TG", Unit: "°C", Description: "Grass minimum temperature"},
	"TW":         {Code: "TW", Unit: "°C", Description: "Water temperature"},
	"Time":       {Code: "Time", Unit: "hhmm", Description: "End time of Ws10mm"},
	"WD":         {Code: "WD", Unit: "deg", Description: "Wind direction"},
	"WDmax":      {Code: "WDmax", Unit: "deg", Description: "Gust wind direction"},
	"WS":         {Code: "WS", Unit: "m/s", Description: "Wind speed"},
	"WS1mm":      {Code: "WS1mm", Unit: "m/s", Description: "Maximum 1 minute wind speed"},
	"Ws10mm":     {Code: "Ws10mm", Unit: "m/s", Description: "Maximum 10 minutes wind speed"},
	"WSmax":      {Code: "WSmax", Unit: "m/s", Description: "Gust wind speed"},
}

// Variables returns the descriptors of all known metrics, sorted by code.
func Variables() []Variable {
	out := make([]Variable, 0, len(variables))
	for _, v := range variables {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// DescribeVariable looks up the descriptor for a channel code.
func DescribeVariable(code string) (Variable, bool) {
	v, ok := variables[code]
	return v, ok
}
