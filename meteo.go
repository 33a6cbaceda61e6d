package envista

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// Raw time values at or below this are minutes past the hour rather
	// than HHMM encodings. The service uses both encodings in the same
	// field without a discriminator, so the cutoff is the only available
	// heuristic.
	maxMinuteEncodedTime = 60

	maxClockHour   = 23
	maxClockMinute = 59
)

// referenceZone is the civil timezone every station reports in. It is
// fixed for the whole service, not per station.
var referenceZone = mustLoadZone("Asia/Jerusalem")

func mustLoadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// TimeOfDay is a wall-clock time decoded from the "Time" channel.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Reading is one meteorological observation for one station at one
// instant. Numeric fields are nil when the corresponding channel was
// missing from the payload or failed its validity gate, which is distinct
// from a measured zero.
type Reading struct {
	StationID int       `json:"stationId"`
	DateTime  time.Time `json:"datetime"`

	Rain     *float64   `json:"rain,omitempty"`     // rainfall in mm
	WS       *float64   `json:"ws,omitempty"`       // wind speed in m/s
	WSMax    *float64   `json:"wsMax,omitempty"`    // gust wind speed in m/s
	WD       *float64   `json:"wd,omitempty"`       // wind direction in deg
	WDMax    *float64   `json:"wdMax,omitempty"`    // gust wind direction in deg
	STDwd    *float64   `json:"stdWd,omitempty"`    // standard deviation wind direction in deg
	TD       *float64   `json:"td,omitempty"`       // temperature in °C
	TDMax    *float64   `json:"tdMax,omitempty"`    // maximum temperature in °C
	TDMin    *float64   `json:"tdMin,omitempty"`    // minimum temperature in °C
	TG       *float64   `json:"tg,omitempty"`       // grass minimum temperature in °C
	TW       *float64   `json:"tw,omitempty"`       // water temperature in °C
	RH       *float64   `json:"rh,omitempty"`       // relative humidity in %
	WS1mm    *float64   `json:"ws1mm,omitempty"`    // maximum 1 minute wind speed in m/s
	WS10mm   *float64   `json:"ws10mm,omitempty"`   // maximum 10 minutes wind speed in m/s
	Time     *TimeOfDay `json:"time,omitempty"`     // end time of WS10mm
	BP       *float64   `json:"bp,omitempty"`       // pressure at station level in hPa
	Diff     *float64   `json:"diff,omitempty"`     // diffused radiation in w/m²
	Grad     *float64   `json:"grad,omitempty"`     // global radiation in w/m²
	NIP      *float64   `json:"nip,omitempty"`      // direct radiation in w/m²
	Rain1Min *float64   `json:"rain1Min,omitempty"` // rainfall per minute in mm
}

// Value returns the measurement for a numeric variable code, reporting
// presence separately so a measured zero is not mistaken for absence.
// The "Time" channel is not numeric and always reports false.
func (r Reading) Value(code string) (float64, bool) {
	var v *float64
	switch code {
	case "BP":
		v = r.BP
	case "Diff":
		v = r.Diff
	case "Grad":
		v = r.Grad
	case "NIP":
		v = r.NIP
	case "Rain":
		v = r.Rain
	case "Rain_1_min":
		v = r.Rain1Min
	case "RH":
		v = r.RH
	case "STDwd":
		v = r.STDwd
	case "TD":
		v = r.TD
	case "TDmax":
		v = r.TDMax
	case "TDmin":
		v = r.TDMin
	case "TG":
		v = r.TG
	case "TW":
		v = r.TW
	case "WD":
		v = r.WD
	case "WDmax":
		v = r.WDMax
	case "WS":
		v = r.WS
	case "WS1mm":
		v = r.WS1mm
	case "Ws10mm":
		v = r.WS10mm
	case "WSmax":
		v = r.WSMax
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// StationReadings holds the readings of one station in payload order.
type StationReadings struct {
	StationID int       `json:"stationId"`
	Readings  []Reading `json:"readings"`
}

type stationReadingsJSON struct {
	StationID *int          `json:"stationId"`
	Data      []readingJSON `json:"data"`
}

type readingJSON struct {
	DateTime *string       `json:"datetime"`
	Channels []channelJSON `json:"channels"`
}

type channelJSON struct {
	Name   *string `json:"name"`
	Value  any     `json:"value"`
	Valid  *bool   `json:"valid"`
	Status *int    `json:"status"`
}

// decodeChannels gates channel records on valid == true and status == 1
// and collects the surviving values by name. Channels failing the gate are
// dropped entirely, so callers can tell an absent channel from a measured
// zero. Duplicate names resolve last-seen-wins.
func decodeChannels(channels []channelJSON) (map[string]float64, error) {
	values := make(map[string]float64, len(channels))
	for _, ch := range channels {
		if ch.Valid == nil || ch.Status == nil {
			return nil, fmt.Errorf("%w: channel record missing valid or status", ErrMalformedPayload)
		}
		if !*ch.Valid || *ch.Status != 1 {
			continue
		}
		if ch.Name == nil {
			return nil, fmt.Errorf("%w: channel record missing name", ErrMalformedPayload)
		}
		value, err := coerceFloat(ch.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: channel %q: %s", ErrMalformedPayload, *ch.Name, err.Error())
		}
		values[*ch.Name] = value
	}
	return values, nil
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to a number", n)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("value is missing")
	default:
		return 0, fmt.Errorf("cannot coerce %T to a number", v)
	}
}

// parseTimeValue decodes the raw "Time" channel value. Values up to 60
// encode minutes past hour zero, larger values are zero-padded HHMM
// strings. Out-of-range results are treated as absent, not as errors.
func parseTimeValue(raw *float64) *TimeOfDay {
	if raw == nil {
		return nil
	}

	n := int(*raw)
	var hour, minute int
	if n <= maxMinuteEncodedTime {
		hour, minute = 0, n
	} else {
		s := fmt.Sprintf("%04d", n)
		hour, _ = strconv.Atoi(s[:2])
		minute, _ = strconv.Atoi(s[2:])
	}

	if hour < 0 || hour > maxClockHour || minute < 0 || minute > maxClockMinute {
		log.Debug().Float64("value", *raw).Msg("invalid time value in payload")
		return nil
	}

	return &TimeOfDay{Hour: hour, Minute: minute}
}

// normalizeDateTime anchors a reading timestamp to the reference zone.
// Timestamps without an offset are civil times in that zone; timestamps
// with an offset are re-expressed in it. The service reports times as if
// daylight saving was never applied, so when DST is in effect the result
// is shifted forward by exactly one hour. The returned bool tells the
// caller to apply the same shift to the decoded time-of-day.
func normalizeDateTime(value string) (time.Time, bool, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		t = t.In(referenceZone)
	} else {
		t, err = time.ParseInLocation("2006-01-02T15:04:05.999999999", value, referenceZone)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: unparseable datetime %q", ErrMalformedPayload, value)
		}
	}

	if !t.IsDST() {
		return t, false, nil
	}
	return t.Add(time.Hour), true, nil
}

func readingFromJSON(stationID int, raw readingJSON) (Reading, error) {
	if raw.DateTime == nil {
		return Reading{}, fmt.Errorf("%w: reading record missing datetime", ErrMalformedPayload)
	}

	ts, dstShifted, err := normalizeDateTime(*raw.DateTime)
	if err != nil {
		return Reading{}, err
	}

	values, err := decodeChannels(raw.Channels)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{StationID: stationID, DateTime: ts}
	for name, value := range values {
		v := value
		switch name {
		case "BP":
			r.BP = &v
		case "Diff":
			r.Diff = &v
		case "Grad":
			r.Grad = &v
		case "NIP":
			r.NIP = &v
		case "Rain":
			r.Rain = &v
		case "Rain_1_min":
			r.Rain1Min = &v
		case "RH":
			r.RH = &v
		case "STDwd":
			r.STDwd = &v
		case "TD":
			r.TD = &v
		case "TDmax":
			r.TDMax = &v
		case "TDmin":
			r.TDMin = &v
		case "TG":
			r.TG = &v
		case "TW":
			r.TW = &v
		case "Time":
			r.Time = parseTimeValue(&v)
		case "WD":
			r.WD = &v
		case "WDmax":
			r.WDMax = &v
		case "WS":
			r.WS = &v
		case "WS1mm":
			r.WS1mm = &v
		case "Ws10mm":
			r.WS10mm = &v
		case "WSmax":
			r.WSMax = &v
		default:
			// Unknown channels are not an error, the catalog only grows.
		}
	}

	if dstShifted && r.Time != nil {
		r.Time.Hour = (r.Time.Hour + 1) % 24
	}

	return r, nil
}

// StationReadingsFromJSON converts a station data payload into a
// StationReadings. Decoding is all-or-nothing: one malformed record fails
// the whole payload. An absent or empty data array yields an empty, non
// nil Readings slice.
func StationReadingsFromJSON(data []byte) (*StationReadings, error) {
	var raw stationReadingsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}

	if raw.StationID == nil {
		return nil, fmt.Errorf("%w: missing stationId", ErrMalformedPayload)
	}

	readings := make([]Reading, 0, len(raw.Data))
	for _, rec := range raw.Data {
		r, err := readingFromJSON(*raw.StationID, rec)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}

	return &StationReadings{StationID: *raw.StationID, Readings: readings}, nil
}
