package envista

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestStationReadingsFromJSONEmptyData(t *testing.T) {
	is := is.New(t)

	result, err := StationReadingsFromJSON([]byte(`{"stationId": 1, "data": []}`))

	is.NoErr(err)
	is.Equal(result.StationID, 1)
	is.True(result.Readings != nil)
	is.Equal(len(result.Readings), 0)
}

func TestStationReadingsFromJSONAbsentData(t *testing.T) {
	is := is.New(t)

	result, err := StationReadingsFromJSON([]byte(`{"stationId": 1}`))

	is.NoErr(err)
	is.True(result.Readings != nil)
	is.Equal(len(result.Readings), 0)
}

func TestChannelGateDropsInvalidChannels(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [{
		"datetime": "2025-01-15T12:00:00+02:00",
		"channels": [
			{"name": "Rain", "value": 4.2, "valid": false, "status": 1},
			{"name": "TD", "value": -3.5, "valid": true, "status": 0},
			{"name": "WS", "value": 0, "valid": false, "status": 0},
			{"name": "RH", "value": 55, "valid": true, "status": 1}
		]
	}]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	r := result.Readings[0]
	is.Equal(r.Rain, nil)
	is.Equal(r.TD, nil)
	is.Equal(r.WS, nil)
	is.True(r.RH != nil)
	is.Equal(*r.RH, 55.0)
}

func TestZeroValuedChannelsSurviveDecoding(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [{
		"datetime": "2025-01-15T12:00:00",
		"channels": [
			{"name": "Rain", "value": 0, "valid": true, "status": 1},
			{"name": "TD", "value": 0, "valid": true, "status": 1},
			{"name": "Time", "value": 0, "valid": true, "status": 1}
		]
	}]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	r := result.Readings[0]
	is.True(r.Rain != nil)
	is.Equal(*r.Rain, 0.0)
	is.True(r.TD != nil)
	is.Equal(*r.TD, 0.0)
	is.True(r.Time != nil)
	is.Equal(*r.Time, TimeOfDay{Hour: 0, Minute: 0})
}

func TestParseTimeValue(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	// Raw values at or below 60 are read as minutes past hour zero. A
	// true HHMM encoding below 0100 (e.g. 45 meaning 00:45) is
	// indistinguishable from a minute count, so both land on the same
	// result by construction.
	tests := []struct {
		name string
		raw  *float64
		want *TimeOfDay
	}{
		{"absent", nil, nil},
		{"zero", f(0), &TimeOfDay{0, 0}},
		{"minute of hour", f(45), &TimeOfDay{0, 45}},
		{"cutoff value has invalid minute", f(60), nil},
		{"hhmm", f(1305), &TimeOfDay{13, 5}},
		{"hhmm fraction truncates", f(1305.9), &TimeOfDay{13, 5}},
		{"late evening", f(2359), &TimeOfDay{23, 59}},
		{"minute out of range", f(2460), nil},
		{"hour out of range", f(2405), nil},
		{"negative", f(-5), nil},
		{"five digits", f(12345), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(parseTimeValue(tt.raw), tt.want)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	is := is.New(t)
	is.Equal(TimeOfDay{Hour: 7, Minute: 5}.String(), "07:05")
}

func TestNormalizeDateTimeWinter(t *testing.T) {
	is := is.New(t)

	ts, shifted, err := normalizeDateTime("2025-01-15T12:00:00+02:00")

	is.NoErr(err)
	is.True(!shifted)
	is.True(ts.Equal(time.Date(2025, 1, 15, 12, 0, 0, 0, referenceZone)))
}

func TestNormalizeDateTimeNaiveIsCivilTime(t *testing.T) {
	is := is.New(t)

	ts, shifted, err := normalizeDateTime("2025-01-15T12:00:00")

	is.NoErr(err)
	is.True(!shifted)
	is.True(ts.Equal(time.Date(2025, 1, 15, 12, 0, 0, 0, referenceZone)))
}

func TestNormalizeDateTimeSummerShiftsOneHour(t *testing.T) {
	is := is.New(t)

	// Mid July is well inside the Israeli DST interval.
	ts, shifted, err := normalizeDateTime("2025-07-15T12:00:00")

	is.NoErr(err)
	is.True(shifted)
	is.True(ts.Equal(time.Date(2025, 7, 15, 13, 0, 0, 0, referenceZone)))
}

func TestNormalizeDateTimeSummerWithOffset(t *testing.T) {
	is := is.New(t)

	ts, shifted, err := normalizeDateTime("2025-07-15T12:00:00+03:00")

	is.NoErr(err)
	is.True(shifted)
	is.True(ts.Equal(time.Date(2025, 7, 15, 13, 0, 0, 0, referenceZone)))
}

func TestNormalizeDateTimeUnparseable(t *testing.T) {
	is := is.New(t)

	_, _, err := normalizeDateTime("not-a-timestamp")

	is.True(errors.Is(err, ErrMalformedPayload))
}

func TestDSTShiftAppliesToTimeOfDay(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [{
		"datetime": "2025-07-15T12:00:00+03:00",
		"channels": [{"name": "Time", "value": 1305, "valid": true, "status": 1}]
	}]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	r := result.Readings[0]
	is.True(r.DateTime.Equal(time.Date(2025, 7, 15, 13, 0, 0, 0, referenceZone)))
	is.Equal(*r.Time, TimeOfDay{Hour: 14, Minute: 5})
}

func TestDSTShiftWrapsTimeOfDayHour(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [{
		"datetime": "2025-07-15T23:50:00",
		"channels": [{"name": "Time", "value": 2345, "valid": true, "status": 1}]
	}]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	is.Equal(*result.Readings[0].Time, TimeOfDay{Hour: 0, Minute: 45})
}

func TestEndToEndScenario(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId":10,"data":[{"datetime":"2025-01-15T12:00:00+02:00","channels":[{"name":"Time","value":1305,"valid":true,"status":1}]}]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	is.Equal(len(result.Readings), 1)
	r := result.Readings[0]
	is.Equal(*r.Time, TimeOfDay{Hour: 13, Minute: 5})
	is.Equal(r.TD, nil)
	is.Equal(r.Rain, nil)
	is.Equal(r.WS, nil)
	is.Equal(r.BP, nil)
}

func TestStringValuesCoerce(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [{
		"datetime": "2025-01-15T12:00:00+02:00",
		"channels": [{"name": "TD", "value": "21.5", "valid": true, "status": 1}]
	}]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	is.Equal(*result.Readings[0].TD, 21.5)
}

func TestMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing stationId", `{"data": []}`},
		{"missing datetime", `{"stationId": 1, "data": [{"channels": []}]}`},
		{"bad datetime", `{"stationId": 1, "data": [{"datetime": "yesterday", "channels": []}]}`},
		{"non coercible value", `{"stationId": 1, "data": [{"datetime": "2025-01-15T12:00:00", "channels": [{"name": "TD", "value": "warm", "valid": true, "status": 1}]}]}`},
		{"null value on valid channel", `{"stationId": 1, "data": [{"datetime": "2025-01-15T12:00:00", "channels": [{"name": "TD", "value": null, "valid": true, "status": 1}]}]}`},
		{"missing valid flag", `{"stationId": 1, "data": [{"datetime": "2025-01-15T12:00:00", "channels": [{"name": "TD", "value": 1, "status": 1}]}]}`},
		{"missing status", `{"stationId": 1, "data": [{"datetime": "2025-01-15T12:00:00", "channels": [{"name": "TD", "value": 1, "valid": true}]}]}`},
		{"missing name on valid channel", `{"stationId": 1, "data": [{"datetime": "2025-01-15T12:00:00", "channels": [{"value": 1, "valid": true, "status": 1}]}]}`},
		{"not json", `{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			_, err := StationReadingsFromJSON([]byte(tt.payload))
			is.True(errors.Is(err, ErrMalformedPayload))
		})
	}
}

func TestOneMalformedRecordFailsWholeBatch(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 1, "data": [
		{"datetime": "2025-01-15T12:00:00", "channels": [{"name": "TD", "value": 20, "valid": true, "status": 1}]},
		{"datetime": "2025-01-15T12:10:00", "channels": [{"name": "TD", "value": "warm", "valid": true, "status": 1}]}
	]}`

	_, err := StationReadingsFromJSON([]byte(payload))

	is.True(errors.Is(err, ErrMalformedPayload))
}

func TestUnknownChannelsAreIgnored(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [{
		"datetime": "2025-01-15T12:00:00",
		"channels": [
			{"name": "Sonic", "value": 12, "valid": true, "status": 1},
			{"name": "TD", "value": 18, "valid": true, "status": 1}
		]
	}]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	is.Equal(*result.Readings[0].TD, 18.0)
}

func TestReadingOrderMatchesPayload(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [
		{"datetime": "2025-01-15T12:20:00", "channels": []},
		{"datetime": "2025-01-15T12:00:00", "channels": []},
		{"datetime": "2025-01-15T12:10:00", "channels": []}
	]}`

	result, err := StationReadingsFromJSON([]byte(payload))

	is.NoErr(err)
	is.Equal(len(result.Readings), 3)
	is.Equal(result.Readings[0].DateTime.Minute(), 20)
	is.Equal(result.Readings[1].DateTime.Minute(), 0)
	is.Equal(result.Readings[2].DateTime.Minute(), 10)
}

func TestReadingValueAccessor(t *testing.T) {
	is := is.New(t)

	payload := `{"stationId": 10, "data": [{
		"datetime": "2025-01-15T12:00:00",
		"channels": [
			{"name": "TD", "value": 18.5, "valid": true, "status": 1},
			{"name": "Rain", "value": 0, "valid": true, "status": 1},
			{"name": "Time", "value": 1305, "valid": true, "status": 1}
		]
	}]}`

	result, err := StationReadingsFromJSON([]byte(payload))
	is.NoErr(err)

	r := result.Readings[0]

	td, ok := r.Value("TD")
	is.True(ok)
	is.Equal(td, 18.5)

	rain, ok := r.Value("Rain")
	is.True(ok)
	is.Equal(rain, 0.0)

	_, ok = r.Value("WS")
	is.True(!ok)

	_, ok = r.Value("Time")
	is.True(!ok)

	_, ok = r.Value("Bogus")
	is.True(!ok)
}

func TestParsingIsIdempotentAndResultsAreIndependent(t *testing.T) {
	is := is.New(t)

	payload := []byte(`{"stationId": 10, "data": [{
		"datetime": "2025-01-15T12:00:00",
		"channels": [{"name": "TD", "value": 18.5, "valid": true, "status": 1}]
	}]}`)

	a, err := StationReadingsFromJSON(payload)
	is.NoErr(err)
	b, err := StationReadingsFromJSON(payload)
	is.NoErr(err)

	is.Equal(a, b)

	*a.Readings[0].TD = 99.9
	is.Equal(*b.Readings[0].TD, 18.5)
}
