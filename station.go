package envista

import (
	"encoding/json"
	"fmt"
)

// Location is a station position.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Monitor is one monitored condition of a station.
type Monitor struct {
	ChannelID   int    `json:"channelId"`
	Name        string `json:"name"`
	Alias       string `json:"alias"`
	Active      bool   `json:"active"`
	TypeID      int    `json:"typeId"`
	PollutantID int    `json:"pollutantId"`
	Units       string `json:"units"`
	Description string `json:"description"`
}

// StationInfo is the metadata of one station.
type StationInfo struct {
	StationID   int       `json:"stationId"`
	Name        string    `json:"name"`
	ShortName   string    `json:"shortName"`
	StationsTag string    `json:"stationsTag"`
	Location    Location  `json:"location"`
	Timebase    int       `json:"timebase"`
	Active      bool      `json:"active"`
	Owner       string    `json:"owner"`
	RegionID    int       `json:"regionId"`
	// The upstream key really is spelled with a capital S, unlike its
	// siblings.
	StationTarget string    `json:"StationTarget"`
	Monitors      []Monitor `json:"monitors"`
}

// RegionInfo is the metadata of one region and its stations.
type RegionInfo struct {
	RegionID int           `json:"regionId"`
	Name     string        `json:"name"`
	Stations []StationInfo `json:"stations"`
}

type locationJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type monitorJSON struct {
	ChannelID   *int    `json:"channelId"`
	Name        *string `json:"name"`
	Alias       *string `json:"alias"`
	Active      *bool   `json:"active"`
	TypeID      *int    `json:"typeId"`
	PollutantID *int    `json:"pollutantId"`
	Units       *string `json:"units"`
	Description *string `json:"description"`
}

type stationJSON struct {
	StationID     *int          `json:"stationId"`
	Name          *string       `json:"name"`
	ShortName     *string       `json:"shortName"`
	StationsTag   *string       `json:"stationsTag"`
	Location      *locationJSON `json:"location"`
	Timebase      *int          `json:"timebase"`
	Active        *bool         `json:"active"`
	Owner         *string       `json:"owner"`
	RegionID      *int          `json:"regionId"`
	StationTarget *string       `json:"StationTarget"`
	Monitors      []monitorJSON `json:"monitors"`
}

type regionJSON struct {
	RegionID *int          `json:"regionId"`
	Name     *string       `json:"name"`
	Stations []stationJSON `json:"stations"`
}

func monitorFromWire(raw monitorJSON) (Monitor, error) {
	if raw.ChannelID == nil || raw.Name == nil {
		return Monitor{}, fmt.Errorf("%w: monitor record missing channelId or name", ErrMalformedPayload)
	}

	m := Monitor{ChannelID: *raw.ChannelID, Name: *raw.Name}
	if raw.Alias != nil {
		m.Alias = *raw.Alias
	}
	if raw.Active != nil {
		m.Active = *raw.Active
	}
	if raw.TypeID != nil {
		m.TypeID = *raw.TypeID
	}
	if raw.PollutantID != nil {
		m.PollutantID = *raw.PollutantID
	}
	if raw.Units != nil {
		m.Units = *raw.Units
	}
	if raw.Description != nil {
		m.Description = *raw.Description
	}
	return m, nil
}

func stationFromWire(raw stationJSON) (StationInfo, error) {
	if raw.StationID == nil || raw.Name == nil {
		return StationInfo{}, fmt.Errorf("%w: station record missing stationId or name", ErrMalformedPayload)
	}
	if raw.Location == nil || raw.Location.Latitude == nil || raw.Location.Longitude == nil {
		return StationInfo{}, fmt.Errorf("%w: station %d missing location", ErrMalformedPayload, *raw.StationID)
	}
	if raw.RegionID == nil {
		return StationInfo{}, fmt.Errorf("%w: station %d missing regionId", ErrMalformedPayload, *raw.StationID)
	}

	s := StationInfo{
		StationID: *raw.StationID,
		Name:      *raw.Name,
		Location: Location{
			Latitude:  *raw.Location.Latitude,
			Longitude: *raw.Location.Longitude,
		},
		RegionID: *raw.RegionID,
		Monitors: make([]Monitor, 0, len(raw.Monitors)),
	}
	if raw.ShortName != nil {
		s.ShortName = *raw.ShortName
	}
	if raw.StationsTag != nil {
		s.StationsTag = *raw.StationsTag
	}
	if raw.Timebase != nil {
		s.Timebase = *raw.Timebase
	}
	if raw.Active != nil {
		s.Active = *raw.Active
	}
	if raw.Owner != nil {
		s.Owner = *raw.Owner
	}
	if raw.StationTarget != nil {
		s.StationTarget = *raw.StationTarget
	}

	for _, m := range raw.Monitors {
		monitor, err := monitorFromWire(m)
		if err != nil {
			return StationInfo{}, err
		}
		s.Monitors = append(s.Monitors, monitor)
	}

	return s, nil
}

func regionFromWire(raw regionJSON) (RegionInfo, error) {
	if raw.RegionID == nil || raw.Name == nil {
		return RegionInfo{}, fmt.Errorf("%w: region record missing regionId or name", ErrMalformedPayload)
	}

	r := RegionInfo{
		RegionID: *raw.RegionID,
		Name:     *raw.Name,
		Stations: make([]StationInfo, 0, len(raw.Stations)),
	}
	for _, st := range raw.Stations {
		station, err := stationFromWire(st)
		if err != nil {
			return RegionInfo{}, err
		}
		r.Stations = append(r.Stations, station)
	}
	return r, nil
}

// StationInfoFromJSON converts a single station metadata payload.
func StationInfoFromJSON(data []byte) (*StationInfo, error) {
	var raw stationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}
	s, err := stationFromWire(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StationsInfoFromJSON converts a payload holding an array of stations.
func StationsInfoFromJSON(data []byte) ([]StationInfo, error) {
	var raw []stationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}
	stations := make([]StationInfo, 0, len(raw))
	for _, st := range raw {
		station, err := stationFromWire(st)
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, nil
}

// RegionInfoFromJSON converts a single region metadata payload.
func RegionInfoFromJSON(data []byte) (*RegionInfo, error) {
	var raw regionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}
	r, err := regionFromWire(raw)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RegionsInfoFromJSON converts a payload holding an array of regions.
func RegionsInfoFromJSON(data []byte) ([]RegionInfo, error) {
	var raw []regionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}
	regions := make([]RegionInfo, 0, len(raw))
	for _, rg := range raw {
		region, err := regionFromWire(rg)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, nil
}
