package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/context-broker/pkg/datamodels/fiware"
	"github.com/diwise/context-broker/pkg/ngsild/client"
	ngsierrors "github.com/diwise/context-broker/pkg/ngsild/errors"
	"github.com/diwise/context-broker/pkg/ngsild/types/entities"
	"github.com/diwise/context-broker/pkg/ngsild/types/entities/decorators"
	"github.com/diwise/context-broker/pkg/ngsild/types/properties"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/weatheril/envista"
)

type Application interface {
	CreateWeatherObserved(ctx context.Context, prefixFormat string, stationIDs func() []int) error
}

// StationDataProvider is the part of the envista client the integration
// depends on.
type StationDataProvider interface {
	GetLatestStationData(ctx context.Context, stationID, channelID int) (*envista.StationReadings, error)
	GetStationInfo(ctx context.Context, stationID int) (*envista.StationInfo, error)
}

type app struct {
	cb  client.ContextBrokerClient
	ims StationDataProvider
}

func New(cb client.ContextBrokerClient, ims StationDataProvider) Application {
	return &app{
		cb:  cb,
		ims: ims,
	}
}

func (i app) CreateWeatherObserved(ctx context.Context, prefixFormat string, stationIDs func() []int) error {
	log := logging.GetFromContext(ctx)

	stations := stationIDs()
	if len(stations) == 0 {
		return errors.New("list of stations is empty")
	}

	for _, id := range stations {
		log.Info().Msgf("requesting data from station: %d", id)
		readings, err := i.ims.GetLatestStationData(ctx, id, 0)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch latest station data")
			return err
		}

		if len(readings.Readings) == 0 {
			return fmt.Errorf("station %d returned no readings", id)
		}
		latest := readings.Readings[len(readings.Readings)-1]

		entityID := fmt.Sprintf("%s%s%d", fiware.WeatherObservedIDPrefix, prefixFormat, id)
		attributes := createWeatherObservedAttributes(latest)

		fragment, _ := entities.NewFragment(attributes...)

		headers := map[string][]string{"Content-Type": {"application/ld+json"}}

		log.Info().Msgf("merging entity %s", entityID)
		_, err = i.cb.MergeEntity(ctx, entityID, fragment, headers)
		if err != nil {
			if !errors.Is(err, ngsierrors.ErrNotFound) {
				log.Error().Err(err).Msg("failed to merge entity")
				return err
			}

			log.Info().Msgf("entity with id %s not found, attempting create", entityID)

			station, err := i.ims.GetStationInfo(ctx, id)
			if err != nil {
				log.Error().Err(err).Msg("failed to fetch station info")
				return err
			}

			attributes = append(attributes,
				decorators.Location(station.Location.Latitude, station.Location.Longitude),
				decorators.Name(station.Name),
			)

			entity, err := entities.New(entityID, fiware.WeatherObservedTypeName, attributes...)
			if err != nil {
				log.Error().Err(err).Msg("failed to construct new entity")
				return err
			}

			_, err = i.cb.CreateEntity(ctx, entity, headers)
			if err != nil {
				log.Error().Err(err).Msg("failed to create entity")
				return err
			}
		}

		time.Sleep(1 * time.Second)
	}

	return nil
}

func createWeatherObservedAttributes(r envista.Reading) []entities.EntityDecoratorFunc {
	utcTime := r.DateTime.UTC().Format(time.RFC3339)

	attributes := append(
		make([]entities.EntityDecoratorFunc, 0, 7),
		decorators.DateTime("dateObserved", utcTime),
	)

	observed := properties.ObservedAt(utcTime)
	if r.TD != nil {
		attributes = append(attributes, decorators.Number("temperature", *r.TD, observed))
	}
	if r.RH != nil {
		attributes = append(attributes, decorators.Number("relativeHumidity", *r.RH/100.0, observed))
	}
	if r.WS != nil {
		attributes = append(attributes, decorators.Number("windSpeed", *r.WS, observed))
	}
	if r.WD != nil {
		attributes = append(attributes, decorators.Number("windDirection", *r.WD, observed))
	}
	if r.BP != nil {
		attributes = append(attributes, decorators.Number("atmosphericPressure", *r.BP, observed))
	}
	if r.Rain != nil {
		attributes = append(attributes, decorators.Number("precipitation", *r.Rain, observed))
	}

	return attributes
}
