package main

import (
	"context"
	"flag"
	"strconv"
	"strings"

	"github.com/diwise/context-broker/pkg/ngsild/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/google/uuid"

	"github.com/weatheril/envista"
	"github.com/weatheril/envista/internal/application"
)

var stationIDs string

func main() {
	flag.StringVar(&stationIDs, "stationIds", "", "comma separated ids of the station(s) to retrieve data from")
	flag.Parse()

	serviceName := "integration-envista"
	serviceVersion := buildinfo.SourceVersion()
	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion)
	defer cleanup()

	imsToken := env.GetVariableOrDie(log, "IMS_TOKEN", "api token for the envista service")
	ctxBrokerURL := env.GetVariableOrDie(log, "CONTEXT_BROKER_URL", "url to context broker")

	if _, err := uuid.Parse(imsToken); err != nil {
		log.Warn().Msg("IMS_TOKEN does not look like a UUID")
	}

	ims, err := envista.New(imsToken, envista.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create envista client")
	}

	ctxBroker := client.NewContextBrokerClient(ctxBrokerURL, client.Debug("true"))

	app := application.New(ctxBroker, ims)

	err = app.CreateWeatherObserved(ctx, "il:", func() []int {
		var stations []int

		for _, s := range strings.Split(stationIDs, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				log.Warn().Msgf("ignoring invalid station id %q", s)
				continue
			}
			stations = append(stations, id)
		}

		return stations
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create weather observed entities")
	}
}
