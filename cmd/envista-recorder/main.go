package main

import (
	"context"
	"flag"
	"strconv"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/weatheril/envista"
	"github.com/weatheril/envista/internal/recorder"
)

var stationIDs string

func main() {
	flag.StringVar(&stationIDs, "stationIds", "", "comma separated ids of the station(s) to record")
	flag.Parse()

	_ = godotenv.Load()

	serviceName := "envista-recorder"
	serviceVersion := buildinfo.SourceVersion()
	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion)
	defer cleanup()

	imsToken := env.GetVariableOrDie(log, "IMS_TOKEN", "api token for the envista service")
	databaseURL := env.GetVariableOrDie(log, "DATABASE_URL", "postgres connection url")

	if _, err := uuid.Parse(imsToken); err != nil {
		log.Warn().Msg("IMS_TOKEN does not look like a UUID")
	}

	ims, err := envista.New(imsToken, envista.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create envista client")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	var stations []int
	for _, s := range strings.Split(stationIDs, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			log.Warn().Msgf("ignoring invalid station id %q", s)
			continue
		}
		stations = append(stations, id)
	}

	rec := recorder.New(pool, ims, log)
	if err := rec.RecordLatest(ctx, stations); err != nil {
		log.Fatal().Err(err).Msg("failed to record latest readings")
	}
}
