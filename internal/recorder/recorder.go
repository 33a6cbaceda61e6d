package recorder

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/weatheril/envista"
)

// ReadingRow is one (station, timestamp, variable) measurement ready for
// insertion.
type ReadingRow struct {
	StationID int
	TS        time.Time
	Variable  string
	Value     float64
	Unit      string
}

// BuildReadingRows flattens readings into per-variable rows. Channels
// absent from a reading produce no row, so a stored zero always means a
// real measurement.
func BuildReadingRows(readings []envista.Reading) []ReadingRow {
	rows := make([]ReadingRow, 0, len(readings))
	for _, r := range readings {
		for _, v := range envista.Variables() {
			value, ok := r.Value(v.Code)
			if !ok {
				continue
			}
			rows = append(rows, ReadingRow{
				StationID: r.StationID,
				TS:        r.DateTime,
				Variable:  v.Code,
				Value:     value,
				Unit:      v.Unit,
			})
		}
	}
	return rows
}

// StationDataProvider is the part of the envista client the recorder
// depends on.
type StationDataProvider interface {
	GetLatestStationData(ctx context.Context, stationID, channelID int) (*envista.StationReadings, error)
}

// Recorder persists station readings into Postgres.
type Recorder struct {
	pool *pgxpool.Pool
	ims  StationDataProvider
	log  zerolog.Logger
}

func New(pool *pgxpool.Pool, ims StationDataProvider, log zerolog.Logger) *Recorder {
	return &Recorder{
		pool: pool,
		ims:  ims,
		log:  log,
	}
}

// RecordLatest fetches the latest readings of each station and upserts
// them, one row per measured variable.
func (r *Recorder) RecordLatest(ctx context.Context, stationIDs []int) error {
	for _, id := range stationIDs {
		readings, err := r.ims.GetLatestStationData(ctx, id, 0)
		if err != nil {
			return err
		}

		rows := BuildReadingRows(readings.Readings)
		if err := insertReadingRows(ctx, r.pool, rows); err != nil {
			return err
		}

		r.log.Info().Int("station", id).Int("rows", len(rows)).Msg("recorded latest readings")
	}
	return nil
}

func insertReadingRows(ctx context.Context, pool *pgxpool.Pool, rows []ReadingRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO readings (station_id, ts, variable, value, unit, ingested_at)
VALUES ($1,$2,$3,$4,$5,NOW())
ON CONFLICT (station_id, ts, variable) DO UPDATE
SET value = EXCLUDED.value,
    unit = EXCLUDED.unit,
    ingested_at = NOW()`

	for _, row := range rows {
		batch.Queue(query, row.StationID, row.TS, row.Variable, row.Value, row.Unit)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}
