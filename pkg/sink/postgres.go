// Copyright 2023 Paolo Fabio Zaino
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sink

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/fare"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/metrics"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/normalize"
)

// Postgres mirrors every record into a relational table, one insert per
// row, so a database can accumulate runs without touching the workbooks.
type Postgres struct {
	db    *sqlx.DB
	table string
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS %s (
	id             BIGSERIAL PRIMARY KEY,
	run_id         TEXT NOT NULL,
	site           TEXT NOT NULL,
	search_date    DATE NOT NULL,
	search_time    TIME NOT NULL,
	route          TEXT NOT NULL,
	advance_days   INTEGER NOT NULL,
	departure_date DATE,
	departure_time TIME,
	arrival_time   TIME,
	fare           NUMERIC(12,2),
	discount       NUMERIC(12,2),
	boarding_tax   NUMERIC(12,2),
	service_tax    NUMERIC(12,2),
	total          NUMERIC(12,2),
	airline        TEXT NOT NULL,
	fare_class     TEXT
)`

// NewPostgres connects, ensures the table exists and returns the sink.
func NewPostgres(dsn, table string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(pgSchema, pq.QuoteIdentifier(table))); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring table %s: %w", table, err)
	}
	return &Postgres{db: db, table: table}, nil
}

// Append inserts one record.
func (s *Postgres) Append(rec fare.FareRecord) error {
	query := fmt.Sprintf(`INSERT INTO %s (
		run_id, site, search_date, search_time, route, advance_days,
		departure_date, departure_time, arrival_time,
		fare, discount, boarding_tax, service_tax, total,
		airline, fare_class
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		pq.QuoteIdentifier(s.table))

	_, err := s.db.Exec(query,
		rec.RunID,
		rec.Site,
		rec.SearchDate,
		rec.SearchTime.String(),
		rec.Route,
		rec.AdvanceDays,
		dateValue(rec.DepartureDate),
		clockText(rec.DepartureTime),
		clockText(rec.ArrivalTime),
		floatValue(rec.Fare),
		floatValue(rec.Discount),
		floatValue(rec.BoardingTax),
		floatValue(rec.ServiceTax),
		floatValue(rec.Total),
		rec.Airline,
		rec.FareClass,
	)
	if err != nil {
		return fmt.Errorf("inserting fare record: %w", err)
	}
	metrics.RowsAppendedTotal.WithLabelValues("postgres").Inc()
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}

func clockText(c *normalize.Clock) interface{} {
	if c == nil {
		return nil
	}
	return c.String()
}

// Multi fans Append out to several sinks, failing on the first error so
// the caller knows which destination fell behind.
type Multi []Sink

func (m Multi) Append(rec fare.FareRecord) error {
	for _, s := range m {
		if err := s.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
