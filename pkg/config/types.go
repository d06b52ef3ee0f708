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

package config

// Selenium holds the browser session configuration. Path and DriverPath
// default to the CHROME_PATH/GOOGLE_CHROME_SHIM and CHROMEDRIVER_PATH
// environment variables when left empty.
type Selenium struct {
	Path       string `yaml:"path"`        // Chrome/Chromium binary
	DriverPath string `yaml:"driver_path"` // chromedriver binary
	Type       string `yaml:"type"`        // browser name, chrome by default
	Port       int    `yaml:"port"`
	Host       string `yaml:"host"` // set to attach to a remote Selenium hub
	Headless   bool   `yaml:"headless"`
}

// Scraper holds the wait/extract budgets. All durations are in seconds.
type Scraper struct {
	Timeout         int `yaml:"timeout"`           // poll budget per search
	PollInterval    int `yaml:"poll_interval"`     // tick between signal checks
	NoOffersAfter   int `yaml:"no_offers_after"`   // grace before no-offers checks
	FieldRetries    int `yaml:"field_retries"`     // per-field locator attempts
	FieldRetryDelay int `yaml:"field_retry_delay"` // pause between attempts
	CycleRest       int `yaml:"cycle_rest"`        // pause between full cycles
	IterationPace   int `yaml:"iteration_pace"`    // min seconds between searches
}

// Output holds the sink configuration.
type Output struct {
	Dir     string `yaml:"dir"`
	File    string `yaml:"file"`     // pins a shared workbook; empty means per-run naming
	Sheet   string `yaml:"sheet"`    // sheet name, defaults to BUSCAS
	PgDSN   string `yaml:"pg_dsn"`   // optional Postgres sink
	PgTable string `yaml:"pg_table"` // defaults to fare_records
}

// Config "object" for the scraper process.
type Config struct {
	Site        string   `yaml:"site"`       // site rules entry to scrape
	RulesFile   string   `yaml:"rules_file"` // site rules YAML; empty uses the embedded defaults
	Routes      []string `yaml:"routes"`     // "CGH-SDU" ordered pairs
	AdvanceDays []int    `yaml:"advance_days"`
	Selenium    Selenium `yaml:"selenium"`
	Scraper     Scraper  `yaml:"scraper"`
	Output      Output   `yaml:"output"`
	GroupName   string   `yaml:"group_name"` // CI batch partition label
	DebugLevel  int      `yaml:"debug_level"`
	OS          string   `yaml:"-"`
}
