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

// The config package contains the configuration file parsing logic.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Default routes and advance-purchase windows, used when neither the
// configuration file nor the TRECHOS_CSV/ADVPS_CSV environment variables
// provide them.
var (
	DefaultRoutes = []string{
		"CGH-SDU", "SDU-CGH",
		"GRU-POA", "POA-GRU",
		"CGH-GIG", "GIG-CGH",
		"BSB-CGH", "CGH-BSB",
		"CGH-REC", "REC-CGH",
		"CGH-SSA", "SSA-CGH",
		"BSB-GIG", "GIG-BSB",
		"GIG-REC", "REC-GIG",
		"GIG-SSA", "SSA-GIG",
		"BSB-SDU", "SDU-BSB",
	}
	DefaultAdvanceDays = []int{1, 3, 7, 14, 21, 30, 60, 90}
)

// fileExists checks if a file exists at the given filename.
// It returns true if the file exists and is not a directory, and false otherwise.
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// interpolateEnvVars replaces occurrences of `${VAR}` or `$VAR` in the input string
// with the value of the VAR environment variable.
func interpolateEnvVars(input string) string {
	envVarPattern := regexp.MustCompile(`\$\{?(\w+)\}?`)
	return envVarPattern.ReplaceAllStringFunc(input, func(varName string) string {
		// Trim ${ and } from varName
		trimmedVarName := varName
		trimmedVarName = strings.TrimPrefix(trimmedVarName, "${")
		trimmedVarName = strings.TrimSuffix(trimmedVarName, "}")

		// Return the environment variable value
		return os.Getenv(trimmedVarName)
	})
}

// recursiveInclude processes the "include" directives in YAML files.
// It supports environment variable interpolation in file paths.
func recursiveInclude(yamlContent string, baseDir string) (string, error) {
	includePattern := regexp.MustCompile(`include:\s*["']?([^"'\s]+)["']?`)
	matches := includePattern.FindAllStringSubmatch(yamlContent, -1)

	for _, match := range matches {
		includePath := interpolateEnvVars(match[1])
		includePath = filepath.Join(baseDir, includePath)

		includedContentBytes, err := os.ReadFile(includePath)
		if err != nil {
			return "", err
		}

		includedContent := string(includedContentBytes)
		if strings.Contains(includedContent, "include:") {
			includedContent, err = recursiveInclude(includedContent, filepath.Dir(includePath))
			if err != nil {
				return "", err
			}
		}

		yamlContent = strings.Replace(yamlContent, match[0], includedContent, 1)
	}

	return yamlContent, nil
}

// getConfigFile reads and unmarshals a configuration file with the given name.
// It checks if the file exists, reads its contents, and unmarshals it into a Config struct.
// If the file does not exist or an error occurs during reading or unmarshaling, an error is returned.
func getConfigFile(confName string) (Config, error) {

	// Check if the configuration file exists
	if !fileExists(confName) {
		return Config{}, fmt.Errorf("file does not exist: %s", confName)
	}

	// Read the configuration file
	data, err := os.ReadFile(confName)
	if err != nil {
		return Config{}, err
	}

	baseDir := filepath.Dir(confName)

	// Interpolate environment variables and process includes
	interpolatedData := interpolateEnvVars(string(data))

	finalData, err := recursiveInclude(interpolatedData, baseDir)
	if err != nil {
		return Config{}, err
	}

	// If the configuration file has been found and is not empty, unmarshal it
	var config Config
	if (finalData != "") && (finalData != "\n") && (finalData != "\r\n") {
		err = yaml.Unmarshal([]byte(finalData), &config)
	}
	return config, err
}

// LoadConfig is responsible for loading the configuration file
// and return the Config struct
func LoadConfig(confName string) (Config, error) {

	// Get the configuration file
	config, err := getConfigFile(confName)

	// Set the OS variable
	config.OS = runtime.GOOS

	applyDefaults(&config)
	applyEnvOverrides(&config)

	return config, err
}

// NewConfig returns a Config built from defaults and environment overrides
// alone, for runs without a configuration file.
func NewConfig() Config {
	config := Config{OS: runtime.GOOS}
	applyDefaults(&config)
	applyEnvOverrides(&config)
	return config
}

func applyDefaults(config *Config) {
	if config.Site == "" {
		config.Site = "flipmilhas"
	}

	if len(config.Routes) == 0 {
		config.Routes = append([]string(nil), DefaultRoutes...)
	}

	if len(config.AdvanceDays) == 0 {
		config.AdvanceDays = append([]int(nil), DefaultAdvanceDays...)
	}

	if config.Selenium.Type == "" {
		config.Selenium.Type = "chrome"
	}

	if config.Selenium.Port == 0 {
		config.Selenium.Port = 4444
	}

	if config.Scraper.Timeout == 0 {
		config.Scraper.Timeout = 20
	}

	if config.Scraper.PollInterval == 0 {
		config.Scraper.PollInterval = 1
	}

	if config.Scraper.FieldRetries == 0 {
		config.Scraper.FieldRetries = 3
	}

	if config.Scraper.FieldRetryDelay == 0 {
		config.Scraper.FieldRetryDelay = 3
	}

	if config.Scraper.CycleRest == 0 {
		config.Scraper.CycleRest = 300
	}

	if config.Scraper.IterationPace == 0 {
		config.Scraper.IterationPace = 1
	}

	if config.Output.Dir == "" {
		config.Output.Dir = "data"
	}

	if config.Output.Sheet == "" {
		config.Output.Sheet = "BUSCAS"
	}

	if config.Output.PgTable == "" {
		config.Output.PgTable = "fare_records"
	}
}

// applyEnvOverrides maps the environment variables used by the scheduled CI
// jobs onto the configuration: TRECHOS_CSV/ADVPS_CSV partition the search
// matrix, GROUP_NAME labels the partition, CHROME_PATH/GOOGLE_CHROME_SHIM
// and CHROMEDRIVER_PATH locate the binaries, and CI/GITHUB_ACTIONS force
// headless mode.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("TRECHOS_CSV"); v != "" {
		var routes []string
		for _, r := range strings.Split(v, ",") {
			r = strings.ToUpper(strings.TrimSpace(r))
			if r != "" {
				routes = append(routes, r)
			}
		}
		if len(routes) != 0 {
			config.Routes = routes
		}
	}

	if v := os.Getenv("ADVPS_CSV"); v != "" {
		var advps []int
		for _, a := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(a))
			if err == nil && n > 0 {
				advps = append(advps, n)
			}
		}
		if len(advps) != 0 {
			config.AdvanceDays = advps
		}
	}

	if v := os.Getenv("GROUP_NAME"); v != "" {
		config.GroupName = v
	}

	if config.Selenium.Path == "" {
		if v := os.Getenv("CHROME_PATH"); v != "" {
			config.Selenium.Path = v
		} else if v := os.Getenv("GOOGLE_CHROME_SHIM"); v != "" {
			config.Selenium.Path = v
		}
	}

	if config.Selenium.DriverPath == "" {
		if v := os.Getenv("CHROMEDRIVER_PATH"); v != "" {
			config.Selenium.DriverPath = v
		}
	}

	if RunningInCI() {
		config.Selenium.Headless = true
	}
}

// RunningInCI reports whether the process is running under a CI scheduler.
func RunningInCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// IsEmpty checks if the given config is empty.
// It returns true if the config is empty, false otherwise.
func IsEmpty(config Config) bool {
	return config.Site == "" && len(config.Routes) == 0 &&
		len(config.AdvanceDays) == 0 && config.Output == Output{} &&
		config.Selenium == Selenium{} && config.Scraper == Scraper{}
}
