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

// Package sites holds the per-site scraping rules: URL templates, locator
// tables and quirks. Sites are data, not code; the engine consumes whatever
// rules it is handed, so a DOM change on a site means editing YAML, not
// redeploying logic.
package sites

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

//go:embed defaults.yaml
var defaultRulesYAML []byte

// ParseRules parses a YAML file containing site rules and returns a slice
// of SiteRules.
func ParseRules(file string) ([]SiteRules, error) {
	yamlFile, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return parseRulesBytes(yamlFile)
}

func parseRulesBytes(data []byte) ([]SiteRules, error) {
	var rules []SiteRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	for i := range rules {
		if err := validate(&rules[i]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func validate(s *SiteRules) error {
	if strings.TrimSpace(s.Site) == "" {
		return fmt.Errorf("site rules entry with empty site name")
	}
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("site %q: empty url template", s.Site)
	}
	if len(s.Signals) == 0 {
		return fmt.Errorf("site %q: no signal selectors", s.Site)
	}
	for _, f := range s.Fields {
		if len(f.Selectors) == 0 {
			return fmt.Errorf("site %q: field %q has no selectors", s.Site, f.Key)
		}
	}
	return nil
}

// InitializeLibrary parses the rules from the specified file, or the
// embedded defaults when the file name is empty, and returns a RuleEngine.
func InitializeLibrary(rulesFile string) (*RuleEngine, error) {
	var (
		rules []SiteRules
		err   error
	)
	if rulesFile == "" {
		rules, err = parseRulesBytes(defaultRulesYAML)
	} else {
		rules, err = ParseRules(rulesFile)
	}
	if err != nil {
		return nil, err
	}
	return &RuleEngine{SiteRules: rules}, nil
}

// FindSite returns the rules for the named site (case-insensitive).
func (re *RuleEngine) FindSite(name string) (*SiteRules, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range re.SiteRules {
		if strings.ToLower(re.SiteRules[i].Site) == name {
			return &re.SiteRules[i], nil
		}
	}
	return nil, fmt.Errorf("no rules found for site: %s", name)
}

// Names returns every known site name.
func (re *RuleEngine) Names() []string {
	names := make([]string, 0, len(re.SiteRules))
	for i := range re.SiteRules {
		names = append(names, re.SiteRules[i].Site)
	}
	return names
}

// BuildURL renders the site's URL template for one search. The departure
// date is formatted as YYYY-MM-DD, which every supported site accepts.
func (s *SiteRules) BuildURL(origin, destination string, departure time.Time) string {
	r := strings.NewReplacer(
		"{origin}", strings.ToUpper(strings.TrimSpace(origin)),
		"{destination}", strings.ToUpper(strings.TrimSpace(destination)),
		"{date}", departure.Format("2006-01-02"),
	)
	return r.Replace(s.URL)
}

// Field returns the fallback chain for the given canonical field key, or
// nil when the site does not expose it.
func (s *SiteRules) Field(key string) *FieldRule {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			return &s.Fields[i]
		}
	}
	return nil
}
