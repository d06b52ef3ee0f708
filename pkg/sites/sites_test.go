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

package sites

import (
	"testing"
	"time"
)

const goodTestFile = "./test_rules.yaml"

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(goodTestFile)
	if err != nil {
		t.Errorf("ParseRules returned an error: %v", err)
	}
	if len(rules) != 2 {
		t.Errorf("Expected 2 rules, got %d", len(rules))
	}
	if rules[0].Site != "testsite" {
		t.Errorf("Expected testsite, got %v", rules[0].Site)
	}
	if !rules[0].Quirks.SecondPage {
		t.Errorf("Expected second_page quirk to be set")
	}
}

func TestParseRulesInvalidFile(t *testing.T) {
	_, err := ParseRules("./no_such_rules.yaml")
	if err == nil {
		t.Errorf("Expected error, got none")
	}
}

func TestParseRulesValidation(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"missing site name", "- url: \"https://example.com\"\n  signals:\n    - type: css\n      value: \".x\"\n"},
		{"missing url", "- site: broken\n  signals:\n    - type: css\n      value: \".x\"\n"},
		{"missing signals", "- site: broken\n  url: \"https://example.com\"\n"},
		{"field without selectors", "- site: broken\n  url: \"https://example.com\"\n  signals:\n    - type: css\n      value: \".x\"\n  fields:\n    - key: total\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseRulesBytes([]byte(tc.yaml)); err == nil {
				t.Errorf("Expected validation error, got none")
			}
		})
	}
}

func TestInitializeLibraryDefaults(t *testing.T) {
	re, err := InitializeLibrary("")
	if err != nil {
		t.Errorf("InitializeLibrary returned an error: %v", err)
	}

	for _, name := range []string{"flipmilhas", "maxmilhas", "capoviagens", "123milhas"} {
		if _, err := re.FindSite(name); err != nil {
			t.Errorf("Embedded defaults missing site %q: %v", name, err)
		}
	}
}

func TestFindSite(t *testing.T) {
	re, err := InitializeLibrary(goodTestFile)
	if err != nil {
		t.Fatalf("InitializeLibrary returned an error: %v", err)
	}

	s, err := re.FindSite("TestSite")
	if err != nil {
		t.Errorf("FindSite should be case-insensitive: %v", err)
	}
	if s != nil && s.Site != "testsite" {
		t.Errorf("Expected testsite, got %v", s.Site)
	}

	if _, err := re.FindSite("unknown"); err == nil {
		t.Errorf("Expected error for unknown site, got none")
	}
}

func TestBuildURL(t *testing.T) {
	re, _ := InitializeLibrary(goodTestFile)
	s, err := re.FindSite("testsite")
	if err != nil {
		t.Fatalf("FindSite returned an error: %v", err)
	}

	departure := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	got := s.BuildURL(" cgh ", "sdu", departure)
	want := "https://example.com/busca/CGH/SDU/2026-09-15"
	if got != want {
		t.Errorf("BuildURL = %q, want %q", got, want)
	}
}

func TestField(t *testing.T) {
	re, _ := InitializeLibrary(goodTestFile)
	s, _ := re.FindSite("testsite")

	f := s.Field(FieldTotal)
	if f == nil {
		t.Fatalf("Expected a total field rule")
	}
	if len(f.Selectors) != 2 {
		t.Errorf("Expected 2 selectors in the total chain, got %d", len(f.Selectors))
	}
	if f.Selectors[0].Type != SelectorCSS {
		t.Errorf("Expected css first, got %v", f.Selectors[0].Type)
	}

	if s.Field(FieldDiscount) != nil {
		t.Errorf("Expected nil for a field the site does not expose")
	}
}
