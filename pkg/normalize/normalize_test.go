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

package normalize

import (
	"testing"
)

func TestMoney(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"plain currency", "R$ 1.234,56", 1234.56, true},
		{"no thousands", "R$ 89,90", 89.90, true},
		{"surrounding text", "a partir de R$ 345,00 por adulto", 345.00, true},
		{"no decimals", "1234", 1234, true},
		{"thousands only", "1.234", 1234, true},
		{"empty", "", 0, false},
		{"no digits", "R$ --", 0, false},
		{"whitespace", "   \t ", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Money(tc.input)
			if ok != tc.ok {
				t.Errorf("Money(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if got != tc.expected {
				t.Errorf("Money(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Clock
		ok       bool
	}{
		{"hh:mm", "08:35", Clock{8, 35, 0}, true},
		{"hh:mm:ss", "23:59:59", Clock{23, 59, 59}, true},
		{"h separator", "10h45", Clock{10, 45, 0}, true},
		{"embedded", "Partida às 14:20 do aeroporto", Clock{14, 20, 0}, true},
		{"hour out of range", "25:00", Clock{}, false},
		{"minute out of range", "12:75", Clock{}, false},
		{"empty", "", Clock{}, false},
		{"no time", "sem horário", Clock{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := TimeOfDay(tc.input)
			if ok != tc.ok {
				t.Errorf("TimeOfDay(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if got != tc.expected {
				t.Errorf("TimeOfDay(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestClockString(t *testing.T) {
	c := Clock{Hour: 7, Minute: 5, Second: 3}
	if c.String() != "07:05:03" {
		t.Errorf("Expected 07:05:03, got %v", c.String())
	}
	if c.Seconds() != 7*3600+5*60+3 {
		t.Errorf("Unexpected seconds: %d", c.Seconds())
	}
}

func TestAirline(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"boilerplate suffix", "GOL Linhas Aéreas", "GOL"},
		{"accentless spelling", "Azul linhas aereas", "Azul"},
		{"trailing punctuation", "LATAM - ", "LATAM"},
		{"extra whitespace", "  GOL   Linhas Aéreas  ", "GOL"},
		{"plain name", "LATAM", "LATAM"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Airline(tc.input); got != tc.expected {
				t.Errorf("Airline(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFareClassLetter(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected byte
		ok       bool
	}{
		{"tarifa prefix", "Tarifa A", 'A', true},
		{"tarifa lowercase", "tarifa g", 'G', true},
		{"tarifa embedded", "Inclui bagagem. Tarifa C com assento", 'C', true},
		{"standalone letter", "Classe econômica G", 'G', true},
		{"last standalone wins", "A opção B", 'B', true},
		{"no letter", "sem classe", 0, false},
		{"empty", "", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FareClassLetter(tc.input)
			if ok != tc.ok {
				t.Errorf("FareClassLetter(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if got != tc.expected {
				t.Errorf("FareClassLetter(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
