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

// Package normalize converts the raw text scraped off the fare pages into
// typed values. Every function here is total: any input, including the
// empty string, produces a value or a false ok flag, never a panic.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	moneyKeepPattern = regexp.MustCompile(`[^0-9,.]`)
	timePattern      = regexp.MustCompile(`(\d{1,2})[:h](\d{2})(?:[:](\d{2}))?`)
	airlinePattern   = regexp.MustCompile(`(?i)\blinhas\s+a[eé]reas\b(?:\s+(s\.?\s*/?\s*a\.?))?`)
	spacesPattern    = regexp.MustCompile(`\s{2,}`)
	fareAfterPattern = regexp.MustCompile(`(?i)tarifa\s*([A-Z])\b`)
	standalonePat    = regexp.MustCompile(`\b([A-Z])\b`)
)

// Clock is a wall-clock time of day without a date attached.
type Clock struct {
	Hour, Minute, Second int
}

// String renders the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Seconds returns the clock as seconds since midnight, the fraction of a
// day Excel expects for time cells.
func (c Clock) Seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// Money parses a Brazilian-locale currency string ("R$ 1.234,56") into a
// value rounded to two decimals. Everything outside [0-9,.] is stripped,
// '.' is the thousands separator and ',' the decimal separator.
func Money(text string) (float64, bool) {
	s := moneyKeepPattern.ReplaceAllString(text, "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return Round2(v), true
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TimeOfDay extracts the first HH:MM or HH:MM:SS occurrence in the text.
// The sites render times with ':' or 'h' between hour and minute; missing
// seconds default to zero. Out-of-range components fail the parse.
func TimeOfDay(text string) (Clock, bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Clock{}, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	if hh > 23 || mm > 59 || ss > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hh, Minute: mm, Second: ss}, true
}

// Airline cleans a carrier name scraped from a result card: drops the
// "linhas aéreas" boilerplate and trailing legal-entity suffix, collapses
// whitespace and trims stray punctuation.
func Airline(text string) string {
	s := strings.TrimSpace(text)
	s = airlinePattern.ReplaceAllString(s, "")
	s = spacesPattern.ReplaceAllString(s, " ")
	return strings.Trim(s, " -–,.;:/\t\n\r")
}

// FareClassLetter finds the fare-class letter in a card description:
// the uppercase letter right after the word "tarifa", or failing that the
// last standalone uppercase letter in the text.
func FareClassLetter(text string) (byte, bool) {
	t := strings.TrimSpace(spacesPattern.ReplaceAllString(
		strings.ReplaceAll(strings.ReplaceAll(text, "\n", " "), "\t", " "), " "))
	if t == "" {
		return 0, false
	}
	if m := fareAfterPattern.FindStringSubmatch(t); m != nil {
		return upperLetter(m[1][0]), true
	}
	all := standalonePat.FindAllStringSubmatch(t, -1)
	if len(all) == 0 {
		return 0, false
	}
	return all[len(all)-1][1][0], true
}

func upperLetter(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
