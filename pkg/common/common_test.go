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

package common

import (
	"reflect"
	"testing"
)

func TestSetGetDebugLevel(t *testing.T) {
	old := GetDebugLevel()
	defer SetDebugLevel(old)

	SetDebugLevel(DbgLvlDebug2)
	if GetDebugLevel() != DbgLvlDebug2 {
		t.Errorf("Expected %d, got %d", DbgLvlDebug2, GetDebugLevel())
	}
}

func TestStringToInt(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{"42", 42},
		{" 7 ", 7},
		{"-3", -3},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range testCases {
		if got := StringToInt(tc.input); got != tc.expected {
			t.Errorf("StringToInt(%q) = %d, want %d", tc.input, got, tc.expected)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tc := range testCases {
		if got := SplitCSV(tc.input); !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("SplitCSV(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
