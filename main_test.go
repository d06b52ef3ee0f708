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

package main

import (
	"reflect"
	"testing"
)

func TestParseDays(t *testing.T) {
	testCases := []struct {
		name   string
		fields []string
		want   []int
	}{
		{"valid", []string{"1", "7", "30"}, []int{1, 7, 30}},
		{"drops garbage", []string{"1", "abc", "7"}, []int{1, 7}},
		{"drops zero and negatives", []string{"0", "-3", "14"}, []int{14}},
		{"all garbage", []string{"x", "y"}, nil},
	}
	for _, tc := range testCases {
		if got := parseDays(tc.fields); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: parseDays(%v) = %v, want %v", tc.name, tc.fields, got, tc.want)
		}
	}
}
