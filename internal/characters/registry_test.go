/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package characters

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddDeduplicatesIgnoringCase(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Add("Alex"))
	require.False(t, r.Add("ALEX"))
	require.False(t, r.Add("  alex "))
	require.False(t, r.Add("   "))
	require.Equal(t, []string{"ALEX"}, r.List())
	require.True(t, r.Contains("aLeX"))
}

func TestInsertionOrderIsKept(t *testing.T) {
	r := NewRegistry("Jessie", "alex", "JESSIE", "Charlie")
	require.Equal(t, []string{"JESSIE", "ALEX", "CHARLIE"}, r.List())
	require.Equal(t, 3, r.Len())
}

func TestRemoveIsExact(t *testing.T) {
	r := NewRegistry("ALEX", "BETH")
	require.False(t, r.Remove("alex"))
	require.True(t, r.Remove("ALEX"))
	require.False(t, r.Remove("ALEX"))
	require.Equal(t, []string{"BETH"}, r.List())
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	r := NewRegistry("ALEX")
	var got [][]string
	r.Subscribe(func(names []string) { got = append(got, names) })
	r.Add("beth")
	r.Add("Beth")
	r.Remove("ALEX")
	r.Remove("NOBODY")
	require.Equal(t, [][]string{{"ALEX"}, {"ALEX", "BETH"}, {"BETH"}}, got)
}

func TestListReturnsCopy(t *testing.T) {
	r := NewRegistry("ALEX")
	l := r.List()
	l[0] = "MUTATED"
	require.Equal(t, []string{"ALEX"}, r.List())
}

func TestCompleteKeepsRegistryOrder(t *testing.T) {
	r := NewRegistry("GUARD 10", "GUARD 2", "GRACE", "ALEX", "GUARD 1")
	require.Equal(t, []string{"GUARD 10", "GUARD 2", "GUARD 1"}, r.Complete("gua"))
	require.Equal(t, []string{"GUARD 10", "GUARD 2", "GRACE", "GUARD 1"}, r.Complete("g"))
	require.Nil(t, r.Complete(""))
	require.Empty(t, r.Complete("z"))
}

func TestSortedUsesNaturalOrder(t *testing.T) {
	r := NewRegistry("GUARD 10", "GUARD 2", "ALEX", "GUARD 1")
	require.Equal(t, []string{"ALEX", "GUARD 1", "GUARD 2", "GUARD 10"}, r.Sorted())
	require.Equal(t, []string{"GUARD 10", "GUARD 2", "ALEX", "GUARD 1"}, r.List())
}

func TestConcurrentAdds(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add("alex")
			r.Add("beth")
		}()
	}
	wg.Wait()
	require.Equal(t, 2, r.Len())
}

func TestPrefixAt(t *testing.T) {
	require.Equal(t, "AL", PrefixAt("AL", 2))
	require.Equal(t, "BE", PrefixAt("ALEX, BE", 8))
	require.Equal(t, "", PrefixAt("ALEX ", 5))
	require.Equal(t, "LE", PrefixAt("(LE", 3))
	require.Equal(t, "A", PrefixAt("ALEX", 1))
}

func TestSuffix(t *testing.T) {
	require.Equal(t, "EX", Suffix("ALEX", "al"))
	require.Equal(t, "", Suffix("ALEX", "ALEX"))
	require.Equal(t, "", Suffix("ALEX", "BE"))
	require.Equal(t, "", Suffix("AL", "ALEX"))
	require.True(t, EndsWord(':'))
	require.False(t, EndsWord('A'))
}
