// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package headermap

import "testing"

func TestInsertionOrderPreserved(t *testing.T) {
	m := New()
	defer m.Dispose()

	_ = m.Set("host", "example.com")
	_ = m.Set("accept", "*/*")
	_ = m.Set("content-type", "text/plain")

	var got []string
	m.Range(func(k, v string) bool {
		got = append(got, k)
		return true
	})
	want := []string{"host", "accept", "content-type"}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("order[%d] = %q, want %q", i, got[i], k)
		}
	}
}

func TestInsertRejectsDuplicate(t *testing.T) {
	m := New()
	defer m.Dispose()

	if err := m.Insert("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := m.Insert("a", "2"); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestSetUpserts(t *testing.T) {
	m := New()
	defer m.Dispose()

	_ = m.Set("a", "1")
	_ = m.Set("a", "2")
	v, ok := m.Get("a")
	if !ok || v != "2" {
		t.Fatalf("got %q, %v", v, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("len = %d", m.Len())
	}
}

func TestRemove(t *testing.T) {
	m := New()
	defer m.Dispose()

	_ = m.Set("a", "1")
	_ = m.Set("b", "2")
	m.Remove("a")
	if _, ok := m.Get("a"); ok {
		t.Fatal("a should be removed")
	}
	if v, _ := m.Get("b"); v != "2" {
		t.Fatal("b should survive removal of a")
	}
}

func TestUseAfterDisposePanics(t *testing.T) {
	m := New()
	m.Dispose()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = m.Set("a", "1")
}

func TestGrowthCapEnforced(t *testing.T) {
	m := New()
	defer m.Dispose()

	for i := 0; i < MaxEntries; i++ {
		if err := m.Set("k"+itoa(i), "v"); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if err := m.Set("overflow", "v"); err == nil {
		t.Fatal("expected ErrHeadersTooLarge beyond the cap")
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b []byte
	for i > 0 {
		b = append([]byte{byte('0' + i%10)}, b...)
		i /= 10
	}
	return string(b)
}
