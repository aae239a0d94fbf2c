package chain

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEvent_DataInt64(t *testing.T) {
	ev := Event{
		Kind: EventProjectCreated,
		Data: map[string]interface{}{
			"int64":  int64(7),
			"int":    8,
			"uint64": uint64(9),
			"float":  float64(10),
			"bigint": big.NewInt(11),
			"string": "12",
		},
	}

	cases := map[string]int64{
		"int64": 7, "int": 8, "uint64": 9, "float": 10, "bigint": 11,
	}
	for key, want := range cases {
		got, err := ev.DataInt64(key)
		if err != nil {
			t.Errorf("DataInt64(%q) failed: %v", key, err)
			continue
		}
		if got != want {
			t.Errorf("DataInt64(%q) = %d, want %d", key, got, want)
		}
	}

	if _, err := ev.DataInt64("string"); err == nil {
		t.Errorf("expected error for string field")
	}
	if _, err := ev.DataInt64("missing"); err == nil {
		t.Errorf("expected error for missing field")
	}
}

func TestEvent_DataAmount(t *testing.T) {
	wei := new(big.Int)
	wei.SetString("1000000000000000000", 10)

	ev := Event{
		Kind: EventContributionMade,
		Data: map[string]interface{}{
			"bigint":  wei,
			"string":  "123.45",
			"decimal": decimal.NewFromInt(500),
			"garbage": "not-a-number",
		},
	}

	got, err := ev.DataAmount("bigint")
	if err != nil {
		t.Fatalf("DataAmount(bigint) failed: %v", err)
	}
	if got.String() != "1000000000000000000" {
		t.Errorf("got %s, want 1000000000000000000", got)
	}

	got, err = ev.DataAmount("string")
	if err != nil {
		t.Fatalf("DataAmount(string) failed: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("123.45")) {
		t.Errorf("got %s, want 123.45", got)
	}

	got, err = ev.DataAmount("decimal")
	if err != nil {
		t.Fatalf("DataAmount(decimal) failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("got %s, want 500", got)
	}

	if _, err := ev.DataAmount("garbage"); err == nil {
		t.Errorf("expected error for unparseable amount")
	}
}

func TestEvent_DataTime(t *testing.T) {
	deadline := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := Event{
		Kind: EventProjectCreated,
		Data: map[string]interface{}{
			"unix":   deadline.Unix(),
			"native": deadline,
		},
	}

	got, err := ev.DataTime("unix")
	if err != nil {
		t.Fatalf("DataTime(unix) failed: %v", err)
	}
	if !got.Equal(deadline) {
		t.Errorf("got %s, want %s", got, deadline)
	}

	got, err = ev.DataTime("native")
	if err != nil {
		t.Fatalf("DataTime(native) failed: %v", err)
	}
	if !got.Equal(deadline) {
		t.Errorf("got %s, want %s", got, deadline)
	}
}

func TestStreamOrder_CreationFirst(t *testing.T) {
	if StreamOrder[0] != EventProjectCreated {
		t.Errorf("project creation stream must sync before dependent streams")
	}
}
