package chain

import (
	"reflect"
	"testing"
)

func TestNormalizeEventData_LegacyAliases(t *testing.T) {
	got := NormalizeEventData(map[string]interface{}{
		"projectId":    int64(1),
		"targetAmount": "1000",
		"endTime":      int64(4102444800),
		"funder":       "0xBacker",
		"owner":        "0xCreator",
	})

	want := map[string]interface{}{
		"projectId":   int64(1),
		"goal":        "1000",
		"deadline":    int64(4102444800),
		"contributor": "0xBacker",
		"creator":     "0xCreator",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeEventData_CanonicalWins(t *testing.T) {
	// 新旧字段同时出现时规范字段优先
	got := NormalizeEventData(map[string]interface{}{
		"goal":         "2000",
		"targetAmount": "1000",
	})

	if got["goal"] != "2000" {
		t.Errorf("canonical field overwritten: goal = %v", got["goal"])
	}
	if _, exists := got["targetAmount"]; exists {
		t.Errorf("legacy field leaked through normalization")
	}
}

func TestNormalizeEventData_Nil(t *testing.T) {
	got := NormalizeEventData(nil)
	if got == nil {
		t.Fatalf("got nil, want empty map")
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want empty map", got)
	}
}
