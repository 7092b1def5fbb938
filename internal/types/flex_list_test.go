package types

import (
	"encoding/json"
	"testing"
)

func TestFlexListArray(t *testing.T) {
	var body struct {
		UserIDs FlexList[string] `json:"userIds"`
	}
	if err := json.Unmarshal([]byte(`{"userIds": ["a", "b"]}`), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got := body.UserIDs.Slice()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Unexpected slice: %v", got)
	}
}

func TestFlexListSingleValue(t *testing.T) {
	var body struct {
		UserIDs FlexList[string] `json:"userIds"`
	}
	if err := json.Unmarshal([]byte(`{"userIds": "a"}`), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got := body.UserIDs.Slice()
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("Unexpected slice: %v", got)
	}
}

func TestFlexListEmptyArray(t *testing.T) {
	var body struct {
		UserIDs FlexList[string] `json:"userIds"`
	}
	if err := json.Unmarshal([]byte(`{"userIds": []}`), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(body.UserIDs.Slice()) != 0 {
		t.Errorf("Expected empty slice, got %v", body.UserIDs)
	}
}

func TestFlexListWrongType(t *testing.T) {
	var body struct {
		UserIDs FlexList[string] `json:"userIds"`
	}
	if err := json.Unmarshal([]byte(`{"userIds": 42}`), &body); err == nil {
		t.Error("Expected error for non-string value")
	}
}
