package surface

import (
	"encoding/json"
	"testing"
)

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#FF0000":   {255, 0, 0, 255},
		"#00ff0080": {0, 255, 0, 128},
		"#abc":      {0xAA, 0xBB, 0xCC, 255},
		"navy":      {0, 0, 128, 255},
		"Orange":    {255, 165, 0, 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %v want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "nocolor", "#GGGGGG"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestColorJSON(t *testing.T) {
	in := struct {
		C Color `json:"c"`
	}{Color{1, 2, 3, 4}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"c":"#01020304"}` {
		t.Fatalf("unexpected json %s", data)
	}
	in.C = Color{}
	if err := json.Unmarshal(data, &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.C != (Color{1, 2, 3, 4}) {
		t.Fatalf("round trip mismatch: %v", in.C)
	}
}
