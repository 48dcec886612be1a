package boolean

import (
	"testing"

	"trible.dev/space/value"
)

func TestRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		got, err := FromValue(ToValue(b))
		if err != nil {
			t.Fatalf("FromValue: %v", err)
		}
		if got != b {
			t.Fatalf("round trip mismatch: got %v want %v", got, b)
		}
	}
}

func TestFromValueRejectsGarbage(t *testing.T) {
	var raw [32]byte
	raw[0] = 0x01
	v := value.FromRawBytes[Boolean](raw)
	if _, err := FromValue(v); err == nil {
		t.Fatalf("expected error for neither all-zero nor all-0xFF pattern")
	}
}
