package genid

import (
	"testing"

	"trible.dev/space/id"
	"trible.dev/space/value"
)

func TestRoundTrip(t *testing.T) {
	original := id.NewRandom()
	v, err := ToValue(original)
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	got, err := FromValue(v)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if got != original {
		t.Fatalf("round trip mismatch: got %v want %v", got, original)
	}
}

func TestToValueRejectsNilId(t *testing.T) {
	if _, err := ToValue(id.Nil); err == nil {
		t.Fatalf("expected error for nil id")
	}
}

func TestFromValueRejectsNonZeroPrefix(t *testing.T) {
	v, err := ToValue(id.NewRandom())
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	raw := v.Bytes()
	raw[0] = 1
	bad := value.FromRawBytes[GenId](raw)
	if _, err := FromValue(bad); err == nil {
		t.Fatalf("expected error for non-zero prefix")
	}
}
