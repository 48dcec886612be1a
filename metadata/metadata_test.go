package metadata

import "testing"

func TestWellKnownAttributesAreDistinctAndNonNil(t *testing.T) {
	ids := []struct {
		name string
		id   interface{ IsNil() bool }
	}{
		{"AttrName", AttrName},
		{"AttrValueSchema", AttrValueSchema},
		{"AttrBlobSchema", AttrBlobSchema},
	}
	for _, e := range ids {
		if e.id.IsNil() {
			t.Fatalf("%s is nil", e.name)
		}
	}
	if AttrName == AttrValueSchema || AttrName == AttrBlobSchema || AttrValueSchema == AttrBlobSchema {
		t.Fatalf("expected distinct well-known attribute ids")
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	attrID := AttrName
	attr := Attribute{Name: "name", ValueSchema: [16]byte{1}}
	r.Register(attrID, attr)

	got, ok := r.Lookup(attrID)
	if !ok {
		t.Fatalf("expected Lookup to find registered attribute")
	}
	if got.Name != "name" {
		t.Fatalf("got Name %q, want %q", got.Name, "name")
	}

	if _, ok := r.Lookup(AttrBlobSchema); ok {
		t.Fatalf("expected Lookup miss for unregistered id")
	}
}
