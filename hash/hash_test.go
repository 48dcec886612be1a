package hash

import "testing"

func TestProtocolsAreDeterministic(t *testing.T) {
	protocols := []Protocol{SHA3256{}, Blake3{}}
	for _, p := range protocols {
		a := p.Sum([]byte("tribles"))
		b := p.Sum([]byte("tribles"))
		if a != b {
			t.Fatalf("%s: Sum not deterministic", p.Name())
		}
		c := p.Sum([]byte("tribles!"))
		if a == c {
			t.Fatalf("%s: Sum collided on different input", p.Name())
		}
	}
}

func TestProtocolsDisagree(t *testing.T) {
	a := SHA3256{}.Sum([]byte("x"))
	b := Blake3{}.Sum([]byte("x"))
	if a == b {
		t.Fatalf("different hash protocols produced identical digests (unexpected)")
	}
}
