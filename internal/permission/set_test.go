package permission

import (
	"math/rand"
	"testing"
)

func TestNormalizeImpliedBits(t *testing.T) {
	cases := []struct {
		name string
		in   Set
		want Set
	}{
		{"delete alone pulls write and read", Set{Delete: true}, Set{Read: true, Write: true, Delete: true}},
		{"write alone pulls read", Set{Write: true}, Set{Read: true, Write: true}},
		{"export stays independent", Set{Export: true}, Set{Export: true}},
		{"valid set unchanged", Set{Read: true, Write: true}, Set{Read: true, Write: true}},
		{"empty stays empty", Set{}, Set{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestToggleCascades(t *testing.T) {
	s := Set{Read: true, Write: true, Delete: true, Export: true}

	s = s.WithWrite(false)
	if s.Delete {
		t.Fatal("revoking write must revoke delete")
	}
	if !s.Read || !s.Export {
		t.Fatalf("revoking write must not touch read or export: %+v", s)
	}

	s = s.WithDelete(true)
	if !s.Write || !s.Read {
		t.Fatalf("granting delete must pull write and read: %+v", s)
	}

	s = s.WithRead(false)
	if s.Write || s.Delete {
		t.Fatalf("revoking read must revoke write and delete: %+v", s)
	}
}

// Any sequence of toggles must leave the set satisfying delete ⇒ write ⇒ read.
func TestToggleSequencesPreserveInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(0x5eed))
	for seq := 0; seq < 500; seq++ {
		s := Set{}
		for step := 0; step < 20; step++ {
			v := rng.Intn(2) == 0
			switch rng.Intn(4) {
			case 0:
				s = s.WithRead(v)
			case 1:
				s = s.WithWrite(v)
			case 2:
				s = s.WithDelete(v)
			case 3:
				s = s.WithExport(v)
			}
			if !s.Valid() {
				t.Fatalf("sequence %d step %d produced invalid set %+v", seq, step, s)
			}
		}
	}
}

func TestSoftDefault(t *testing.T) {
	want := Set{Read: true}
	if got := SoftDefault(); got != want {
		t.Fatalf("SoftDefault() = %+v, want %+v", got, want)
	}
}
