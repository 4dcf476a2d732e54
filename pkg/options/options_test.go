package options

import "testing"

func TestBuild(t *testing.T) {
	yn := Build(YesNo, nil, false)
	if label, ok := yn.Lookup(1); !ok || label != "Yes" {
		t.Fatalf("yes/no lookup: %q %v", label, ok)
	}

	levels := Build(AccessLevel, nil, false)
	if len(levels) != 10 {
		t.Fatalf("access levels without guest: %d rows", len(levels))
	}
	if label, _ := levels.Lookup(4); label != "4 (Moderator)" {
		t.Fatalf("level 4 label: %q", label)
	}
	if label, _ := levels.Lookup(5); label != "5" {
		t.Fatalf("level 5 label: %q", label)
	}
	if _, ok := levels.Lookup(0); ok {
		t.Fatalf("guest row must be absent")
	}

	withGuest := Build(AccessLevel, nil, true)
	if withGuest[0].Label != "0 (Guest)" || len(withGuest) != 11 {
		t.Fatalf("guest row: %+v", withGuest[0])
	}

	if Build(Kind(42), nil, false) != nil {
		t.Fatalf("unknown kind should be nil")
	}
}
