package access

import (
	"errors"
	"testing"

	"forumhelper/pkg/forum"
)

func id(n int64) *int64 { return &n }

func TestHighestLevel(t *testing.T) {
	if got := HighestLevel(&forum.Viewer{}); got != 0 {
		t.Fatalf("empty: got %d", got)
	}
	if got := HighestLevel(nil); got != 0 {
		t.Fatalf("nil viewer: got %d", got)
	}
	if got := HighestLevel(&forum.Viewer{AccessLevels: []int{2, 5, 3}}); got != 5 {
		t.Fatalf("{2,5,3}: got %d", got)
	}
}

func TestSatisfies(t *testing.T) {
	member := &forum.Viewer{UserID: 1, AccessLevels: []int{1}}
	highNoGrant := &forum.Viewer{UserID: 2, AccessLevels: []int{9}}
	modOf7 := &forum.Viewer{UserID: 3, AccessLevels: []int{1}, Moderates: []int64{7}}
	admin := &forum.Viewer{UserID: 4, IsAdmin: true}
	super := &forum.Viewer{UserID: 5, IsSuperMod: true}

	cases := []struct {
		name  string
		level Level
		forum *int64
		v     *forum.Viewer
		want  bool
	}{
		{"member meets 1", Numeric(1), nil, member, true},
		{"member fails 2", Numeric(2), nil, member, false},
		{"mod grant on forum", Mod, id(7), modOf7, true},
		{"mod grant other forum", Mod, id(8), modOf7, false},
		{"high level without grant", Mod, id(7), highNoGrant, false},
		{"mod without forum uses ladder", Mod, nil, highNoGrant, true},
		{"mod without forum low level", Mod, nil, modOf7, false},
		{"super rejected for non-admin", Super, nil, highNoGrant, false},
		{"admin rejected for non-admin", Admin, nil, &forum.Viewer{AccessLevels: []int{10}}, false},
		{"admin override numeric", Numeric(10), nil, admin, true},
		{"admin override explicit admin", Admin, nil, admin, true},
		{"super mod override explicit admin", Admin, nil, super, true},
		{"super mod override mod on forum", Mod, id(99), super, true},
		{"nil viewer guest level", Numeric(0), nil, nil, true},
		{"nil viewer member level", Numeric(1), nil, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Satisfies(tc.level, tc.forum, tc.v); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	err := Check(Mod, id(3), &forum.Viewer{UserID: 11})
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
	if denied.UserID != 11 || denied.ForumID != 3 || denied.Required != Mod {
		t.Fatalf("unexpected error fields: %+v", denied)
	}
	if err := Check(Numeric(0), nil, &forum.Viewer{}); err != nil {
		t.Fatalf("guest level: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"mod": Mod, " Super ": Super, "ADMIN": Admin, "4": Numeric(4)}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %+v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("owner"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
