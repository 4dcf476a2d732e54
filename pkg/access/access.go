package access

import (
	"fmt"
	"strconv"
	"strings"

	"forumhelper/pkg/forum"
)

// 权限等级（与论坛后台的 1-10 等级对应）
const (
	LevelGuest     = 0
	LevelMember    = 1
	LevelModerator = 4
	LevelSuperMod  = 7
	LevelAdmin     = 10
)

// 命名等级
const (
	NameMod   = "mod"
	NameSuper = "super"
	NameAdmin = "admin"
)

// Level is a required access level: either a number or one of the names
// mod, super and admin.
type Level struct {
	Name  string
	Value int
}

// Numeric returns a numeric level requirement.
func Numeric(n int) Level { return Level{Value: n} }

var (
	Mod   = Level{Name: NameMod, Value: LevelModerator}
	Super = Level{Name: NameSuper, Value: LevelSuperMod}
	Admin = Level{Name: NameAdmin, Value: LevelAdmin}
)

// ParseLevel accepts "mod", "super", "admin" or an integer.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case NameMod:
		return Mod, nil
	case NameSuper:
		return Super, nil
	case NameAdmin:
		return Admin, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Level{}, fmt.Errorf("invalid access level %q", s)
	}
	return Numeric(n), nil
}

func (l Level) String() string {
	if l.Name != "" {
		return l.Name
	}
	return strconv.Itoa(l.Value)
}

// HighestLevel returns the largest access level the viewer holds, or 0.
func HighestLevel(v *forum.Viewer) int {
	level := LevelGuest
	if v == nil {
		return level
	}
	for _, n := range v.AccessLevels {
		if n > level {
			level = n
		}
	}
	return level
}

// Satisfies reports whether the viewer meets the required level.
//
// Admins and super moderators pass every check, including explicit super
// and admin requirements; the super/admin rejection below only applies to
// everyone else. A mod requirement with a forum id is decided by the
// viewer's moderation grants alone.
func Satisfies(level Level, forumID *int64, v *forum.Viewer) bool {
	if v == nil {
		return level.Name == "" && level.Value <= LevelGuest
	}
	if v.IsSuperMod || v.IsAdmin {
		return true
	}
	if level.Name == NameSuper || level.Name == NameAdmin {
		return false
	}
	if level.Name == NameMod && forumID != nil {
		return v.ModeratesForum(*forumID)
	}
	return HighestLevel(v) >= level.Value
}

// Check 与 Satisfies 相同，但返回错误，便于 handler 直接返回
func Check(level Level, forumID *int64, v *forum.Viewer) error {
	if Satisfies(level, forumID, v) {
		return nil
	}
	d := &DeniedError{Required: level}
	if v != nil {
		d.UserID = v.UserID
	}
	if forumID != nil {
		d.ForumID = *forumID
	}
	return d
}

// DeniedError 表示权限不足
type DeniedError struct {
	UserID   int64
	ForumID  int64
	Required Level
}

func (e *DeniedError) Error() string {
	if e.ForumID != 0 {
		return fmt.Sprintf("insufficient access: need %s on forum %d", e.Required, e.ForumID)
	}
	return fmt.Sprintf("insufficient access: need %s", e.Required)
}
