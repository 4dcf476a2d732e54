// Package options holds the fixed choice lists used by forum admin forms.
package options

import (
	"strconv"

	"forumhelper/pkg/forum"
)

// Kind selects one of the option tables.
type Kind int

const (
	YesNo Kind = iota + 1
	OpenClosed
	Visibility
	AccessLevel
	UserStatus
)

// Option is one selectable value.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Table is an ordered option list.
type Table []Option

// Lookup returns the label for value.
func (t Table) Lookup(value int) (string, bool) {
	for _, o := range t {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// Build returns the table for kind, translated with l. The guest row (0)
// is only included in the access level table when guest is true.
// Unknown kinds yield nil.
func Build(kind Kind, l forum.Localizer, guest bool) Table {
	if l == nil {
		l = forum.Identity
	}
	tr := func(key string) string { return l.T(forum.Domain, key) }

	switch kind {
	case YesNo:
		return Table{{0, tr("No")}, {1, tr("Yes")}}
	case OpenClosed:
		return Table{{0, tr("Closed")}, {1, tr("Open")}}
	case Visibility:
		return Table{{0, tr("Hidden")}, {1, tr("Visible")}}
	case UserStatus:
		return Table{{0, tr("Active")}, {1, tr("Banned")}}
	case AccessLevel:
		named := map[int]string{
			0:  "Guest",
			1:  "Member",
			4:  "Moderator",
			7:  "Super Moderator",
			10: "Administrator",
		}
		start := 1
		if guest {
			start = 0
		}
		t := make(Table, 0, 11)
		for n := start; n <= 10; n++ {
			label := strconv.Itoa(n)
			if name, ok := named[n]; ok {
				label += " (" + tr(name) + ")"
			}
			t = append(t, Option{Value: n, Label: label})
		}
		return t
	}
	return nil
}
