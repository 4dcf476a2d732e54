package status

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Icon is what an image renderer needs to draw a badge.
type Icon struct {
	Path string `json:"path"`
	Alt  string `json:"alt"`
}

const iconDir = "/forum/img/"

func ForumIcon(tag Tag) Icon {
	return icon("forum_", tag)
}

func TopicIcon(tag Tag) Icon {
	return icon("topic_", tag)
}

func icon(prefix string, tag Tag) Icon {
	return Icon{
		Path: iconDir + prefix + string(tag) + ".png",
		Alt:  upperFirst(string(tag)),
	}
}

// upperFirst 只改首字母，open_hot -> Open_hot
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	var b strings.Builder
	b.WriteRune(unicode.ToUpper(r))
	b.WriteString(s[size:])
	return b.String()
}
