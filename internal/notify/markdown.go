package notify

import (
	"regexp"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult contains plain text and message entities
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

var markupRe = regexp.MustCompile("\\*\\*(.+?)\\*\\*|`([^`]+?)`")

// UTF16Len returns the length of s in UTF-16 code units, the unit Telegram
// uses for entity offsets.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// ParseMarkdown strips **bold** and `code` markers and returns the
// equivalent Telegram entities, ordered by offset.
func ParseMarkdown(text string) ParseResult {
	var (
		out      strings.Builder
		entities []tgbotapi.MessageEntity
	)
	rest := text
	for {
		loc := markupRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:loc[0]])

		kind, inner := "bold", ""
		if loc[2] != -1 {
			inner = rest[loc[2]:loc[3]]
		} else {
			kind, inner = "code", rest[loc[4]:loc[5]]
		}
		entities = append(entities, tgbotapi.MessageEntity{
			Type:   kind,
			Offset: UTF16Len(out.String()),
			Length: UTF16Len(inner),
		})
		out.WriteString(inner)
		rest = rest[loc[1]:]
	}

	return ParseResult{
		Text:     strings.TrimRight(out.String(), " \n"),
		Entities: entities,
	}
}
