// Package chat connects to Twitch chat and reports the emotes used in
// messages of the joined channels.
package chat

import (
	"errors"
	"strings"
)

// ErrMalformed is returned for lines that are not valid IRC messages.
var ErrMalformed = errors.New("malformed IRC line")

// Message is one IRC line with its IRCv3 tags.
type Message struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

// ParseMessage parses a single IRC line without its trailing CRLF.
func ParseMessage(line string) (Message, error) {
	var msg Message
	line = strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(line, "@") {
		tags, rest, ok := strings.Cut(line[1:], " ")
		if !ok {
			return Message{}, ErrMalformed
		}
		msg.Tags = parseTags(tags)
		line = strings.TrimLeft(rest, " ")
	}

	if strings.HasPrefix(line, ":") {
		prefix, rest, ok := strings.Cut(line[1:], " ")
		if !ok {
			return Message{}, ErrMalformed
		}
		msg.Prefix = prefix
		line = strings.TrimLeft(rest, " ")
	}

	for line != "" {
		if strings.HasPrefix(line, ":") {
			msg.Params = append(msg.Params, line[1:])
			break
		}
		param, rest, _ := strings.Cut(line, " ")
		if msg.Command == "" {
			msg.Command = strings.ToUpper(param)
		} else {
			msg.Params = append(msg.Params, param)
		}
		line = strings.TrimLeft(rest, " ")
	}

	if msg.Command == "" {
		return Message{}, ErrMalformed
	}
	return msg, nil
}

func parseTags(raw string) map[string]string {
	tags := make(map[string]string)
	for _, tag := range strings.Split(raw, ";") {
		if tag == "" {
			continue
		}
		key, value, _ := strings.Cut(tag, "=")
		tags[key] = unescapeTag(value)
	}
	return tags
}

var tagEscapes = strings.NewReplacer(
	`\:`, ";",
	`\s`, " ",
	`\\`, `\`,
	`\r`, "\r",
	`\n`, "\n",
)

func unescapeTag(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	return tagEscapes.Replace(value)
}

// Nick returns the nickname part of the prefix.
func (m Message) Nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	return nick
}

// Trailing returns the last parameter, which carries the text of PRIVMSG lines.
func (m Message) Trailing() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

// Channel returns the channel a PRIVMSG or JOIN was sent to, without the '#'.
func (m Message) Channel() string {
	if len(m.Params) == 0 {
		return ""
	}
	return strings.TrimPrefix(m.Params[0], "#")
}
