package tagbot

import (
	"strings"
	"unicode"
)

// ParseCommand splits a command message into its name, the optional
// "@botname" suffix and the remaining argument text.
// Command format: /command[@botname] free text...
func ParseCommand(text string) (name, mention, args string, ok bool) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	if !strings.HasPrefix(text, "/") {
		return "", "", "", false
	}

	head, rest, _ := strings.Cut(text, " ")
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		// newline or tab right after the command
		rest = head[i:] + " " + rest
		head = head[:i]
	}

	name = strings.TrimPrefix(head, "/")
	if idx := strings.Index(name, "@"); idx > 0 {
		mention = name[idx+1:]
		name = name[:idx]
	}
	if name == "" {
		return "", "", "", false
	}

	return name, mention, strings.TrimSpace(rest), true
}

// FirstArg returns the first whitespace-delimited word of args and the rest.
func FirstArg(args string) (first, rest string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", ""
	}
	first = fields[0]
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args), first))
	return first, rest
}
