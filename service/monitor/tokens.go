package monitor

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	wordCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	wordToken       = parsly.NewToken(wordCode, "Word", newWordMatcher())
)

func newWordMatcher() parsly.Matcher {
	return &wordMatcher{}
}

// wordMatcher matches a command or argument: letters, digits, '_', '-', '.'.
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		if isWordByte(input[i]) {
			matched++
			continue
		}
		break
	}
	return matched
}

func isWordByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '.':
		return true
	}
	return false
}

// parseLine splits an input line into a command and its arguments.
func parseLine(line string) (string, []string, error) {
	cursor := parsly.NewCursor("", []byte(line), 0)
	matched := cursor.MatchAfterOptional(whitespaceToken, wordToken)
	if matched.Code != wordToken.Code {
		return "", nil, cursor.NewError(wordToken)
	}
	command := matched.Text(cursor)
	var args []string
	for cursor.Pos < cursor.InputSize {
		matched = cursor.MatchAfterOptional(whitespaceToken, wordToken)
		if matched.Code != wordToken.Code {
			if cursor.Pos >= cursor.InputSize {
				break
			}
			return "", nil, cursor.NewError(wordToken)
		}
		args = append(args, matched.Text(cursor))
	}
	return command, args, nil
}
