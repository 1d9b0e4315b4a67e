package pattern

import "fmt"

// SyntaxError locates the first structural problem in pattern text
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

var closers = map[rune]rune{')': '(', ']': '[', '}': '{', '>': '<'}

// Check does a cheap structural pass over pattern text: quotes must close
// and brackets must balance. Comments outside strings are skipped. It does
// not understand the language itself, so passing Check does not mean the
// engine will accept the code.
func Check(code string) error {
	type open struct {
		r   rune
		off int
	}
	var stack []open
	var quote rune
	quoteAt, depth := 0, 0
	escaped := false
	var comment, prev rune // comment is '/' for a line comment, '*' for a block
	commentAt := 0

	for off, r := range code {
		last := prev
		prev = r
		switch comment {
		case '/':
			if r == '\n' {
				comment = 0
			}
			continue
		case '*':
			// the closing */ can't reuse the opening star
			if r == '/' && last == '*' && off >= commentAt+3 {
				comment = 0
			}
			continue
		}
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				if len(stack) > depth {
					last := stack[len(stack)-1]
					return &SyntaxError{last.off, fmt.Sprintf("unclosed %q", last.r)}
				}
				quote = 0
			case r == '<', r == '[', r == '{', r == '(':
				// mini-notation groups live inside strings
				stack = append(stack, open{r, off})
			case r == '>', r == ']', r == '}', r == ')':
				if len(stack) == depth || stack[len(stack)-1].r != closers[r] {
					return &SyntaxError{off, fmt.Sprintf("unexpected %q", r)}
				}
				stack = stack[:len(stack)-1]
			}
			continue
		}
		switch r {
		case '/':
			if next := off + 1; next < len(code) && (code[next] == '/' || code[next] == '*') {
				comment, commentAt = rune(code[next]), off
			}
		case '"', '\'', '`':
			quote, quoteAt, depth = r, off, len(stack)
		case '(', '[', '{':
			stack = append(stack, open{r, off})
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1].r != closers[r] {
				return &SyntaxError{off, fmt.Sprintf("unexpected %q", r)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if comment == '*' {
		return &SyntaxError{commentAt, "unterminated comment"}
	}
	if quote != 0 {
		return &SyntaxError{quoteAt, "unterminated string"}
	}
	if len(stack) > 0 {
		last := stack[len(stack)-1]
		return &SyntaxError{last.off, fmt.Sprintf("unclosed %q", last.r)}
	}
	return nil
}
