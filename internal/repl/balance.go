package repl

// balance tracks open delimiters across buffered lines. String literals end
// at the line break, so only block comments carry over.
type balance struct {
	braces         int
	parens         int
	inBlockComment bool
}

func (b *balance) open() bool {
	return b.braces > 0 || b.parens > 0 || b.inBlockComment
}

func (b *balance) update(line string) {
	var quote byte
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]

		if b.inBlockComment {
			if ch == '*' && i+1 < len(line) && line[i+1] == '/' {
				b.inBlockComment = false
				i++
			}
			continue
		}

		if quote != 0 {
			if escaped {
				escaped = false
				continue
			}
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}

		if ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return
		}
		if ch == '/' && i+1 < len(line) && line[i+1] == '*' {
			b.inBlockComment = true
			i++
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch
		case '{':
			b.braces++
		case '}':
			if b.braces > 0 {
				b.braces--
			}
		case '(':
			b.parens++
		case ')':
			if b.parens > 0 {
				b.parens--
			}
		}
	}
}
