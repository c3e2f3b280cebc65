package manager

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Record format (one profile per line):
//
//	name \t host \t user \t port \t key_file \t note \n
//
// Each field is escaped so the only literal TAB and LF characters on a line are the
// field separators and the terminator:
//
//	\  -> \\
//	TAB -> \t
//	LF  -> \n

const (
	recordFieldCount = 6
	fieldSeparator   = '\t'
)

// ErrMalformedRecord is returned by ParseRecord for lines with fewer than six fields.
var ErrMalformedRecord = errors.New("malformed record")

// EscapeField escapes backslash, tab and newline. All other bytes are copied as-is.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, "\\\t\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeField reverses EscapeField. Unknown escapes and a trailing lone backslash
// are kept literally.
func UnescapeField(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 't':
				b.WriteByte('\t')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// SplitFields splits an escaped line on unescaped tabs in a single left-to-right scan.
// Escape sequences are left in place; callers unescape each field afterwards.
func SplitFields(line string) []string {
	fields := make([]string, 0, recordFieldCount)
	start := 0
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case fieldSeparator:
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	return append(fields, line[start:])
}

// EncodeRecord serializes p to a single newline-terminated line.
func EncodeRecord(p Profile) string {
	fields := [recordFieldCount]string{
		p.Name,
		p.Host,
		p.User,
		strconv.Itoa(p.Port),
		p.KeyFile,
		p.Note,
	}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(fieldSeparator)
		}
		b.WriteString(EscapeField(f))
	}
	b.WriteByte('\n')
	return b.String()
}

// DecodeRecord parses one line produced by EncodeRecord. The trailing line terminator
// is optional. It reports false for lines with fewer than six fields. An unparseable
// port is coerced to DefaultPort; extra fields are ignored.
func DecodeRecord(line string) (Profile, bool) {
	line = strings.TrimSuffix(line, "\n")

	cols := SplitFields(line)
	if len(cols) < recordFieldCount {
		return Profile{}, false
	}
	port, _ := ParsePort(UnescapeField(cols[3]))
	return Profile{
		Name:    UnescapeField(cols[0]),
		Host:    UnescapeField(cols[1]),
		User:    UnescapeField(cols[2]),
		Port:    port,
		KeyFile: UnescapeField(cols[4]),
		Note:    UnescapeField(cols[5]),
	}, true
}

// ParseRecord is DecodeRecord with an error instead of a flag.
func ParseRecord(line string) (Profile, error) {
	p, ok := DecodeRecord(line)
	if !ok {
		return Profile{}, fmt.Errorf("%w: want %d tab-separated fields, got %d",
			ErrMalformedRecord, recordFieldCount, len(SplitFields(strings.TrimSuffix(line, "\n"))))
	}
	return p, nil
}
