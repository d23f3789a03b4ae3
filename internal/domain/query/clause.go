// Package query is a typed query builder rendered to RediSearch syntax.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type op int

const (
	opAll op = iota
	opMatch
	opPrefix
	opRange
	opText
	opRaw
	opAnd
	opOr
	opNot
)

// Clause is a node of a query tree. The zero value matches everything.
type Clause struct {
	op       op
	field    string
	fields   []string
	values   []string
	from, to int64
	children []Clause
}

// All matches every indexed node.
func All() Clause { return Clause{op: opAll} }

// Match is an exact tag match on any of values.
func Match(field string, values ...string) Clause {
	return Clause{op: opMatch, field: field, values: values}
}

// Prefix is a tag prefix match.
func Prefix(field, prefix string) Clause {
	return Clause{op: opPrefix, field: field, values: []string{prefix}}
}

// Between is a numeric range with both bounds inclusive.
func Between(field string, from, to int64) Clause {
	return Clause{op: opRange, field: field, from: from, to: to}
}

// Text is a full-text search for terms across fields.
func Text(fields []string, terms string) Clause {
	return Clause{op: opText, fields: fields, values: []string{terms}}
}

// Raw embeds an already-rendered query, grouped in parentheses.
func Raw(q string) Clause {
	return Clause{op: opRaw, values: []string{q}}
}

// And is the conjunction of clauses. An empty And matches everything.
func And(cs ...Clause) Clause { return Clause{op: opAnd, children: cs} }

// Or is the disjunction of clauses.
func Or(cs ...Clause) Clause { return Clause{op: opOr, children: cs} }

// Not excludes nodes matching c.
func Not(c Clause) Clause { return Clause{op: opNot, children: []Clause{c}} }

// IsAll reports whether the clause matches everything.
func (c Clause) IsAll() bool {
	return c.op == opAll || (c.op == opAnd && len(c.children) == 0)
}

// Validate checks that every leaf has a field and a value.
func (c Clause) Validate() error {
	switch c.op {
	case opAll:
		return nil
	case opMatch, opPrefix:
		if c.field == "" {
			return errors.New("query field is required")
		}
		if len(c.values) == 0 {
			return fmt.Errorf("value is required for field %q", c.field)
		}
		for _, v := range c.values {
			if v == "" {
				return fmt.Errorf("empty value for field %q", c.field)
			}
		}
	case opRange:
		if c.field == "" {
			return errors.New("query field is required")
		}
		if c.from > c.to {
			return fmt.Errorf("invalid range for field %q", c.field)
		}
	case opText:
		if len(c.fields) == 0 {
			return errors.New("text query needs at least one field")
		}
		if strings.TrimSpace(c.values[0]) == "" {
			return errors.New("text query is empty")
		}
	case opRaw:
		if strings.TrimSpace(c.values[0]) == "" {
			return errors.New("query is empty")
		}
		if err := balanced(c.values[0]); err != nil {
			return fmt.Errorf("query %q: %w", c.values[0], err)
		}
	case opOr:
		if len(c.children) == 0 {
			return errors.New("empty disjunction")
		}
	}
	for _, ch := range c.children {
		if err := ch.Validate(); err != nil {
			return err
		}
	}
	return nil
}

var closers = map[rune]rune{'(': ')', '{': '}', '[': ']'}

// balanced checks that every group opened in q is closed in order, so a raw
// query cannot leave the parentheses it is rendered in. Escaped characters
// and quoted strings are skipped.
func balanced(q string) error {
	var stack []rune
	escaped, quoted := false, false
	for _, r := range q {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quoted:
			quoted = r != '"'
		case r == '"':
			quoted = true
		case closers[r] != 0:
			stack = append(stack, closers[r])
		case r == ')' || r == '}' || r == ']':
			if len(stack) == 0 || stack[len(stack)-1] != r {
				return fmt.Errorf("unexpected %q", r)
			}
			stack = stack[:len(stack)-1]
		}
	}
	switch {
	case escaped:
		return errors.New("dangling escape")
	case quoted:
		return errors.New("unterminated quote")
	case len(stack) > 0:
		return fmt.Errorf("missing %q", stack[len(stack)-1])
	}
	return nil
}

// Render serializes the clause tree. All escaping happens here.
func Render(c Clause) string {
	var b strings.Builder
	c.render(&b, false)
	return b.String()
}

func (c Clause) String() string { return Render(c) }

func (c Clause) render(b *strings.Builder, nested bool) {
	switch c.op {
	case opAll:
		b.WriteString("*")
	case opMatch:
		escaped := make([]string, len(c.values))
		for i, v := range c.values {
			escaped[i] = tagEscaper.Replace(v)
		}
		fmt.Fprintf(b, "@%s:{%s}", c.field, strings.Join(escaped, " | "))
	case opPrefix:
		fmt.Fprintf(b, "@%s:{%s*}", c.field, tagEscaper.Replace(c.values[0]))
	case opRange:
		fmt.Fprintf(b, "@%s:[%s %s]", c.field, strconv.FormatInt(c.from, 10), strconv.FormatInt(c.to, 10))
	case opText:
		fmt.Fprintf(b, "@%s:(%s)", strings.Join(c.fields, "|"), queryEscaper.Replace(c.values[0]))
	case opRaw:
		b.WriteString("(" + c.values[0] + ")")
	case opAnd:
		c.renderAnd(b, nested)
	case opOr:
		b.WriteString("(")
		for i, ch := range c.children {
			if i > 0 {
				b.WriteString(" | ")
			}
			ch.render(b, true)
		}
		b.WriteString(")")
	case opNot:
		b.WriteString("-")
		ch := c.children[0]
		if ch.op == opAnd && len(ch.children) > 1 {
			b.WriteString("(")
			ch.render(b, false)
			b.WriteString(")")
			return
		}
		ch.render(b, true)
	}
}

func (c Clause) renderAnd(b *strings.Builder, nested bool) {
	parts := make([]Clause, 0, len(c.children))
	for _, ch := range c.children {
		if !ch.IsAll() {
			parts = append(parts, ch)
		}
	}
	switch len(parts) {
	case 0:
		b.WriteString("*")
		return
	case 1:
		parts[0].render(b, nested)
		return
	}
	if nested {
		b.WriteString("(")
	}
	for i, ch := range parts {
		if i > 0 {
			b.WriteString(" ")
		}
		ch.render(b, true)
	}
	if nested {
		b.WriteString(")")
	}
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"|", "\\|",
	"/", "\\/",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
