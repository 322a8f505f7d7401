// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokSemicolon
	tokQuestion
	tokNamed
	tokOther
)

type token struct {
	kind  tokenKind
	start int
	end   int
	text  string // upper-cased words, parameter names without prefix
}

// lexer walks SQL text and skips string literals, quoted identifiers,
// comments and PostgreSQL dollar-quoted bodies.
type lexer struct {
	src string
	pos int
	// backslashEscapes enables MySQL style \' inside string literals.
	backslashEscapes bool
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		start := l.pos
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			l.pos++
		case c == '-' && l.peek(1) == '-':
			l.skipLine()
		case c == '/' && l.peek(1) == '*':
			l.skipBlockComment()
		case c == '\'' || c == '"' || c == '`':
			l.skipQuoted(c)
			return token{kind: tokOther, start: start, end: l.pos}
		case c == '[':
			// sqlite bracket identifiers
			if i := strings.IndexByte(l.src[l.pos:], ']'); i >= 0 {
				l.pos += i + 1
			} else {
				l.pos = len(l.src)
			}
			return token{kind: tokOther, start: start, end: l.pos}
		case c == '$' && (l.peek(1) == '$' || isIdentStart(l.peek(1))):
			if tag, ok := l.dollarTag(); ok {
				l.pos += len(tag)
				if i := strings.Index(l.src[l.pos:], tag); i >= 0 {
					l.pos += i + len(tag)
				} else {
					l.pos = len(l.src)
				}
				return token{kind: tokOther, start: start, end: l.pos}
			}
			return l.named(start)
		case c == ';':
			l.pos++
			return token{kind: tokSemicolon, start: start, end: l.pos}
		case c == '?':
			l.pos++
			return token{kind: tokQuestion, start: start, end: l.pos}
		case c == ':' && l.peek(1) == ':':
			// PostgreSQL cast
			l.pos += 2
			return token{kind: tokOther, start: start, end: l.pos}
		case (c == ':' || c == '@') && isIdentStart(l.peek(1)):
			return l.named(start)
		case isIdentStart(c):
			for l.pos < len(l.src) && isIdent(l.src[l.pos]) {
				l.pos++
			}
			return token{kind: tokWord, start: start, end: l.pos, text: strings.ToUpper(l.src[start:l.pos])}
		default:
			l.pos++
			return token{kind: tokOther, start: start, end: l.pos}
		}
	}
	return token{kind: tokEOF, start: len(l.src), end: len(l.src)}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) skipLine() {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i + 1
		return
	}
	l.pos = len(l.src)
}

func (l *lexer) skipBlockComment() {
	if i := strings.Index(l.src[l.pos+2:], "*/"); i >= 0 {
		l.pos += i + 4
		return
	}
	l.pos = len(l.src)
}

func (l *lexer) skipQuoted(q byte) {
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.backslashEscapes && q != '`' {
			l.pos += 2
			continue
		}
		l.pos++
		if c == q {
			if l.pos < len(l.src) && l.src[l.pos] == q {
				// doubled quote escapes itself
				l.pos++
				continue
			}
			return
		}
	}
}

// dollarTag returns "$tag$" when the text at pos opens a dollar quote.
func (l *lexer) dollarTag() (string, bool) {
	i := l.pos + 1
	for i < len(l.src) && isIdent(l.src[i]) {
		i++
	}
	if i < len(l.src) && l.src[i] == '$' {
		return l.src[l.pos : i+1], true
	}
	return "", false
}

func (l *lexer) named(start int) token {
	l.pos++
	for l.pos < len(l.src) && isIdent(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokNamed, start: start, end: l.pos, text: l.src[start+1 : l.pos]}
}

// splitStatements splits a script on top-level semicolons. Semicolons inside
// literals, comments, dollar quotes and the BEGIN ... END body of CREATE
// TRIGGER/PROCEDURE/FUNCTION statements do not split. Statements that are
// empty or contain only comments are dropped.
func splitStatements(script string, backslashEscapes bool) []string {
	l := &lexer{src: script, backslashEscapes: backslashEscapes}
	var (
		out       []string
		start     = 0
		hasCode   = false
		words     = 0
		compound  = false
		sawCreate = false
		depth     = 0
		// afterEnd is set while the previous word was END, so that END IF,
		// END LOOP, END CASE and friends close one block, not two.
		afterEnd = false
	)
	flush := func(end int) {
		if hasCode {
			if s := strings.TrimSpace(script[start:end]); s != "" {
				out = append(out, s)
			}
		}
		hasCode, words, compound, sawCreate, depth, afterEnd = false, 0, false, false, 0, false
	}
	for {
		t := l.next()
		switch t.kind {
		case tokEOF:
			flush(len(script))
			return out
		case tokSemicolon:
			if depth > 0 {
				afterEnd = false
				continue
			}
			flush(t.start)
			start = t.end
			continue
		case tokWord:
			words++
			if words == 1 && t.text == "CREATE" {
				sawCreate = true
			}
			if sawCreate && words <= 6 && (t.text == "TRIGGER" || t.text == "PROCEDURE" || t.text == "FUNCTION") {
				compound = true
			}
			if compound {
				switch t.text {
				case "BEGIN":
					depth++
				case "CASE":
					if !afterEnd {
						depth++
					}
				case "END":
					if depth > 0 {
						depth--
					}
				case "IF", "WHILE", "LOOP", "REPEAT":
					// openers are not counted; END <opener> must not
					// close the enclosing block
					if afterEnd {
						depth++
					}
				}
				afterEnd = t.text == "END"
			}
		}
		hasCode = true
	}
}

// rowStatements are leading keywords of statements that produce a result set.
var rowStatements = map[string]bool{
	"SELECT": true, "WITH": true, "VALUES": true, "PRAGMA": true, "SHOW": true,
	"EXPLAIN": true, "DESCRIBE": true, "DESC": true, "TABLE": true,
}

// returnsRows guesses whether stmt yields a result set: either its leading
// keyword is a query keyword or it has a RETURNING clause.
func returnsRows(stmt string) bool {
	l := &lexer{src: stmt}
	first := true
	for {
		t := l.next()
		switch t.kind {
		case tokEOF:
			return false
		case tokWord:
			if first {
				if rowStatements[t.text] {
					return true
				}
				first = false
			}
			if t.text == "RETURNING" || t.text == "OUTPUT" {
				return true
			}
		case tokOther:
			// "(SELECT ...)" keeps looking for the first keyword
			if first && stmt[t.start] != '(' {
				first = false
			}
		}
	}
}

// bindNamed rewrites named parameters (:name, @name, $name) that have a
// matching sql.NamedArg into positional '?' placeholders and returns the
// positional argument list in placeholder order. Statements without named
// arguments are returned unchanged.
func bindNamed(stmt string, args []any, backslashEscapes bool) (string, []any, error) {
	named := map[string]any{}
	var positional []any
	for _, a := range args {
		if na, ok := a.(sql.NamedArg); ok {
			named[na.Name] = na.Value
			continue
		}
		positional = append(positional, a)
	}
	if len(named) == 0 {
		return stmt, args, nil
	}

	l := &lexer{src: stmt, backslashEscapes: backslashEscapes}
	var (
		b    strings.Builder
		out  []any
		last = 0
		pi   = 0
		used = map[string]bool{}
	)
	for {
		t := l.next()
		if t.kind == tokEOF {
			break
		}
		switch t.kind {
		case tokQuestion:
			if pi >= len(positional) {
				return "", nil, fmt.Errorf("statement has more '?' placeholders than positional arguments (%d)", len(positional))
			}
			out = append(out, positional[pi])
			pi++
		case tokNamed:
			v, ok := named[t.text]
			if !ok {
				continue
			}
			used[t.text] = true
			b.WriteString(stmt[last:t.start])
			b.WriteByte('?')
			last = t.end
			out = append(out, v)
		}
	}
	b.WriteString(stmt[last:])
	for name := range named {
		if !used[name] {
			return "", nil, fmt.Errorf("named argument %q not used by statement", name)
		}
	}
	return b.String(), out, nil
}

// numberPlaceholders rewrites top-level '?' placeholders to $1, $2, ... in
// order. Question marks inside literals, identifiers and comments are kept.
func numberPlaceholders(stmt string) string {
	l := &lexer{src: stmt}
	var (
		b    strings.Builder
		last = 0
		n    = 0
	)
	for {
		t := l.next()
		if t.kind == tokEOF {
			break
		}
		if t.kind != tokQuestion {
			continue
		}
		n++
		b.WriteString(stmt[last:t.start])
		fmt.Fprintf(&b, "$%d", n)
		last = t.end
	}
	if n == 0 {
		return stmt
	}
	b.WriteString(stmt[last:])
	return b.String()
}

// txControl classifies a top-level script statement that manages the
// transaction itself.
type txControl int

const (
	txNone txControl = iota
	// txBoundary opens or commits a transaction: BEGIN, START TRANSACTION,
	// COMMIT, END.
	txBoundary
	// txAbort is a bare ROLLBACK. ROLLBACK TO SAVEPOINT is txNone.
	txAbort
)

func classifyTxControl(stmt string) txControl {
	l := &lexer{src: stmt}
	first := l.next()
	if first.kind != tokWord {
		return txNone
	}
	second := l.next()
	switch first.text {
	case "BEGIN", "COMMIT", "END":
		return txBoundary
	case "START":
		if second.kind == tokWord && second.text == "TRANSACTION" {
			return txBoundary
		}
	case "ROLLBACK":
		if second.kind == tokWord && second.text == "TO" {
			return txNone
		}
		if second.kind == tokWord && (second.text == "WORK" || second.text == "TRANSACTION") {
			if third := l.next(); third.kind == tokWord && third.text == "TO" {
				return txNone
			}
		}
		return txAbort
	}
	return txNone
}

// errScriptRollback rejects a script that rolls itself back.
var errScriptRollback = errors.New("ROLLBACK is not allowed in a script; a failing statement already rolls the script back")

// scriptStatement is a statement of a script with its position in the
// script.
type scriptStatement struct {
	index int
	text  string
}

// prepareScript splits script and drops its own transaction boundaries,
// since ExecuteScript already runs the script in one transaction. A bare
// ROLLBACK is rejected with a *SchemaError.
func prepareScript(script string, backslashEscapes bool) ([]scriptStatement, error) {
	var out []scriptStatement
	for i, s := range splitStatements(script, backslashEscapes) {
		switch classifyTxControl(s) {
		case txBoundary:
			continue
		case txAbort:
			return nil, &SchemaError{Index: i, Statement: s, Err: errScriptRollback}
		}
		out = append(out, scriptStatement{index: i, text: s})
	}
	return out, nil
}
