package expr

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow
	tokLParen
	tokRParen
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of expression",
	tokNumber: "number",
	tokIdent:  "name",
	tokPlus:   "'+'",
	tokMinus:  "'-'",
	tokStar:   "'*'",
	tokSlash:  "'/'",
	tokPow:    "'**'",
	tokLParen: "'('",
	tokRParen: "')'",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// lex splits src into tokens. Anything outside the arithmetic grammar is rejected here.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			tok, next, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				toks = append(toks, token{kind: tokPow, text: "**", pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokStar, text: "*", pos: i})
				i++
			}
		case c == '+':
			toks = append(toks, token{kind: tokPlus, text: "+", pos: i})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, text: "-", pos: i})
			i++
		case c == '/':
			toks = append(toks, token{kind: tokSlash, text: "/", pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, newError(src, i, fmt.Sprintf("unexpected character %q", rune(c)))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

// lexNumber scans digits[.digits][(e|E)[+-]digits] starting at start.
func lexNumber(src string, start int) (token, int, error) {
	i := start
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j >= len(src) || !isDigit(src[j]) {
			return token{}, 0, newError(src, start, "invalid number literal")
		}
		for j < len(src) && isDigit(src[j]) {
			j++
		}
		i = j
	}
	if i < len(src) && (isIdentPart(src[i]) || src[i] == '.') {
		return token{}, 0, newError(src, start, "invalid number literal")
	}
	text := src[start:i]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, 0, newError(src, start, fmt.Sprintf("invalid number literal %q", text))
	}
	return token{kind: tokNumber, text: text, value: v, pos: start}, i, nil
}
