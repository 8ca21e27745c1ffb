package token

import "strings"

// Match compares consecutive tokens starting at tok against a pattern of
// space separated words. A word matches a single token and may list
// alternatives with "|". Special words:
//
//	%any%  any token
//	%name% identifier, keyword or type name
//	%var%  token bound to a variable
//	%num%  number literal
//	%str%  string literal
//	%op%   operator
//
// The words "|" and "||" are matched literally.
func Match(tok *Token, pattern string) bool {
	for _, word := range strings.Fields(pattern) {
		if tok == nil || !matchWord(tok, word) {
			return false
		}
		tok = tok.Next()
	}
	return true
}

// PatternLen is the number of tokens a pattern spans.
func PatternLen(pattern string) int {
	return len(strings.Fields(pattern))
}

// MatchWords compares consecutive token spellings with words exactly.
func MatchWords(tok *Token, words []string) bool {
	for _, w := range words {
		if tok == nil || tok.Str() != w {
			return false
		}
		tok = tok.Next()
	}
	return true
}

func matchWord(tok *Token, word string) bool {
	if word == "|" || word == "||" {
		return tok.Str() == word
	}
	for _, alt := range strings.Split(word, "|") {
		if matchAlternative(tok, alt) {
			return true
		}
	}
	return false
}

func matchAlternative(tok *Token, alt string) bool {
	switch alt {
	case "%any%":
		return true
	case "%name%":
		return tok.IsName()
	case "%var%":
		return tok.VarID() != 0
	case "%num%":
		return tok.Kind() == KindNumber
	case "%str%":
		return tok.Kind() == KindString
	case "%op%":
		return tok.IsOp()
	}
	return tok.Str() == alt
}
