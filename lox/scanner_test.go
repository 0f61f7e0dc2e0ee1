package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(source string) []Token {
	s := NewScanner(source)
	var tokens []Token
	for {
		tok := s.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func TestScannerPunctuationAndOperators(t *testing.T) {
	tokens := scanAll("(){}== != <= >= < > = ! + - * / ; , .")
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	assert.Equal(t, []TokenType{
		TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace,
		TokenEqualEqual, TokenBangEqual, TokenLessEqual, TokenGreaterEqual,
		TokenLess, TokenGreater, TokenEqual, TokenBang,
		TokenPlus, TokenMinus, TokenStar, TokenSlash,
		TokenSemicolon, TokenComma, TokenDot, TokenEOF,
	}, types)
}

func TestScannerKeywordsVsIdentifiers(t *testing.T) {
	tokens := scanAll("class fun orchid")
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenClass, tokens[0].Type)
	assert.Equal(t, TokenFun, tokens[1].Type)
	assert.Equal(t, TokenIdentifier, tokens[2].Type)
	assert.Equal(t, "orchid", tokens[2].Lexeme)
}

func TestScannerNumbersAndStrings(t *testing.T) {
	tokens := scanAll(`123 4.5 "hello world"`)
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenNumber, tokens[0].Type)
	assert.Equal(t, "123", tokens[0].Lexeme)
	assert.Equal(t, TokenNumber, tokens[1].Type)
	assert.Equal(t, "4.5", tokens[1].Lexeme)
	assert.Equal(t, TokenString, tokens[2].Type)
	assert.Equal(t, `"hello world"`, tokens[2].Lexeme)
}

func TestScannerUnterminatedString(t *testing.T) {
	tokens := scanAll(`"unterminated`)
	require.Len(t, tokens, 2)
	assert.Equal(t, TokenError, tokens[0].Type)
	assert.Equal(t, "Unterminated string.", tokens[0].Lexeme)
}

func TestScannerSkipsCommentsAndTracksLines(t *testing.T) {
	tokens := scanAll("// comment\nvar a = 1;")
	require.NotEmpty(t, tokens)
	assert.Equal(t, TokenVar, tokens[0].Type)
	assert.Equal(t, 2, tokens[0].Line)
}
