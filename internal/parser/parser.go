package parser

import (
	"fmt"
	"os"

	"storydoc/internal/lexer"
	"storydoc/internal/story"
)

// Error is a parse failure with the position of the offending token. The
// first error wins: once set, later errors are ignored and parsing unwinds.
type Error struct {
	Line    int
	Column  int
	Message string
	Got     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error at line %d, column %d: %s (got '%s')", e.Line, e.Column, e.Message, e.Got)
}

// ParseString parses story-document source text into a story graph. On
// failure the graph is nil and the returned error is a *Error.
func ParseString(source string) (*story.Story, error) {
	p := &parser{toks: lexer.Scan(source), st: &story.Story{}}
	p.run()
	if p.err != nil {
		return nil, p.err
	}
	return p.st, nil
}

// ParseFile reads and parses a story document from disk.
func ParseFile(path string) (*story.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading story document: %w", err)
	}
	return ParseString(string(data))
}

type parser struct {
	toks []lexer.Token
	pos  int
	err  *Error
	st   *story.Story
}

func (p *parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Kind == lexer.TokenError {
		p.errorf(tok, "%s", tok.Text)
		return tok
	}
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *parser) match(kind lexer.TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind lexer.TokenKind, what string) (lexer.Token, bool) {
	tok := p.peek()
	if tok.Kind != kind {
		p.errorf(tok, "%s", what)
		return tok, false
	}
	p.advance()
	return tok, true
}

func (p *parser) errorf(tok lexer.Token, format string, args ...any) {
	if p.err != nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if tok.Kind == lexer.TokenError {
		// A lexical error is reported as itself no matter what the parser
		// was expecting.
		msg = tok.Text
	}
	p.err = &Error{
		Line:    tok.Line,
		Column:  tok.Column,
		Message: msg,
		Got:     tok.Lexeme,
	}
}

// keyName returns the textual name of a token in key position. Section
// keywords double as keys (a group body has "chapter" and "linked-lists"
// keys), so idents, strings, and keywords all qualify.
func keyName(tok lexer.Token) (string, bool) {
	switch tok.Kind {
	case lexer.TokenIdent, lexer.TokenString:
		return tok.Text, true
	default:
		if tok.IsKeyword() {
			return tok.Lexeme, true
		}
	}
	return "", false
}

// run is the top-level loop: dispatch on the next token's keyword to a
// section parser, or skip stray tokens until EOF. Sections may appear in
// any order and each is optional.
func (p *parser) run() {
	for p.err == nil && !p.check(lexer.TokenEOF) {
		switch p.peek().Kind {
		case lexer.TokenStates:
			p.parseStates()
		case lexer.TokenGlobalVars:
			p.parseGlobalVars()
		case lexer.TokenLinkedLists:
			p.parseLinkedLists()
		case lexer.TokenCharacters:
			p.parseCharacters()
		case lexer.TokenTags:
			p.parseTags()
		case lexer.TokenChapter:
			p.parseChapter()
		case lexer.TokenGroup:
			p.parseGroup()
		case lexer.TokenNode:
			p.parseNode()
		default:
			p.advance()
		}
	}
}

// parseLiteral consumes one literal token and returns its typed value.
func (p *parser) parseLiteral() (story.Value, bool) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenString:
		p.advance()
		return story.StringValue(tok.Text), true
	case lexer.TokenInt:
		p.advance()
		return story.IntValue(tok.Int), true
	case lexer.TokenFloat:
		p.advance()
		return story.FloatValue(tok.Float), true
	case lexer.TokenBool:
		p.advance()
		return story.BoolValue(tok.Bool), true
	}
	p.errorf(tok, "expected literal value")
	return nil, false
}

// skipValue consumes one value after an unrecognized key, tracking brace and
// bracket depth so nested structure is tolerated without being understood.
func (p *parser) skipValue() {
	p.match(lexer.TokenColon)
	depth := 0
	for p.err == nil {
		tok := p.peek()
		switch tok.Kind {
		case lexer.TokenEOF:
			return
		case lexer.TokenLBrace, lexer.TokenLBracket:
			depth++
		case lexer.TokenRBrace, lexer.TokenRBracket:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
		if depth == 0 {
			return
		}
	}
}
