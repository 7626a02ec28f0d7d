package parser

import (
	"storydoc/internal/lexer"
	"storydoc/internal/story"
)

// parseEventData reads data: { type: "<kind>" ...fields... } and builds the
// event variant. Fields may appear in any order; unrecognized fields are
// skipped by brace depth.
func (p *parser) parseEventData() (story.Event, bool) {
	openTok, ok := p.expect(lexer.TokenLBrace, "expected '{' to open event data")
	if !ok {
		return nil, false
	}

	var (
		kind      string
		kindTok   lexer.Token
		name      string
		character string
		increment *float64
		value     story.Value
		toggle    bool
		chapter   *int
		group     *int
		node      *int
		reference string
		mods      []story.FieldModifier
	)

	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in event data")
			return nil, false
		}
		p.advance()
		switch key {
		case "type":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after type"); !ok {
				return nil, false
			}
			tok, ok := p.expect(lexer.TokenString, "expected event type")
			if !ok {
				return nil, false
			}
			kind = tok.Text
			kindTok = tok
		case "name":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after name"); !ok {
				return nil, false
			}
			tok, ok := p.expect(lexer.TokenString, "expected name")
			if !ok {
				return nil, false
			}
			name = tok.Text
		case "character":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after character"); !ok {
				return nil, false
			}
			tok, ok := p.expect(lexer.TokenString, "expected character name")
			if !ok {
				return nil, false
			}
			character = tok.Text
		case "increment":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after increment"); !ok {
				return nil, false
			}
			tok := p.peek()
			var amount float64
			switch tok.Kind {
			case lexer.TokenInt:
				amount = float64(tok.Int)
			case lexer.TokenFloat:
				amount = tok.Float
			default:
				p.errorf(tok, "expected numeric increment")
				return nil, false
			}
			p.advance()
			increment = &amount
		case "value":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after value"); !ok {
				return nil, false
			}
			v, ok := p.parseLiteral()
			if !ok {
				return nil, false
			}
			value = v
		case "toggle":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after toggle"); !ok {
				return nil, false
			}
			tok, ok := p.expect(lexer.TokenString, "expected toggle marker")
			if !ok {
				return nil, false
			}
			if tok.Text != "toggle" {
				p.errorf(tok, "invalid toggle marker %q", tok.Text)
				return nil, false
			}
			toggle = true
		case "chapter":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after chapter"); !ok {
				return nil, false
			}
			id, ok := p.parseReference(lexer.TokenChapter, "expected @chapter reference")
			if !ok {
				return nil, false
			}
			chapter = &id
		case "group":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after group"); !ok {
				return nil, false
			}
			id, ok := p.parseReference(lexer.TokenGroup, "expected @group reference")
			if !ok {
				return nil, false
			}
			group = &id
		case "node":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after node"); !ok {
				return nil, false
			}
			id, ok := p.parseReference(lexer.TokenNode, "expected @node reference")
			if !ok {
				return nil, false
			}
			node = &id
		case "reference":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after reference"); !ok {
				return nil, false
			}
			tok, ok := p.expect(lexer.TokenString, "expected linked-list name")
			if !ok {
				return nil, false
			}
			reference = tok.Text
		case "values":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after values"); !ok {
				return nil, false
			}
			m, ok := p.parseModValues()
			if !ok {
				return nil, false
			}
			mods = m
		default:
			p.skipValue()
		}
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close event data"); !ok {
		return nil, false
	}

	switch kind {
	case "next-node":
		return story.NextNodeEvent{}, true
	case "exit-current-node":
		return story.ExitNodeEvent{}, true
	case "exit-current-group":
		return story.ExitGroupEvent{}, true
	case "adjust-variable":
		if name == "" {
			p.errorf(kindTok, "adjust-variable event is missing a name")
			return nil, false
		}
		set := 0
		if increment != nil {
			set++
		}
		if value != nil {
			set++
		}
		if toggle {
			set++
		}
		if set != 1 {
			p.errorf(kindTok, "adjust-variable event needs exactly one of increment, value, toggle")
			return nil, false
		}
		var change story.Adjustment
		switch {
		case increment != nil:
			change = story.Increment{Amount: *increment}
		case value != nil:
			change = story.Assign{Value: value}
		default:
			change = story.Toggle{}
		}
		return story.AdjustVariableEvent{Name: name, Change: change}, true
	case "add-state", "remove-state":
		if name == "" || character == "" {
			p.errorf(kindTok, "%s event needs name and character", kind)
			return nil, false
		}
		if kind == "add-state" {
			return story.AddStateEvent{State: name, Character: character}, true
		}
		return story.RemoveStateEvent{State: name, Character: character}, true
	case "progress-story":
		return story.ProgressStoryEvent{Chapter: chapter, Group: group, Node: node}, true
	case "linked-list":
		if reference == "" {
			p.errorf(kindTok, "linked-list event is missing a reference")
			return nil, false
		}
		return story.LinkedListEvent{List: reference, Values: mods}, true
	case "":
		p.errorf(openTok, "event data is missing a type")
		return nil, false
	}
	p.errorf(kindTok, "unknown event type %q", kind)
	return nil, false
}

// values: [ "Field": { amount|set|append|replace|toggle: <literal> }, ... ]
func (p *parser) parseModValues() ([]story.FieldModifier, bool) {
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' to open values"); !ok {
		return nil, false
	}
	var mods []story.FieldModifier
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		fieldTok, ok := p.expect(lexer.TokenString, "expected field name")
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(lexer.TokenColon, "expected ':' after field name"); !ok {
			return nil, false
		}
		if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open field modifier"); !ok {
			return nil, false
		}
		mod := story.FieldModifier{Field: fieldTok.Text}
		seen := false
		for p.err == nil && !p.check(lexer.TokenRBrace) {
			opTok := p.peek()
			opName, ok := keyName(opTok)
			if !ok {
				p.errorf(opTok, "expected modifier operation")
				return nil, false
			}
			op, ok := story.ParseModOp(opName)
			if !ok {
				p.errorf(opTok, "invalid modifier operation %q", opName)
				return nil, false
			}
			if seen {
				p.errorf(opTok, "multiple operations for field %q", mod.Field)
				return nil, false
			}
			p.advance()
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after operation"); !ok {
				return nil, false
			}
			v, ok := p.parseLiteral()
			if !ok {
				return nil, false
			}
			mod.Op = op
			mod.Value = v
			seen = true
			p.match(lexer.TokenComma)
		}
		if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close field modifier"); !ok {
			return nil, false
		}
		if !seen {
			p.errorf(fieldTok, "field %q has no operation", mod.Field)
			return nil, false
		}
		mods = append(mods, mod)
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBracket, "expected ']' to close values"); !ok {
		return nil, false
	}
	return mods, true
}
