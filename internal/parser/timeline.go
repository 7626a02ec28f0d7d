package parser

import (
	"storydoc/internal/lexer"
	"storydoc/internal/story"
)

// node N { title: "...", content: "...", timeline: { <items> } }
func (p *parser) parseNode() {
	p.advance() // node
	idTok, ok := p.expect(lexer.TokenInt, "expected node id")
	if !ok {
		return
	}
	id := int(idTok.Int)
	if p.st.Node(id) != nil {
		p.errorf(idTok, "duplicate node id %d", id)
		return
	}
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open node body"); !ok {
		return
	}

	n := story.Node{ID: id}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in node body")
			return
		}
		p.advance()
		switch key {
		case "title":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after title"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenString, "expected node title")
			if !ok {
				return
			}
			n.Title = tok.Text
		case "content":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after content"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenString, "expected node content")
			if !ok {
				return
			}
			n.Content = tok.Text
		case "timeline":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after timeline"); !ok {
				return
			}
			n.Timeline = p.parseTimeline()
		default:
			p.errorf(keyTok, "unexpected key %q in node body", key)
			return
		}
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close node body"); !ok {
		return
	}
	p.st.Nodes = append(p.st.Nodes, n)
}

// timeline: { dialogue N { ... } action N { ... } ... }
// Item labels are authored and deliberately not checked for uniqueness.
func (p *parser) parseTimeline() []story.TimelineItem {
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open timeline"); !ok {
		return nil
	}
	var items []story.TimelineItem
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		switch p.peek().Kind {
		case lexer.TokenDialogue:
			d, ok := p.parseDialogue()
			if !ok {
				return nil
			}
			items = append(items, d)
		case lexer.TokenAction:
			a, ok := p.parseAction()
			if !ok {
				return nil
			}
			items = append(items, a)
		default:
			p.errorf(p.peek(), "expected dialogue or action")
			return nil
		}
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBrace, "expected '}' to close timeline")
	return items
}

// dialogue N { Speaker: "text" Speaker: "text" ... }
func (p *parser) parseDialogue() (story.Dialogue, bool) {
	p.advance() // dialogue
	var d story.Dialogue
	labelTok, ok := p.expect(lexer.TokenInt, "expected dialogue label")
	if !ok {
		return d, false
	}
	d.Label = int(labelTok.Int)
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open dialogue body"); !ok {
		return d, false
	}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		speakerTok := p.peek()
		speaker, ok := keyName(speakerTok)
		if !ok || speakerTok.Kind == lexer.TokenString {
			p.errorf(speakerTok, "expected speaker name")
			return d, false
		}
		p.advance()
		if _, ok := p.expect(lexer.TokenColon, "expected ':' after speaker name"); !ok {
			return d, false
		}
		textTok, ok := p.expect(lexer.TokenString, "expected dialogue text")
		if !ok {
			return d, false
		}
		d.Lines = append(d.Lines, story.DialogueLine{Speaker: speaker, Text: textTok.Text})
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close dialogue body"); !ok {
		return d, false
	}
	if len(d.Lines) == 0 {
		p.errorf(labelTok, "dialogue %d has no lines", d.Label)
		return d, false
	}
	return d, true
}

// action N { ... }
func (p *parser) parseAction() (story.Action, bool) {
	p.advance() // action
	var a story.Action
	labelTok, ok := p.expect(lexer.TokenInt, "expected action label")
	if !ok {
		return a, false
	}
	a.Label = int(labelTok.Int)
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open action body"); !ok {
		return a, false
	}
	body, ok := p.parseActionBody(labelTok)
	if !ok {
		return a, false
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close action body"); !ok {
		return a, false
	}
	a.Body = body
	return a, true
}

// parseActionBody reads action keys up to the closing brace and resolves the
// action kind. A flat goto/exit/enter reference overrides the declared type;
// unrecognized keys are skipped by brace depth.
func (p *parser) parseActionBody(labelTok lexer.Token) (story.ActionBody, bool) {
	var (
		declared string
		code     *string
		flat     story.ActionBody
		event    story.Event
		options  []story.ChoiceOption
		haveOpts bool
	)

	for p.err == nil && !p.check(lexer.TokenRBrace) {
		tok := p.peek()
		if tok.Kind == lexer.TokenCodeBlock {
			p.advance()
			text := tok.Text
			code = &text
			p.match(lexer.TokenComma)
			continue
		}
		key, ok := keyName(tok)
		if !ok {
			p.errorf(tok, "unexpected token in action body")
			return nil, false
		}
		p.advance()
		switch key {
		case "type":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after type"); !ok {
				return nil, false
			}
			typTok, ok := p.expect(lexer.TokenString, "expected action type")
			if !ok {
				return nil, false
			}
			switch typTok.Text {
			case "code", "event", "choice":
				declared = typTok.Text
			default:
				p.errorf(typTok, "unknown action type %q", typTok.Text)
				return nil, false
			}
		case "data":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after data"); !ok {
				return nil, false
			}
			ev, ok := p.parseEventData()
			if !ok {
				return nil, false
			}
			event = ev
		case "choices":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after choices"); !ok {
				return nil, false
			}
			opts, ok := p.parseChoices()
			if !ok {
				return nil, false
			}
			options = opts
			haveOpts = true
		case "goto":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after goto"); !ok {
				return nil, false
			}
			id, ok := p.parseReference(lexer.TokenNode, "expected @node reference")
			if !ok {
				return nil, false
			}
			flat = story.GotoAction{Node: id}
		case "exit":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after exit"); !ok {
				return nil, false
			}
			tok, ok := p.expect(lexer.TokenString, "expected exit target")
			if !ok {
				return nil, false
			}
			switch story.ExitTarget(tok.Text) {
			case story.ExitNode, story.ExitGroup:
				flat = story.ExitAction{Target: story.ExitTarget(tok.Text)}
			default:
				p.errorf(tok, "invalid exit target %q", tok.Text)
				return nil, false
			}
		case "enter":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after enter"); !ok {
				return nil, false
			}
			id, ok := p.parseReference(lexer.TokenGroup, "expected @group reference")
			if !ok {
				return nil, false
			}
			flat = story.EnterAction{Group: id}
		default:
			p.skipValue()
		}
		p.match(lexer.TokenComma)
	}
	if p.err != nil {
		return nil, false
	}

	if flat != nil {
		return flat, true
	}
	switch declared {
	case "code":
		if code == nil {
			p.errorf(labelTok, "code action %d is missing a code block", labelTok.Int)
			return nil, false
		}
		return story.CodeAction{Code: *code}, true
	case "choice":
		if !haveOpts {
			p.errorf(labelTok, "choice action %d is missing choices", labelTok.Int)
			return nil, false
		}
		return story.ChoiceAction{Options: options}, true
	case "event":
		if event == nil {
			p.errorf(labelTok, "event action %d is missing event data", labelTok.Int)
			return nil, false
		}
		return story.EventAction{Event: event}, true
	}
	if code != nil {
		return story.CodeAction{Code: *code}, true
	}
	p.errorf(labelTok, "action %d has no type", labelTok.Int)
	return nil, false
}

// choices: [ { text: "..." choice: { action M { ... } ... } }, ... ]
func (p *parser) parseChoices() ([]story.ChoiceOption, bool) {
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' to open choices"); !ok {
		return nil, false
	}
	var options []story.ChoiceOption
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open choice option"); !ok {
			return nil, false
		}
		var opt story.ChoiceOption
		for p.err == nil && !p.check(lexer.TokenRBrace) {
			keyTok := p.peek()
			key, ok := keyName(keyTok)
			if !ok {
				p.errorf(keyTok, "expected key in choice option")
				return nil, false
			}
			p.advance()
			switch key {
			case "text":
				if _, ok := p.expect(lexer.TokenColon, "expected ':' after text"); !ok {
					return nil, false
				}
				tok, ok := p.expect(lexer.TokenString, "expected choice text")
				if !ok {
					return nil, false
				}
				opt.Text = tok.Text
			case "choice":
				if _, ok := p.expect(lexer.TokenColon, "expected ':' after choice"); !ok {
					return nil, false
				}
				if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open choice actions"); !ok {
					return nil, false
				}
				for p.err == nil && !p.check(lexer.TokenRBrace) {
					if !p.check(lexer.TokenAction) {
						p.errorf(p.peek(), "expected action in choice")
						return nil, false
					}
					a, ok := p.parseAction()
					if !ok {
						return nil, false
					}
					opt.Actions = append(opt.Actions, a)
					p.match(lexer.TokenComma)
				}
				if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close choice actions"); !ok {
					return nil, false
				}
			default:
				p.errorf(keyTok, "unexpected key %q in choice option", key)
				return nil, false
			}
			p.match(lexer.TokenComma)
		}
		if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close choice option"); !ok {
			return nil, false
		}
		options = append(options, opt)
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBracket, "expected ']' to close choices"); !ok {
		return nil, false
	}
	return options, true
}

// parseReference reads @<kind>(<integer>) and returns the target id.
func (p *parser) parseReference(kind lexer.TokenKind, what string) (int, bool) {
	if _, ok := p.expect(lexer.TokenAt, what); !ok {
		return 0, false
	}
	if _, ok := p.expect(kind, what); !ok {
		return 0, false
	}
	if _, ok := p.expect(lexer.TokenLParen, "expected '(' in reference"); !ok {
		return 0, false
	}
	idTok, ok := p.expect(lexer.TokenInt, "expected reference id")
	if !ok {
		return 0, false
	}
	if _, ok := p.expect(lexer.TokenRParen, "expected ')' in reference"); !ok {
		return 0, false
	}
	return int(idTok.Int), true
}
