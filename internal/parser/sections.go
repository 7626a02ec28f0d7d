package parser

import (
	"storydoc/internal/lexer"
	"storydoc/internal/story"
)

// states [ "s1", "s2", ... ]
func (p *parser) parseStates() {
	p.advance() // states
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' after states"); !ok {
		return
	}
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		tok, ok := p.expect(lexer.TokenString, "expected state name")
		if !ok {
			return
		}
		if p.st.HasState(tok.Text) {
			p.errorf(tok, "duplicate state %q", tok.Text)
			return
		}
		p.st.States = append(p.st.States, story.State{Name: tok.Text})
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBracket, "expected ']' to close states")
}

// global_vars [ "Name": { type: "...", default: <literal> }, ... ]
func (p *parser) parseGlobalVars() {
	p.advance() // global_vars
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' after global_vars"); !ok {
		return
	}
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		p.parseGlobalVar()
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBracket, "expected ']' to close global_vars")
}

func (p *parser) parseGlobalVar() {
	nameTok, ok := p.expect(lexer.TokenString, "expected variable name")
	if !ok {
		return
	}
	if p.st.GlobalVariable(nameTok.Text) != nil {
		p.errorf(nameTok, "duplicate global variable %q", nameTok.Text)
		return
	}
	if _, ok := p.expect(lexer.TokenColon, "expected ':' after variable name"); !ok {
		return
	}
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open variable body"); !ok {
		return
	}

	v := story.GlobalVariable{Name: nameTok.Text}
	var defTok lexer.Token
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in variable body")
			return
		}
		p.advance()
		switch key {
		case "type":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after type"); !ok {
				return
			}
			typTok, ok := p.expect(lexer.TokenString, "expected variable type")
			if !ok {
				return
			}
			typ, ok := story.ParseVarType(typTok.Text)
			if !ok {
				p.errorf(typTok, "invalid variable type %q", typTok.Text)
				return
			}
			v.Type = typ
		case "default":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after default"); !ok {
				return
			}
			defTok = p.peek()
			def, ok := p.parseLiteral()
			if !ok {
				return
			}
			v.Default = def
		default:
			p.errorf(keyTok, "unexpected key %q in variable body", key)
			return
		}
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close variable body"); !ok {
		return
	}

	if v.Type == "" {
		p.errorf(nameTok, "variable %q is missing a type", v.Name)
		return
	}
	if v.Default == nil {
		p.errorf(nameTok, "variable %q is missing a default", v.Name)
		return
	}
	if !defaultMatchesType(v.Type, v.Default) {
		p.errorf(defTok, "default value does not match declared type %q", v.Type)
		return
	}
	if v.Type == story.VarFloat {
		if n, ok := v.Default.(story.IntValue); ok {
			v.Default = story.FloatValue(n)
		}
	}
	p.st.Variables = append(p.st.Variables, v)
}

// defaultMatchesType checks the declared type against the literal's type.
// Integer literals are acceptable defaults for float variables.
func defaultMatchesType(typ story.VarType, def story.Value) bool {
	got := story.TypeOf(def)
	if got == typ {
		return true
	}
	return typ == story.VarFloat && got == story.VarInt
}

// linked-lists [ "Name": { scope: "...", structure: { Field: { type: "..." }, ... } }, ... ]
func (p *parser) parseLinkedLists() {
	p.advance() // linked-lists
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' after linked-lists"); !ok {
		return
	}
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		p.parseLinkedList()
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBracket, "expected ']' to close linked-lists")
}

func (p *parser) parseLinkedList() {
	nameTok, ok := p.expect(lexer.TokenString, "expected linked-list name")
	if !ok {
		return
	}
	if p.st.LinkedList(nameTok.Text) != nil {
		p.errorf(nameTok, "duplicate linked-list %q", nameTok.Text)
		return
	}
	if _, ok := p.expect(lexer.TokenColon, "expected ':' after linked-list name"); !ok {
		return
	}
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open linked-list body"); !ok {
		return
	}

	list := story.LinkedListType{Name: nameTok.Text}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in linked-list body")
			return
		}
		p.advance()
		switch key {
		case "scope":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after scope"); !ok {
				return
			}
			scopeTok, ok := p.expect(lexer.TokenString, "expected linked-list scope")
			if !ok {
				return
			}
			scope, ok := story.ParseListScope(scopeTok.Text)
			if !ok {
				p.errorf(scopeTok, "invalid linked-list scope %q", scopeTok.Text)
				return
			}
			list.Scope = scope
		case "structure":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after structure"); !ok {
				return
			}
			list.Structure = p.parseListStructure()
		default:
			p.errorf(keyTok, "unexpected key %q in linked-list body", key)
			return
		}
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close linked-list body"); !ok {
		return
	}
	if list.Scope == "" {
		p.errorf(nameTok, "linked-list %q is missing a scope", list.Name)
		return
	}
	if len(list.Structure) == 0 {
		p.errorf(nameTok, "linked-list %q has an empty structure", list.Name)
		return
	}
	p.st.Lists = append(p.st.Lists, list)
}

func (p *parser) parseListStructure() []story.ListField {
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open structure"); !ok {
		return nil
	}
	var fields []story.ListField
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		fieldTok := p.peek()
		name, ok := keyName(fieldTok)
		if !ok {
			p.errorf(fieldTok, "expected field name")
			return nil
		}
		for _, f := range fields {
			if f.Name == name {
				p.errorf(fieldTok, "duplicate field %q in structure", name)
				return nil
			}
		}
		p.advance()
		if _, ok := p.expect(lexer.TokenColon, "expected ':' after field name"); !ok {
			return nil
		}
		if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open field body"); !ok {
			return nil
		}
		var typ story.VarType
		for p.err == nil && !p.check(lexer.TokenRBrace) {
			keyTok := p.peek()
			key, ok := keyName(keyTok)
			if !ok || key != "type" {
				p.errorf(keyTok, "expected 'type' in field body")
				return nil
			}
			p.advance()
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after type"); !ok {
				return nil
			}
			typTok, ok := p.expect(lexer.TokenString, "expected field type")
			if !ok {
				return nil
			}
			typ, ok = story.ParseVarType(typTok.Text)
			if !ok {
				p.errorf(typTok, "invalid field type %q", typTok.Text)
				return nil
			}
			p.match(lexer.TokenComma)
		}
		if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close field body"); !ok {
			return nil
		}
		if typ == "" {
			p.errorf(fieldTok, "field %q is missing a type", name)
			return nil
		}
		fields = append(fields, story.ListField{Name: name, Type: typ})
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBrace, "expected '}' to close structure")
	return fields
}

// characters [ "Name": { biography: "...", description: "...", linked-list-data: { ... } }, ... ]
func (p *parser) parseCharacters() {
	p.advance() // characters
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' after characters"); !ok {
		return
	}
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		p.parseCharacter()
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBracket, "expected ']' to close characters")
}

func (p *parser) parseCharacter() {
	nameTok, ok := p.expect(lexer.TokenString, "expected character name")
	if !ok {
		return
	}
	if p.st.Character(nameTok.Text) != nil {
		p.errorf(nameTok, "duplicate character %q", nameTok.Text)
		return
	}
	if _, ok := p.expect(lexer.TokenColon, "expected ':' after character name"); !ok {
		return
	}
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open character body"); !ok {
		return
	}

	ch := story.Character{Name: nameTok.Text}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in character body")
			return
		}
		p.advance()
		switch key {
		case "biography":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after biography"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenString, "expected biography text")
			if !ok {
				return
			}
			ch.Biography = tok.Text
		case "description":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after description"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenString, "expected description text")
			if !ok {
				return
			}
			ch.Description = tok.Text
		case "linked-list-data":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after linked-list-data"); !ok {
				return
			}
			ch.ListData = p.parseCharacterListData()
		default:
			p.errorf(keyTok, "unexpected key %q in character body", key)
			return
		}
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close character body"); !ok {
		return
	}
	p.st.Characters = append(p.st.Characters, ch)
}

// linked-list-data: { ListName: { ... } | [ "key": { ... }, ... ], ... }
func (p *parser) parseCharacterListData() []story.CharacterListData {
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open linked-list-data"); !ok {
		return nil
	}
	var data []story.CharacterListData
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		listTok := p.peek()
		listName, ok := keyName(listTok)
		if !ok {
			p.errorf(listTok, "expected linked-list name")
			return nil
		}
		for _, d := range data {
			if d.List == listName {
				p.errorf(listTok, "duplicate linked-list data for %q", listName)
				return nil
			}
		}
		p.advance()
		if _, ok := p.expect(lexer.TokenColon, "expected ':' after linked-list name"); !ok {
			return nil
		}

		entry := story.CharacterListData{List: listName}
		switch {
		case p.check(lexer.TokenLBrace):
			entry.Single = p.parseRecord()
		case p.check(lexer.TokenLBracket):
			p.advance()
			for p.err == nil && !p.check(lexer.TokenRBracket) {
				keyTok, ok := p.expect(lexer.TokenString, "expected record key")
				if !ok {
					return nil
				}
				if _, ok := p.expect(lexer.TokenColon, "expected ':' after record key"); !ok {
					return nil
				}
				rec := p.parseRecord()
				entry.Entries = append(entry.Entries, story.RecordEntry{Key: keyTok.Text, Record: rec})
				p.match(lexer.TokenComma)
			}
			if _, ok := p.expect(lexer.TokenRBracket, "expected ']' to close record list"); !ok {
				return nil
			}
		default:
			p.errorf(p.peek(), "expected record or record list")
			return nil
		}
		data = append(data, entry)
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBrace, "expected '}' to close linked-list-data")
	return data
}

// parseRecord reads { Field: <literal>, ... } preserving field order.
func (p *parser) parseRecord() story.Record {
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open record"); !ok {
		return nil
	}
	var rec story.Record
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		fieldTok := p.peek()
		name, ok := keyName(fieldTok)
		if !ok {
			p.errorf(fieldTok, "expected record field name")
			return nil
		}
		p.advance()
		if _, ok := p.expect(lexer.TokenColon, "expected ':' after record field"); !ok {
			return nil
		}
		val, ok := p.parseLiteral()
		if !ok {
			return nil
		}
		rec = append(rec, story.RecordField{Name: name, Value: val})
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBrace, "expected '}' to close record")
	return rec
}

// tags [ "Name": { type: "single"|"key-value", color: "#...", keys: [ ... ] }, ... ]
func (p *parser) parseTags() {
	p.advance() // tags
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' after tags"); !ok {
		return
	}
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		p.parseTagDefinition()
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBracket, "expected ']' to close tags")
}

func (p *parser) parseTagDefinition() {
	nameTok, ok := p.expect(lexer.TokenString, "expected tag name")
	if !ok {
		return
	}
	if p.st.TagDefinition(nameTok.Text) != nil {
		p.errorf(nameTok, "duplicate tag %q", nameTok.Text)
		return
	}
	if _, ok := p.expect(lexer.TokenColon, "expected ':' after tag name"); !ok {
		return
	}
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open tag body"); !ok {
		return
	}

	tag := story.TagDefinition{Name: nameTok.Text}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in tag body")
			return
		}
		p.advance()
		switch key {
		case "type":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after type"); !ok {
				return
			}
			typTok, ok := p.expect(lexer.TokenString, "expected tag type")
			if !ok {
				return
			}
			switch story.TagKind(typTok.Text) {
			case story.TagSingle, story.TagKeyValue:
				tag.Kind = story.TagKind(typTok.Text)
			default:
				p.errorf(typTok, "invalid tag type %q", typTok.Text)
				return
			}
		case "color":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after color"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenString, "expected color string")
			if !ok {
				return
			}
			tag.Color = tok.Text
		case "keys":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after keys"); !ok {
				return
			}
			if _, ok := p.expect(lexer.TokenLBracket, "expected '[' to open keys"); !ok {
				return
			}
			for p.err == nil && !p.check(lexer.TokenRBracket) {
				tok, ok := p.expect(lexer.TokenString, "expected tag key")
				if !ok {
					return
				}
				tag.Keys = append(tag.Keys, tok.Text)
				p.match(lexer.TokenComma)
			}
			if _, ok := p.expect(lexer.TokenRBracket, "expected ']' to close keys"); !ok {
				return
			}
		default:
			p.errorf(keyTok, "unexpected key %q in tag body", key)
			return
		}
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close tag body"); !ok {
		return
	}
	if tag.Kind == "" {
		p.errorf(nameTok, "tag %q is missing a type", tag.Name)
		return
	}
	if tag.Kind == story.TagSingle && len(tag.Keys) > 0 {
		p.errorf(nameTok, "single tag %q must not declare keys", tag.Name)
		return
	}
	if tag.Kind == story.TagKeyValue && len(tag.Keys) == 0 {
		p.errorf(nameTok, "key-value tag %q must declare keys", tag.Name)
		return
	}
	p.st.Tags = append(p.st.Tags, tag)
}

// chapter N { name: "..." }
func (p *parser) parseChapter() {
	p.advance() // chapter
	idTok, ok := p.expect(lexer.TokenInt, "expected chapter id")
	if !ok {
		return
	}
	id := int(idTok.Int)
	if p.st.Chapter(id) != nil {
		p.errorf(idTok, "duplicate chapter id %d", id)
		return
	}
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open chapter body"); !ok {
		return
	}
	ch := story.Chapter{ID: id}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok || key != "name" {
			p.errorf(keyTok, "expected 'name' in chapter body")
			return
		}
		p.advance()
		if _, ok := p.expect(lexer.TokenColon, "expected ':' after name"); !ok {
			return
		}
		tok, ok := p.expect(lexer.TokenString, "expected chapter name")
		if !ok {
			return
		}
		ch.Name = tok.Text
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close chapter body"); !ok {
		return
	}
	p.st.Chapters = append(p.st.Chapters, ch)
}

// group N { chapter: N, name, content, parent-group: N, tags: [...],
// linked-lists: [...], nodes: { start, end, points } }
func (p *parser) parseGroup() {
	p.advance() // group
	idTok, ok := p.expect(lexer.TokenInt, "expected group id")
	if !ok {
		return
	}
	id := int(idTok.Int)
	if p.st.Group(id) != nil {
		p.errorf(idTok, "duplicate group id %d", id)
		return
	}
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open group body"); !ok {
		return
	}

	g := story.Group{ID: id}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in group body")
			return
		}
		p.advance()
		switch key {
		case "chapter":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after chapter"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenInt, "expected chapter id")
			if !ok {
				return
			}
			g.ChapterID = int(tok.Int)
		case "name":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after name"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenString, "expected group name")
			if !ok {
				return
			}
			g.Name = tok.Text
		case "content":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after content"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenString, "expected group content")
			if !ok {
				return
			}
			g.Content = tok.Text
		case "parent-group":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after parent-group"); !ok {
				return
			}
			tok, ok := p.expect(lexer.TokenInt, "expected parent group id")
			if !ok {
				return
			}
			parent := int(tok.Int)
			g.ParentGroup = &parent
		case "tags":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after tags"); !ok {
				return
			}
			g.Tags = p.parseGroupTags()
		case "linked-lists":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after linked-lists"); !ok {
				return
			}
			if _, ok := p.expect(lexer.TokenLBracket, "expected '[' to open linked-lists"); !ok {
				return
			}
			for p.err == nil && !p.check(lexer.TokenRBracket) {
				tok, ok := p.expect(lexer.TokenString, "expected linked-list name")
				if !ok {
					return
				}
				g.Lists = append(g.Lists, tok.Text)
				p.match(lexer.TokenComma)
			}
			if _, ok := p.expect(lexer.TokenRBracket, "expected ']' to close linked-lists"); !ok {
				return
			}
		case "nodes":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after nodes"); !ok {
				return
			}
			g.Nodes = p.parseNodeGraph()
		default:
			p.errorf(keyTok, "unexpected key %q in group body", key)
			return
		}
		p.match(lexer.TokenComma)
	}
	if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close group body"); !ok {
		return
	}
	p.st.Groups = append(p.st.Groups, g)
}

// tags: [ "Name", "Name": { key: "...", value: "..." }, ... ]
func (p *parser) parseGroupTags() []story.GroupTag {
	if _, ok := p.expect(lexer.TokenLBracket, "expected '[' to open tags"); !ok {
		return nil
	}
	var tags []story.GroupTag
	for p.err == nil && !p.check(lexer.TokenRBracket) {
		nameTok, ok := p.expect(lexer.TokenString, "expected tag name")
		if !ok {
			return nil
		}
		gt := story.GroupTag{Name: nameTok.Text}
		if p.match(lexer.TokenColon) {
			if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open tag value"); !ok {
				return nil
			}
			for p.err == nil && !p.check(lexer.TokenRBrace) {
				keyTok := p.peek()
				key, ok := keyName(keyTok)
				if !ok {
					p.errorf(keyTok, "expected key in tag value")
					return nil
				}
				p.advance()
				switch key {
				case "key":
					if _, ok := p.expect(lexer.TokenColon, "expected ':' after key"); !ok {
						return nil
					}
					tok, ok := p.expect(lexer.TokenString, "expected selected key")
					if !ok {
						return nil
					}
					gt.SelectedKey = tok.Text
				case "value":
					if _, ok := p.expect(lexer.TokenColon, "expected ':' after value"); !ok {
						return nil
					}
					tok, ok := p.expect(lexer.TokenString, "expected tag value")
					if !ok {
						return nil
					}
					gt.Value = tok.Text
				default:
					p.errorf(keyTok, "unexpected key %q in tag value", key)
					return nil
				}
				p.match(lexer.TokenComma)
			}
			if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close tag value"); !ok {
				return nil
			}
		}
		tags = append(tags, gt)
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBracket, "expected ']' to close tags")
	return tags
}

// nodes: { start: N, end: N, points: { N: [N, ...], ... } }
func (p *parser) parseNodeGraph() story.NodeGraph {
	var ng story.NodeGraph
	if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open nodes"); !ok {
		return ng
	}
	for p.err == nil && !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		key, ok := keyName(keyTok)
		if !ok {
			p.errorf(keyTok, "expected key in nodes body")
			return ng
		}
		p.advance()
		switch key {
		case "start":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after start"); !ok {
				return ng
			}
			tok, ok := p.expect(lexer.TokenInt, "expected start node id")
			if !ok {
				return ng
			}
			ng.Start = int(tok.Int)
		case "end":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after end"); !ok {
				return ng
			}
			tok, ok := p.expect(lexer.TokenInt, "expected end node id")
			if !ok {
				return ng
			}
			ng.End = int(tok.Int)
		case "points":
			if _, ok := p.expect(lexer.TokenColon, "expected ':' after points"); !ok {
				return ng
			}
			if _, ok := p.expect(lexer.TokenLBrace, "expected '{' to open points"); !ok {
				return ng
			}
			for p.err == nil && !p.check(lexer.TokenRBrace) {
				fromTok, ok := p.expect(lexer.TokenInt, "expected source node id")
				if !ok {
					return ng
				}
				if _, ok := p.expect(lexer.TokenColon, "expected ':' after source node id"); !ok {
					return ng
				}
				if _, ok := p.expect(lexer.TokenLBracket, "expected '[' to open point targets"); !ok {
					return ng
				}
				entry := story.PointEntry{From: int(fromTok.Int)}
				for p.err == nil && !p.check(lexer.TokenRBracket) {
					tok, ok := p.expect(lexer.TokenInt, "expected target node id")
					if !ok {
						return ng
					}
					entry.To = append(entry.To, int(tok.Int))
					p.match(lexer.TokenComma)
				}
				if _, ok := p.expect(lexer.TokenRBracket, "expected ']' to close point targets"); !ok {
					return ng
				}
				ng.Points = append(ng.Points, entry)
				p.match(lexer.TokenComma)
			}
			if _, ok := p.expect(lexer.TokenRBrace, "expected '}' to close points"); !ok {
				return ng
			}
		default:
			p.errorf(keyTok, "unexpected key %q in nodes body", key)
			return ng
		}
		p.match(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBrace, "expected '}' to close nodes")
	return ng
}
