package wings

import (
	"fmt"
	"strconv"
)

// The parser is recursive-descent over the token stream, producing statement
// and expression nodes for the tree-walking executor.

type stmt interface {
	pos() (line int, text string)
}

type stmtBase struct {
	line int
	text string
}

func (s stmtBase) pos() (int, string) { return s.line, s.text }

type (
	exprStmt struct {
		stmtBase
		x expr
	}
	assignStmt struct {
		stmtBase
		target expr
		value  expr
	}
	augAssignStmt struct {
		stmtBase
		target expr
		op     BinOp
		value  expr
	}
	ifStmt struct {
		stmtBase
		cond expr
		body []stmt
		alt  []stmt
	}
	whileStmt struct {
		stmtBase
		cond expr
		body []stmt
	}
	forStmt struct {
		stmtBase
		targets []string
		iter    expr
		body    []stmt
	}
	defStmt struct {
		stmtBase
		name     string
		params   []string
		defaults []expr
		varArgs  string
		kwArgs   string
		body     []stmt
	}
	classStmt struct {
		stmtBase
		name  string
		bases []expr
		body  []stmt
	}
	returnStmt struct {
		stmtBase
		value expr
	}
	breakStmt struct {
		stmtBase
	}
	continueStmt struct {
		stmtBase
	}
	passStmt struct {
		stmtBase
	}
	raiseStmt struct {
		stmtBase
		value expr
	}
	tryStmt struct {
		stmtBase
		body     []stmt
		handlers []exceptClause
		finally  []stmt
	}
	importStmt struct {
		stmtBase
		module string
		alias  string
	}
	fromImportStmt struct {
		stmtBase
		module string
		star   bool
		names  [][2]string
	}
)

type exceptClause struct {
	typ  expr
	name string
	body []stmt
}

type expr interface{ isExpr() }

type (
	nameExpr struct{ name string }
	intLit   struct{ v int64 }
	floatLit struct{ v float64 }
	strLit   struct{ v string }
	boolLit  struct{ v bool }
	noneLit  struct{}

	tupleExpr struct{ elems []expr }
	listExpr  struct{ elems []expr }
	mapExpr   struct{ keys, values []expr }
	setExpr   struct{ elems []expr }

	unaryExpr struct {
		op UnOp
		x  expr
	}
	binaryExpr struct {
		op   BinOp
		l, r expr
	}
	callExpr struct {
		fn       expr
		args     []expr
		kwNames  []string
		kwValues []expr
	}
	attrExpr struct {
		x    expr
		name string
	}
	indexExpr struct {
		x   expr
		idx expr
	}
	sliceExpr struct {
		lo, hi, step expr
	}
	lambdaExpr struct {
		params   []string
		defaults []expr
		body     expr
	}
)

func (nameExpr) isExpr()   {}
func (intLit) isExpr()     {}
func (floatLit) isExpr()   {}
func (strLit) isExpr()     {}
func (boolLit) isExpr()    {}
func (noneLit) isExpr()    {}
func (tupleExpr) isExpr()  {}
func (listExpr) isExpr()   {}
func (mapExpr) isExpr()    {}
func (setExpr) isExpr()    {}
func (unaryExpr) isExpr()  {}
func (binaryExpr) isExpr() {}
func (callExpr) isExpr()   {}
func (attrExpr) isExpr()   {}
func (indexExpr) isExpr()  {}
func (sliceExpr) isExpr()  {}
func (lambdaExpr) isExpr() {}

// parseError is a syntax failure with a source position.
type parseError struct {
	msg  string
	line int
	col  int
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

type parser struct {
	toks  []token
	i     int
	lines []string
}

func parseProgram(src string) ([]stmt, []string, error) {
	toks, lines, err := tokenize(src)
	if err != nil {
		return nil, lines, err
	}
	p := &parser{toks: toks, lines: lines}
	var stmts []stmt
	for p.peek().kind != tokEOF {
		s, err := p.statement()
		if err != nil {
			return nil, lines, err
		}
		stmts = append(stmts, s...)
	}
	return stmts, lines, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) atOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) atKeyword(text string) bool {
	t := p.peek()
	return t.kind == tokKeyword && t.text == text
}

func (p *parser) acceptOp(text string) bool {
	if p.atOp(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) acceptKeyword(text string) bool {
	if p.atKeyword(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectOp(text string) error {
	if !p.acceptOp(text) {
		t := p.peek()
		return &parseError{fmt.Sprintf("expected %q", text), t.line, t.col}
	}
	return nil
}

func (p *parser) expectNewline() error {
	t := p.peek()
	if t.kind != tokNewline && t.kind != tokEOF {
		return &parseError{"expected end of line", t.line, t.col}
	}
	if t.kind == tokNewline {
		p.next()
	}
	return nil
}

func (p *parser) expectIdent() (token, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return t, &parseError{"expected identifier", t.line, t.col}
	}
	return p.next(), nil
}

func (p *parser) base(t token) stmtBase {
	text := ""
	if t.line-1 < len(p.lines) {
		text = p.lines[t.line-1]
	}
	return stmtBase{line: t.line, text: text}
}

// statement parses one statement, which may expand to several simple
// statements on one line. Compound statements return a single element.
func (p *parser) statement() ([]stmt, error) {
	t := p.peek()
	if t.kind == tokKeyword {
		switch t.text {
		case "if":
			s, err := p.ifStatement()
			return wrap(s, err)
		case "while":
			s, err := p.whileStatement()
			return wrap(s, err)
		case "for":
			s, err := p.forStatement()
			return wrap(s, err)
		case "def":
			s, err := p.defStatement()
			return wrap(s, err)
		case "class":
			s, err := p.classStatement()
			return wrap(s, err)
		case "try":
			s, err := p.tryStatement()
			return wrap(s, err)
		}
	}
	s, err := p.simpleStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	return []stmt{s}, nil
}

func wrap(s stmt, err error) ([]stmt, error) {
	if err != nil {
		return nil, err
	}
	return []stmt{s}, nil
}

func (p *parser) simpleStatement() (stmt, error) {
	t := p.peek()
	if t.kind == tokKeyword {
		switch t.text {
		case "return":
			p.next()
			var v expr
			if p.peek().kind != tokNewline && p.peek().kind != tokEOF {
				var err error
				v, err = p.exprList()
				if err != nil {
					return nil, err
				}
			}
			return &returnStmt{p.base(t), v}, nil
		case "break":
			p.next()
			return &breakStmt{p.base(t)}, nil
		case "continue":
			p.next()
			return &continueStmt{p.base(t)}, nil
		case "pass":
			p.next()
			return &passStmt{p.base(t)}, nil
		case "raise":
			p.next()
			var v expr
			if p.peek().kind != tokNewline && p.peek().kind != tokEOF {
				var err error
				v, err = p.expression()
				if err != nil {
					return nil, err
				}
			}
			return &raiseStmt{p.base(t), v}, nil
		case "import":
			p.next()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			alias := name.text
			if p.acceptKeyword("as") {
				a, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				alias = a.text
			}
			return &importStmt{p.base(t), name.text, alias}, nil
		case "from":
			p.next()
			mod, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if !p.acceptKeyword("import") {
				tok := p.peek()
				return nil, &parseError{"expected 'import'", tok.line, tok.col}
			}
			if p.acceptOp("*") {
				return &fromImportStmt{p.base(t), mod.text, true, nil}, nil
			}
			var names [][2]string
			for {
				n, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				alias := n.text
				if p.acceptKeyword("as") {
					a, err := p.expectIdent()
					if err != nil {
						return nil, err
					}
					alias = a.text
				}
				names = append(names, [2]string{n.text, alias})
				if !p.acceptOp(",") {
					break
				}
			}
			return &fromImportStmt{p.base(t), mod.text, false, names}, nil
		}
	}

	target, err := p.exprList()
	if err != nil {
		return nil, err
	}
	for _, aug := range [...]struct {
		text string
		op   BinOp
	}{
		{"+=", BinOpAdd}, {"-=", BinOpSub}, {"*=", BinOpMul},
		{"/=", BinOpDiv}, {"//=", BinOpFloorDiv}, {"%=", BinOpMod},
	} {
		if p.atOp(aug.text) {
			p.next()
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := validTarget(target, t); err != nil {
				return nil, err
			}
			return &augAssignStmt{p.base(t), target, aug.op, value}, nil
		}
	}
	if p.acceptOp("=") {
		value, err := p.exprList()
		if err != nil {
			return nil, err
		}
		if err := validTarget(target, t); err != nil {
			return nil, err
		}
		return &assignStmt{p.base(t), target, value}, nil
	}
	return &exprStmt{p.base(t), target}, nil
}

func validTarget(e expr, t token) error {
	switch x := e.(type) {
	case nameExpr, *attrExpr, *indexExpr:
		return nil
	case *tupleExpr:
		for _, el := range x.elems {
			if _, ok := el.(nameExpr); !ok {
				return &parseError{"invalid assignment target", t.line, t.col}
			}
		}
		return nil
	}
	return &parseError{"invalid assignment target", t.line, t.col}
}

// suite parses a statement body: either an indented block or simple
// statements on the same line.
func (p *parser) suite() ([]stmt, error) {
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	if p.peek().kind != tokNewline {
		s, err := p.simpleStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectNewline(); err != nil {
			return nil, err
		}
		return []stmt{s}, nil
	}
	p.next()
	if p.peek().kind != tokIndent {
		t := p.peek()
		return nil, &parseError{"expected an indented block", t.line, t.col}
	}
	p.next()
	var body []stmt
	for p.peek().kind != tokDedent && p.peek().kind != tokEOF {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, s...)
	}
	if p.peek().kind == tokDedent {
		p.next()
	}
	return body, nil
}

func (p *parser) ifStatement() (stmt, error) {
	t := p.next()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	var alt []stmt
	if p.atKeyword("elif") {
		// Rewrite as a nested if in the else branch.
		nested, err := p.ifStatement()
		if err != nil {
			return nil, err
		}
		alt = []stmt{nested}
	} else if p.acceptKeyword("else") {
		alt, err = p.suite()
		if err != nil {
			return nil, err
		}
	}
	return &ifStmt{p.base(t), cond, body, alt}, nil
}

func (p *parser) whileStatement() (stmt, error) {
	t := p.next()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &whileStmt{p.base(t), cond, body}, nil
}

func (p *parser) forStatement() (stmt, error) {
	t := p.next()
	var targets []string
	for {
		n, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		targets = append(targets, n.text)
		if !p.acceptOp(",") {
			break
		}
	}
	if !p.acceptKeyword("in") {
		tok := p.peek()
		return nil, &parseError{"expected 'in'", tok.line, tok.col}
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &forStmt{p.base(t), targets, iter, body}, nil
}

// paramList parses a parameter declaration list up to the closing paren or
// colon: names, defaults declared from the tail, then *args and **kwargs.
func (p *parser) paramList(terminator string) (params []string, defaults []expr, varArgs, kwArgs string, err error) {
	for !p.atOp(terminator) {
		if p.acceptOp("**") {
			n, e := p.expectIdent()
			if e != nil {
				return nil, nil, "", "", e
			}
			kwArgs = n.text
		} else if p.acceptOp("*") {
			n, e := p.expectIdent()
			if e != nil {
				return nil, nil, "", "", e
			}
			varArgs = n.text
		} else {
			n, e := p.expectIdent()
			if e != nil {
				return nil, nil, "", "", e
			}
			if p.acceptOp("=") {
				d, e := p.expression()
				if e != nil {
					return nil, nil, "", "", e
				}
				defaults = append(defaults, d)
			} else if len(defaults) > 0 {
				return nil, nil, "", "", &parseError{"parameter without default follows parameter with default", n.line, n.col}
			}
			params = append(params, n.text)
		}
		if !p.acceptOp(",") {
			break
		}
	}
	return params, defaults, varArgs, kwArgs, nil
}

func (p *parser) defStatement() (stmt, error) {
	t := p.next()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	params, defaults, varArgs, kwArgs, err := p.paramList(")")
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &defStmt{p.base(t), name.text, params, defaults, varArgs, kwArgs, body}, nil
}

func (p *parser) classStatement() (stmt, error) {
	t := p.next()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var bases []expr
	if p.acceptOp("(") {
		for !p.atOp(")") {
			b, err := p.expression()
			if err != nil {
				return nil, err
			}
			bases = append(bases, b)
			if !p.acceptOp(",") {
				break
			}
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &classStmt{p.base(t), name.text, bases, body}, nil
}

func (p *parser) tryStatement() (stmt, error) {
	t := p.next()
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	var handlers []exceptClause
	for p.atKeyword("except") {
		p.next()
		var clause exceptClause
		if !p.atOp(":") {
			clause.typ, err = p.expression()
			if err != nil {
				return nil, err
			}
			if p.acceptKeyword("as") {
				n, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				clause.name = n.text
			}
		}
		clause.body, err = p.suite()
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, clause)
	}
	var finally []stmt
	if p.acceptKeyword("finally") {
		finally, err = p.suite()
		if err != nil {
			return nil, err
		}
	}
	if len(handlers) == 0 && finally == nil {
		return nil, &parseError{"expected 'except' or 'finally'", t.line, t.col}
	}
	return &tryStmt{p.base(t), body, handlers, finally}, nil
}

// exprList parses one or more comma-separated expressions, producing a tuple
// when there is more than one.
func (p *parser) exprList() (expr, error) {
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	elems := []expr{first}
	for p.acceptOp(",") {
		if p.peek().kind == tokNewline || p.atOp("=") || p.atOp(")") || p.atOp("]") || p.atOp("}") {
			break
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &tupleExpr{elems}, nil
}

func (p *parser) expression() (expr, error) { return p.orExpr() }

func (p *parser) orExpr() (expr, error) {
	l, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("or") {
		r, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		l = &binaryExpr{BinOpOr, l, r}
	}
	return l, nil
}

func (p *parser) andExpr() (expr, error) {
	l, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("and") {
		r, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		l = &binaryExpr{BinOpAnd, l, r}
	}
	return l, nil
}

func (p *parser) notExpr() (expr, error) {
	if p.acceptKeyword("not") {
		x, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{UnOpNot, x}, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (expr, error) {
	l, err := p.bitOr()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch {
		case p.acceptOp("=="):
			op = BinOpEq
		case p.acceptOp("!="):
			op = BinOpNe
		case p.acceptOp("<="):
			op = BinOpLe
		case p.acceptOp(">="):
			op = BinOpGe
		case p.acceptOp("<"):
			op = BinOpLt
		case p.acceptOp(">"):
			op = BinOpGt
		case p.atKeyword("in"):
			p.next()
			op = BinOpIn
		case p.atKeyword("not"):
			// "not in" is the only postfix use of not.
			save := p.i
			p.next()
			if !p.acceptKeyword("in") {
				p.i = save
				return l, nil
			}
			op = BinOpNotIn
		default:
			return l, nil
		}
		r, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		l = &binaryExpr{op, l, r}
	}
}

func (p *parser) bitOr() (expr, error) {
	return p.binaryLevel([]string{"|"}, []BinOp{BinOpBitOr}, p.bitXor)
}

func (p *parser) bitXor() (expr, error) {
	return p.binaryLevel([]string{"^"}, []BinOp{BinOpBitXor}, p.bitAnd)
}

func (p *parser) bitAnd() (expr, error) {
	return p.binaryLevel([]string{"&"}, []BinOp{BinOpBitAnd}, p.shiftExpr)
}

func (p *parser) shiftExpr() (expr, error) {
	return p.binaryLevel([]string{"<<", ">>"}, []BinOp{BinOpShl, BinOpShr}, p.arithExpr)
}

func (p *parser) arithExpr() (expr, error) {
	return p.binaryLevel([]string{"+", "-"}, []BinOp{BinOpAdd, BinOpSub}, p.term)
}

func (p *parser) term() (expr, error) {
	return p.binaryLevel(
		[]string{"*", "/", "//", "%"},
		[]BinOp{BinOpMul, BinOpDiv, BinOpFloorDiv, BinOpMod},
		p.unary,
	)
}

func (p *parser) binaryLevel(ops []string, kinds []BinOp, next func() (expr, error)) (expr, error) {
	l, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for i, op := range ops {
			if p.atOp(op) {
				p.next()
				r, err := next()
				if err != nil {
					return nil, err
				}
				l = &binaryExpr{kinds[i], l, r}
				matched = true
				break
			}
		}
		if !matched {
			return l, nil
		}
	}
}

func (p *parser) unary() (expr, error) {
	switch {
	case p.acceptOp("+"):
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{UnOpPos, x}, nil
	case p.acceptOp("-"):
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{UnOpNeg, x}, nil
	case p.acceptOp("~"):
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{UnOpInvert, x}, nil
	}
	return p.power()
}

func (p *parser) power() (expr, error) {
	l, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.acceptOp("**") {
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &binaryExpr{BinOpPow, l, r}, nil
	}
	return l, nil
}

func (p *parser) postfix() (expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.acceptOp("("):
			call := &callExpr{fn: x}
			for !p.atOp(")") {
				// A name followed by = introduces a keyword argument.
				if p.peek().kind == tokIdent && p.i+1 < len(p.toks) &&
					p.toks[p.i+1].kind == tokOp && p.toks[p.i+1].text == "=" {
					name := p.next().text
					p.next()
					v, err := p.expression()
					if err != nil {
						return nil, err
					}
					call.kwNames = append(call.kwNames, name)
					call.kwValues = append(call.kwValues, v)
				} else {
					a, err := p.expression()
					if err != nil {
						return nil, err
					}
					call.args = append(call.args, a)
				}
				if !p.acceptOp(",") {
					break
				}
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			x = call
		case p.acceptOp("."):
			n, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			x = &attrExpr{x, n.text}
		case p.acceptOp("["):
			idx, err := p.subscript()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			x = &indexExpr{x, idx}
		default:
			return x, nil
		}
	}
}

// subscript parses an index or a slice with optional bounds.
func (p *parser) subscript() (expr, error) {
	var lo, hi, step expr
	var err error
	if !p.atOp(":") {
		lo, err = p.expression()
		if err != nil {
			return nil, err
		}
		if !p.atOp(":") {
			return lo, nil
		}
	}
	p.next()
	if !p.atOp(":") && !p.atOp("]") {
		hi, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if p.acceptOp(":") {
		if !p.atOp("]") {
			step, err = p.expression()
			if err != nil {
				return nil, err
			}
		}
	}
	return &sliceExpr{lo, hi, step}, nil
}

func (p *parser) primary() (expr, error) {
	t := p.peek()
	switch t.kind {
	case tokInt:
		p.next()
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, &parseError{"integer literal out of range", t.line, t.col}
		}
		return intLit{v}, nil
	case tokFloat:
		p.next()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &parseError{"invalid float literal", t.line, t.col}
		}
		return floatLit{f}, nil
	case tokString:
		p.next()
		return strLit{t.text}, nil
	case tokIdent:
		p.next()
		return nameExpr{t.text}, nil
	case tokKeyword:
		switch t.text {
		case "None":
			p.next()
			return noneLit{}, nil
		case "True":
			p.next()
			return boolLit{true}, nil
		case "False":
			p.next()
			return boolLit{false}, nil
		case "lambda":
			p.next()
			params, defaults, _, _, err := p.paramList(":")
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(":"); err != nil {
				return nil, err
			}
			body, err := p.expression()
			if err != nil {
				return nil, err
			}
			return &lambdaExpr{params, defaults, body}, nil
		}
	case tokOp:
		switch t.text {
		case "(":
			p.next()
			if p.acceptOp(")") {
				return &tupleExpr{}, nil
			}
			first, err := p.expression()
			if err != nil {
				return nil, err
			}
			if p.atOp(",") {
				elems := []expr{first}
				for p.acceptOp(",") {
					if p.atOp(")") {
						break
					}
					e, err := p.expression()
					if err != nil {
						return nil, err
					}
					elems = append(elems, e)
				}
				if err := p.expectOp(")"); err != nil {
					return nil, err
				}
				return &tupleExpr{elems}, nil
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return first, nil
		case "[":
			p.next()
			var elems []expr
			for !p.atOp("]") {
				e, err := p.expression()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
				if !p.acceptOp(",") {
					break
				}
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			return &listExpr{elems}, nil
		case "{":
			p.next()
			if p.acceptOp("}") {
				return &mapExpr{}, nil
			}
			first, err := p.expression()
			if err != nil {
				return nil, err
			}
			if p.atOp(":") {
				m := &mapExpr{keys: []expr{first}}
				p.next()
				v, err := p.expression()
				if err != nil {
					return nil, err
				}
				m.values = append(m.values, v)
				for p.acceptOp(",") {
					if p.atOp("}") {
						break
					}
					k, err := p.expression()
					if err != nil {
						return nil, err
					}
					if err := p.expectOp(":"); err != nil {
						return nil, err
					}
					v, err := p.expression()
					if err != nil {
						return nil, err
					}
					m.keys = append(m.keys, k)
					m.values = append(m.values, v)
				}
				if err := p.expectOp("}"); err != nil {
					return nil, err
				}
				return m, nil
			}
			s := &setExpr{elems: []expr{first}}
			for p.acceptOp(",") {
				if p.atOp("}") {
					break
				}
				e, err := p.expression()
				if err != nil {
					return nil, err
				}
				s.elems = append(s.elems, e)
			}
			if err := p.expectOp("}"); err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	return nil, &parseError{fmt.Sprintf("unexpected %s", describeToken(t)), t.line, t.col}
}

func describeToken(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "end of line"
	case tokIndent:
		return "indent"
	case tokDedent:
		return "dedent"
	}
	return fmt.Sprintf("%q", t.text)
}
