package extractor

import (
	"cpatminer/internal/graph"
	"cpatminer/internal/kinds"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor implements LanguageExtractor for Go.
type GoExtractor struct{}

func (g *GoExtractor) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) GetQuery() string {
	return `
		(function_declaration) @func
		(method_declaration) @func
	`
}

func (g *GoExtractor) ExtractFunction(node *sitter.Node, sourceCode []byte) *Function {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return nil
	}

	name := nameNode.Content(sourceCode)
	receiver := ""
	if node.Type() == "method_declaration" {
		receiver = g.receiverType(node.ChildByFieldName("receiver"), sourceCode)
	}

	return &Function{
		Key:       FunctionKey(name, receiver),
		Name:      name,
		Receiver:  receiver,
		StartLine: int(node.StartPoint().Row + 1),
		EndLine:   int(node.EndPoint().Row + 1),
		BodyHash:  BodyHash(body.Content(sourceCode)),
		body:      body,
		src:       sourceCode,
	}
}

func (g *GoExtractor) receiverType(params *sitter.Node, sourceCode []byte) string {
	if params == nil {
		return ""
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		if tn := p.ChildByFieldName("type"); tn != nil {
			return tn.Content(sourceCode)
		}
	}
	return ""
}

func (g *GoExtractor) WalkBody(d *graph.Descriptor, body *sitter.Node, sourceCode []byte, version graph.Version) {
	if body == nil {
		return
	}
	w := &goWalker{
		src:     sourceCode,
		version: version,
		d:       d,
		vars:    make(map[string]int),
	}
	w.statements(body)
}

// goWalker appends the nodes and dependency edges of one function body.
// vars tracks the latest node that defined each local name.
type goWalker struct {
	src     []byte
	version graph.Version
	d       *graph.Descriptor
	vars    map[string]int
	control []int
}

func (w *goWalker) add(label string, kind kinds.Kind) int {
	w.d.Nodes = append(w.d.Nodes, graph.NodeSpec{Label: label, Kind: int(kind), Version: int(w.version)})
	return len(w.d.Nodes) - 1
}

func (w *goWalker) link(src, dst int, label graph.EdgeKind) {
	if src < 0 || dst < 0 {
		return
	}
	w.d.Edges = append(w.d.Edges, graph.EdgeSpec{Src: src, Dst: dst, Label: string(label)})
}

func (w *goWalker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

func (w *goWalker) list(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() != "expression_list" {
		return []*sitter.Node{n}
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// statements walks a statement sequence; every statement node is control
// dependent on the innermost enclosing control node.
func (w *goWalker) statements(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "comment":
			continue
		case "block", "statement_list":
			w.statements(c)
			continue
		}
		idx := w.statement(c)
		if len(w.control) > 0 {
			w.link(w.control[len(w.control)-1], idx, graph.EdgeControl)
		}
	}
}

func (w *goWalker) underControl(parent int, body *sitter.Node) {
	if body == nil {
		return
	}
	w.control = append(w.control, parent)
	w.statements(body)
	w.control = w.control[:len(w.control)-1]
}

func (w *goWalker) statement(n *sitter.Node) int {
	switch n.Type() {
	case "expression_statement", "go_statement", "defer_statement":
		if n.NamedChildCount() == 0 {
			return -1
		}
		return w.expr(n.NamedChild(0))

	case "assignment_statement":
		op := "="
		if opNode := n.ChildByFieldName("operator"); opNode != nil {
			op = w.text(opNode)
		}
		return w.assignment(n.ChildByFieldName("left"), n.ChildByFieldName("right"), op)

	case "short_var_declaration":
		return w.assignment(n.ChildByFieldName("left"), n.ChildByFieldName("right"), ":=")

	case "var_declaration":
		last := -1
		for i := 0; i < int(n.NamedChildCount()); i++ {
			spec := n.NamedChild(i)
			if spec.Type() != "var_spec" || spec.ChildByFieldName("value") == nil {
				continue
			}
			last = w.assignment(spec.ChildByFieldName("name"), spec.ChildByFieldName("value"), "=")
		}
		return last

	case "inc_statement", "dec_statement":
		op := "++"
		if n.Type() == "dec_statement" {
			op = "--"
		}
		idx := w.add(op, kinds.PostfixExpression)
		if n.NamedChildCount() > 0 {
			w.link(w.expr(n.NamedChild(0)), idx, graph.EdgeParameter)
		}
		return idx

	case "if_statement":
		return w.ifStatement(n)

	case "for_statement":
		return w.forStatement(n)

	case "expression_switch_statement", "type_switch_statement":
		return w.switchStatement(n)

	case "return_statement":
		idx := w.add("return", kinds.ReturnStatement)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			for _, e := range w.list(n.NamedChild(i)) {
				w.link(w.expr(e), idx, graph.EdgeParameter)
			}
		}
		return idx

	case "break_statement":
		return w.add("break", kinds.BreakStatement)

	case "continue_statement":
		return w.add("continue", kinds.ContinueStatement)

	case "labeled_statement":
		if n.NamedChildCount() < 2 {
			return -1
		}
		return w.statement(n.NamedChild(int(n.NamedChildCount()) - 1))

	case "block":
		w.statements(n)
		return -1
	}
	return w.expr(n)
}

// assignment links every right-hand value into the operator node and the
// operator node to every assigned target.
func (w *goWalker) assignment(left, right *sitter.Node, op string) int {
	idx := w.add(op, kinds.Assignment)
	for _, r := range w.list(right) {
		w.link(w.expr(r), idx, graph.EdgeParameter)
	}

	compound := op != "=" && op != ":="
	for _, l := range w.list(left) {
		if l.Type() != "identifier" {
			w.link(idx, w.expr(l), graph.EdgeDefinition)
			continue
		}
		name := w.text(l)
		if name == "_" {
			continue
		}
		if prev, ok := w.vars[name]; ok && compound {
			w.link(prev, idx, graph.EdgeParameter)
		}
		target := w.add(name, kinds.SimpleName)
		w.vars[name] = target
		w.link(idx, target, graph.EdgeDefinition)
	}
	return idx
}

func (w *goWalker) ifStatement(n *sitter.Node) int {
	idx := w.add("if", kinds.IfStatement)
	if init := n.ChildByFieldName("initializer"); init != nil {
		w.statement(init)
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		w.link(w.expr(cond), idx, graph.EdgeCondition)
	}
	w.underControl(idx, n.ChildByFieldName("consequence"))
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		if alt.Type() == "if_statement" {
			w.link(idx, w.ifStatement(alt), graph.EdgeControl)
		} else {
			w.underControl(idx, alt)
		}
	}
	return idx
}

func (w *goWalker) forStatement(n *sitter.Node) int {
	body := n.ChildByFieldName("body")
	var header *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != "block" && c.Type() != "comment" {
			header = c
			break
		}
	}

	kind := kinds.ForStatement
	if header != nil && header.Type() == "range_clause" {
		kind = kinds.EnhancedForStatement
	}
	idx := w.add("for", kind)

	switch {
	case header == nil:
	case header.Type() == "for_clause":
		if init := header.ChildByFieldName("initializer"); init != nil {
			w.statement(init)
		}
		if cond := header.ChildByFieldName("condition"); cond != nil {
			w.link(w.expr(cond), idx, graph.EdgeCondition)
		}
		if update := header.ChildByFieldName("update"); update != nil {
			w.link(idx, w.statement(update), graph.EdgeControl)
		}
	case header.Type() == "range_clause":
		w.link(w.expr(header.ChildByFieldName("right")), idx, graph.EdgeCondition)
		for _, l := range w.list(header.ChildByFieldName("left")) {
			name := w.text(l)
			if l.Type() != "identifier" || name == "_" {
				continue
			}
			target := w.add(name, kinds.SimpleName)
			w.vars[name] = target
			w.link(idx, target, graph.EdgeDefinition)
		}
	default:
		w.link(w.expr(header), idx, graph.EdgeCondition)
	}

	w.underControl(idx, body)
	return idx
}

func (w *goWalker) switchStatement(n *sitter.Node) int {
	idx := w.add("switch", kinds.SwitchStatement)
	if init := n.ChildByFieldName("initializer"); init != nil {
		w.statement(init)
	}
	if value := n.ChildByFieldName("value"); value != nil {
		w.link(w.expr(value), idx, graph.EdgeCondition)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "expression_case", "type_case", "default_case":
		default:
			continue
		}
		w.control = append(w.control, idx)
		for j := 0; j < int(c.ChildCount()); j++ {
			s := c.Child(j)
			if !s.IsNamed() || s.Type() == "comment" {
				continue
			}
			switch c.FieldNameForChild(j) {
			case "value":
				for _, v := range w.list(s) {
					w.link(w.expr(v), idx, graph.EdgeCondition)
				}
				continue
			case "type":
				continue
			}
			if s.Type() == "statement_list" {
				w.statements(s)
				continue
			}
			w.link(idx, w.statement(s), graph.EdgeControl)
		}
		w.control = w.control[:len(w.control)-1]
	}
	return idx
}

func (w *goWalker) expr(n *sitter.Node) int {
	if n == nil {
		return -1
	}
	if k := kinds.FromTreeSitter(n.Type()); k.IsLiteral() {
		return w.add(w.text(n), k)
	}

	switch n.Type() {
	case "identifier":
		name := w.text(n)
		idx := w.add(name, kinds.SimpleName)
		if prev, ok := w.vars[name]; ok {
			w.link(prev, idx, graph.EdgeReference)
		}
		return idx

	case "field_identifier", "package_identifier":
		return w.add(w.text(n), kinds.SimpleName)

	case "type_identifier", "qualified_type", "pointer_type", "slice_type", "map_type", "generic_type":
		return w.add(w.text(n), kinds.SimpleType)

	case "parenthesized_expression":
		if n.NamedChildCount() == 0 {
			return -1
		}
		return w.expr(n.NamedChild(0))

	case "call_expression":
		return w.call(n)

	case "selector_expression":
		idx := w.add(w.text(n.ChildByFieldName("field")), kinds.FieldAccess)
		w.link(w.expr(n.ChildByFieldName("operand")), idx, graph.EdgeQualifier)
		return idx

	case "binary_expression":
		idx := w.add(w.text(n.ChildByFieldName("operator")), kinds.InfixExpression)
		w.link(w.expr(n.ChildByFieldName("left")), idx, graph.EdgeParameter)
		w.link(w.expr(n.ChildByFieldName("right")), idx, graph.EdgeParameter)
		return idx

	case "unary_expression":
		op := w.text(n.ChildByFieldName("operator"))
		operand := w.expr(n.ChildByFieldName("operand"))
		switch op {
		case "-", "+", "!", "^":
			idx := w.add(op, kinds.PrefixExpression)
			w.link(operand, idx, graph.EdgeParameter)
			return idx
		}
		// &x, *p and <-ch stand for their operand.
		return operand

	case "index_expression":
		idx := w.add("[]", kinds.ArrayAccess)
		w.link(w.expr(n.ChildByFieldName("operand")), idx, graph.EdgeParameter)
		w.link(w.expr(n.ChildByFieldName("index")), idx, graph.EdgeParameter)
		return idx

	case "slice_expression":
		idx := w.add("[:]", kinds.ArrayAccess)
		for _, field := range []string{"operand", "start", "end", "capacity"} {
			w.link(w.expr(n.ChildByFieldName(field)), idx, graph.EdgeParameter)
		}
		return idx

	case "type_assertion_expression":
		idx := w.add(".("+w.text(n.ChildByFieldName("type"))+")", kinds.CastExpression)
		w.link(w.expr(n.ChildByFieldName("operand")), idx, graph.EdgeParameter)
		return idx

	case "type_conversion_expression":
		idx := w.add(w.text(n.ChildByFieldName("type")), kinds.CastExpression)
		w.link(w.expr(n.ChildByFieldName("operand")), idx, graph.EdgeParameter)
		return idx

	case "composite_literal":
		idx := w.add(w.text(n.ChildByFieldName("type")), kinds.ClassInstanceCreation)
		w.elements(n.ChildByFieldName("body"), idx)
		return idx

	case "literal_value":
		idx := w.add("{}", kinds.ArrayInitializer)
		w.elements(n, idx)
		return idx

	case "literal_element":
		if n.NamedChildCount() == 0 {
			return -1
		}
		return w.expr(n.NamedChild(0))

	case "keyed_element":
		if n.NamedChildCount() == 0 {
			return -1
		}
		return w.expr(n.NamedChild(int(n.NamedChildCount()) - 1))

	case "func_literal":
		idx := w.add("func", kinds.LambdaExpression)
		w.underControl(idx, n.ChildByFieldName("body"))
		return idx
	}

	// Structural nodes contribute their last value-producing child.
	last := -1
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if idx := w.expr(n.NamedChild(i)); idx >= 0 {
			last = idx
		}
	}
	return last
}

// call labels a call by the called function's name. The receiver of a method
// call and each argument feed into the call node.
func (w *goWalker) call(n *sitter.Node) int {
	fn := n.ChildByFieldName("function")
	var idx int
	switch {
	case fn == nil:
		idx = w.add("()", kinds.MethodInvocation)
	case fn.Type() == "selector_expression":
		idx = w.add(w.text(fn.ChildByFieldName("field")), kinds.MethodInvocation)
		w.link(w.expr(fn.ChildByFieldName("operand")), idx, graph.EdgeReceiver)
	case fn.Type() == "identifier":
		idx = w.add(w.text(fn), kinds.MethodInvocation)
	default:
		idx = w.add("()", kinds.MethodInvocation)
		w.link(w.expr(fn), idx, graph.EdgeQualifier)
	}

	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			a := args.NamedChild(i)
			if a.Type() == "comment" {
				continue
			}
			w.link(w.expr(a), idx, graph.EdgeParameter)
		}
	}
	return idx
}

func (w *goWalker) elements(body *sitter.Node, parent int) {
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		w.link(w.expr(c), parent, graph.EdgeParameter)
	}
}
