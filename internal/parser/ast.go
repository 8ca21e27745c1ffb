package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"guardcheck/internal/token"
)

var statementNodes = map[string]bool{
	"compound_statement":   true,
	"expression_statement": true,
	"return_statement":     true,
	"if_statement":         true,
	"else_clause":          true,
	"while_statement":      true,
	"do_statement":         true,
	"for_statement":        true,
	"for_range_loop":       true,
	"switch_statement":     true,
	"case_statement":       true,
	"labeled_statement":    true,
	"try_statement":        true,
	"throw_statement":      true,
	"break_statement":      true,
	"continue_statement":   true,
	"goto_statement":       true,
	"declaration":          true,
}

// top walks file level nodes looking for function definitions and globals.
func (b *builder) top(n *sitter.Node) {
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "function_definition":
			b.function(child)
		case "declaration":
			b.declaration(child, token.VariableGlobal)
		case "field_declaration", "type_definition", "alias_declaration", "using_declaration":
		default:
			b.top(child)
		}
	}
}

func (b *builder) function(n *sitter.Node) {
	body := n.ChildByFieldName("body")
	if body == nil || body.Type() != "compound_statement" {
		return
	}

	fd := n.ChildByFieldName("declarator")
	for fd != nil && fd.Type() != "function_declarator" {
		fd = declaratorChild(fd)
	}

	b.pushBlock()
	defer b.popBlock()

	name := "anonymous"
	if fd != nil {
		if d := fd.ChildByFieldName("declarator"); d != nil {
			name = d.Content(b.src)
		}
		b.parameters(fd.ChildByFieldName("parameters"), token.VariableArgument)
	}

	b.list.AddScope(name, b.first(body), b.last(body))
	b.statement(body)
}

func (b *builder) parameters(list *sitter.Node, kind token.VariableKind) {
	for _, p := range namedChildren(list) {
		switch p.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
			b.declarator(p.ChildByFieldName("declarator"), b.first(p.ChildByFieldName("type")), kind)
		}
	}
}

// any dispatches a child of unknown role to statement or expression handling.
func (b *builder) any(n *sitter.Node) {
	if n == nil {
		return
	}
	if statementNodes[n.Type()] {
		b.statement(n)
		return
	}
	b.expr(n)
}

func (b *builder) statement(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "compound_statement":
		b.pushBlock()
		for _, child := range namedChildren(n) {
			b.any(child)
		}
		b.popBlock()

	case "declaration":
		b.declaration(n, token.VariableLocal)

	case "expression_statement":
		for _, child := range namedChildren(n) {
			b.expr(child)
		}

	case "return_statement", "throw_statement":
		kw := b.first(n)
		children := namedChildren(n)
		if len(children) > 0 {
			b.list.SetAST(kw, b.expr(children[0]), nil)
		}

	case "if_statement", "while_statement", "switch_statement":
		b.pushBlock()
		b.condition(b.first(n), n.ChildByFieldName("condition"))
		b.any(n.ChildByFieldName("consequence"))
		b.any(n.ChildByFieldName("body"))
		b.any(n.ChildByFieldName("alternative"))
		b.popBlock()

	case "do_statement":
		b.any(n.ChildByFieldName("body"))
		b.condition(b.leaf(n, "while"), n.ChildByFieldName("condition"))

	case "for_statement":
		b.pushBlock()
		body := n.ChildByFieldName("body")
		for _, child := range namedChildren(n) {
			if body != nil && child.StartByte() == body.StartByte() {
				continue
			}
			b.any(child)
		}
		b.any(body)
		b.popBlock()

	case "for_range_loop":
		b.pushBlock()
		b.expr(n.ChildByFieldName("right"))
		b.declarator(n.ChildByFieldName("declarator"), b.first(n.ChildByFieldName("type")), token.VariableLocal)
		b.any(n.ChildByFieldName("body"))
		b.popBlock()

	case "try_statement":
		b.any(n.ChildByFieldName("body"))
		for _, child := range namedChildren(n) {
			if child.Type() != "catch_clause" {
				continue
			}
			b.pushBlock()
			b.parameters(child.ChildByFieldName("parameters"), token.VariableThrow)
			b.any(child.ChildByFieldName("body"))
			b.popBlock()
		}

	default:
		for _, child := range namedChildren(n) {
			b.any(child)
		}
	}
}

// condition hangs the condition of a control statement on its "(" with the
// keyword as first operand.
func (b *builder) condition(kw *token.Token, cond *sitter.Node) {
	if cond == nil {
		return
	}
	open := b.first(cond)
	if open.Str() != "(" {
		b.any(cond)
		return
	}

	var value *sitter.Node
	switch cond.Type() {
	case "condition_clause":
		b.any(cond.ChildByFieldName("initializer"))
		value = cond.ChildByFieldName("value")
	default:
		if children := namedChildren(cond); len(children) > 0 {
			value = children[0]
		}
	}
	if value == nil {
		return
	}

	switch value.Type() {
	case "condition_declaration", "declaration":
		b.conditionDeclaration(value)
		return
	}
	b.list.SetAST(open, kw, b.expr(value))
}

func (b *builder) conditionDeclaration(n *sitter.Node) {
	typeStart := b.first(n.ChildByFieldName("type"))
	d := n.ChildByFieldName("declarator")
	root := b.declarator(d, typeStart, token.VariableLocal)
	if value := n.ChildByFieldName("value"); value != nil && root != nil {
		b.list.SetAST(b.leaf(n, "="), root, b.expr(value))
	}
}

func (b *builder) declaration(n *sitter.Node, kind token.VariableKind) {
	if kind == token.VariableLocal && b.isExtern(n) {
		kind = token.VariableGlobal
	}
	typeStart := b.first(n.ChildByFieldName("type"))
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) != "declarator" {
			continue
		}
		b.declarator(n.Child(i), typeStart, kind)
	}
}

func (b *builder) isExtern(n *sitter.Node) bool {
	for _, child := range namedChildren(n) {
		if child.Type() == "storage_class_specifier" && child.Content(b.src) == "extern" {
			return true
		}
	}
	return false
}

// declarator registers the declared variable and builds the AST of its
// array sizes and initializer. It returns the root of the declarator.
func (b *builder) declarator(d *sitter.Node, typeStart *token.Token, kind token.VariableKind) *token.Token {
	if d == nil {
		return nil
	}
	if d.Type() == "function_declarator" && kind == token.VariableLocal {
		if root := b.constructorCall(d, typeStart, kind); root != nil {
			return root
		}
	}
	if d.Type() == "init_declarator" {
		root := b.declarator(d.ChildByFieldName("declarator"), typeStart, kind)
		value := d.ChildByFieldName("value")
		if root == nil || value == nil {
			return root
		}
		if value.Type() == "argument_list" {
			b.list.SetAST(b.first(value), root, b.arguments(value))
		} else {
			b.list.SetAST(b.leaf(d, "="), root, b.expr(value))
		}
		return root
	}

	spec := token.VariableSpec{Kind: kind, TypeStart: typeStart}
	root := b.declaratorRoot(d, &spec)
	if spec.Name == nil {
		return root
	}
	if typeStart != nil && typeStart != spec.Name {
		spec.TypeEnd = spec.Name.Previous()
	} else {
		spec.TypeStart = nil
	}
	b.declare(b.list.AddVariable(spec))
	return root
}

// declaratorRoot follows nested declarators down to the name, recording
// pointer, reference and array flags on spec.
func (b *builder) declaratorRoot(d *sitter.Node, spec *token.VariableSpec) *token.Token {
	if d == nil {
		return nil
	}
	switch d.Type() {
	case "identifier":
		spec.Name = b.first(d)
		return spec.Name
	case "pointer_declarator":
		spec.Pointer = true
	case "reference_declarator":
		spec.Reference = true
	case "array_declarator":
		spec.Array = true
		inner := b.declaratorRoot(d.ChildByFieldName("declarator"), spec)
		var size *token.Token
		if s := d.ChildByFieldName("size"); s != nil {
			size = b.expr(s)
		}
		open := b.leaf(d, "[")
		b.list.SetAST(open, inner, size)
		return open
	case "function_declarator":
		// "(*fp)()" declares a pointer to function, "f()" a prototype
		inner := d.ChildByFieldName("declarator")
		if inner == nil || inner.Type() != "parenthesized_declarator" {
			return nil
		}
		switch child := declaratorChild(inner); {
		case child == nil:
			return nil
		case child.Type() != "pointer_declarator" && child.Type() != "reference_declarator":
			return nil
		}
		return b.declaratorRoot(inner, spec)
	case "abstract_function_declarator":
		return nil
	}
	return b.declaratorRoot(declaratorChild(d), spec)
}

// constructorCall lowers "T v(a, b);" in a block, which the grammar reads
// as a function declaration, as the variable v constructed from a and b.
// Every parameter must be a bare name bound to a variable in scope; anything
// else stays a prototype and nil is returned.
func (b *builder) constructorCall(d *sitter.Node, typeStart *token.Token, kind token.VariableKind) *token.Token {
	name := d.ChildByFieldName("declarator")
	params := d.ChildByFieldName("parameters")
	if name == nil || name.Type() != "identifier" || params == nil {
		return nil
	}
	var args []*token.Token
	for _, param := range namedChildren(params) {
		typ := param.ChildByFieldName("type")
		if param.Type() != "parameter_declaration" || param.ChildByFieldName("declarator") != nil ||
			typ == nil || typ.Type() != "type_identifier" || b.lookup(typ.Content(b.src)) == nil {
			return nil
		}
		args = append(args, b.first(typ))
	}
	if len(args) == 0 {
		return nil
	}

	for _, arg := range args {
		b.bind(arg)
	}
	root := b.declarator(name, typeStart, kind)
	commas := b.leaves(params, ",")
	argRoot := args[0]
	for i := 1; i < len(args) && i-1 < len(commas); i++ {
		b.list.SetAST(commas[i-1], argRoot, args[i])
		argRoot = commas[i-1]
	}
	b.list.SetAST(b.first(params), root, argRoot)
	return root
}

func declaratorChild(d *sitter.Node) *sitter.Node {
	if inner := d.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	children := namedChildren(d)
	for i := len(children) - 1; i >= 0; i-- {
		switch children[i].Type() {
		case "type_qualifier", "ms_pointer_modifier", "attribute_declaration":
			continue
		}
		return children[i]
	}
	return nil
}

// arguments folds the arguments of a list into a "," operator tree and
// returns its root, nil for an empty list.
func (b *builder) arguments(list *sitter.Node) *token.Token {
	children := namedChildren(list)
	if len(children) == 0 {
		return nil
	}
	commas := b.leaves(list, ",")
	root := b.expr(children[0])
	for i := 1; i < len(children); i++ {
		arg := b.expr(children[i])
		if i-1 >= len(commas) {
			continue
		}
		b.list.SetAST(commas[i-1], root, arg)
		root = commas[i-1]
	}
	return root
}

// expr builds the AST of an expression and returns its root token.
func (b *builder) expr(n *sitter.Node) *token.Token {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		tok := b.first(n)
		b.bind(tok)
		return tok

	case "field_identifier", "type_identifier", "primitive_type", "namespace_identifier",
		"number_literal", "string_literal", "char_literal", "raw_string_literal",
		"concatenated_string", "user_defined_literal", "true", "false", "null", "nullptr",
		"this", "sized_type_specifier", "destructor_name", "operator_name":
		return b.first(n)

	case "parenthesized_expression":
		children := namedChildren(n)
		if len(children) == 0 {
			return nil
		}
		return b.expr(children[0])

	case "qualified_identifier":
		colon := b.leaf(n, "::")
		var scope *token.Token
		if s := n.ChildByFieldName("scope"); s != nil {
			scope = b.first(s)
		}
		name := b.qualifiedName(n.ChildByFieldName("name"))
		b.list.SetAST(colon, scope, name)
		if scope == nil {
			b.list.SetAST(colon, name, nil)
		}
		return colon

	case "template_function", "template_method", "template_type":
		return b.expr(n.ChildByFieldName("name"))

	case "field_expression":
		op := b.first(n.ChildByFieldName("operator"))
		if op.Str() == "->" {
			b.list.Normalize(op, ".")
		}
		base := b.expr(n.ChildByFieldName("argument"))
		field := n.ChildByFieldName("field")
		if field != nil && field.Type() == "template_method" {
			field = field.ChildByFieldName("name")
		}
		b.list.SetAST(op, base, b.first(field))
		return op

	case "call_expression":
		callee := b.expr(n.ChildByFieldName("function"))
		args := n.ChildByFieldName("arguments")
		open := b.first(args)
		if open.Str() != "(" {
			b.expr(args)
			return callee
		}
		b.list.SetAST(open, callee, b.arguments(args))
		return open

	case "argument_list":
		open := b.first(n)
		b.list.SetAST(open, b.arguments(n), nil)
		return open

	case "subscript_expression":
		base := b.expr(n.ChildByFieldName("argument"))
		open := b.leaf(n, "[")
		index := n.ChildByFieldName("index")
		if indices := n.ChildByFieldName("indices"); indices != nil {
			open = b.leaf(indices, "[")
			if children := namedChildren(indices); len(children) > 0 {
				index = children[0]
			}
		}
		b.list.SetAST(open, base, b.expr(index))
		return open

	case "pointer_expression", "unary_expression", "update_expression":
		op := b.first(n.ChildByFieldName("operator"))
		b.list.SetAST(op, b.expr(n.ChildByFieldName("argument")), nil)
		return op

	case "binary_expression", "assignment_expression":
		op := b.first(n.ChildByFieldName("operator"))
		left := b.expr(n.ChildByFieldName("left"))
		right := b.expr(n.ChildByFieldName("right"))
		b.list.SetAST(op, left, right)
		return op

	case "comma_expression":
		op := b.leaf(n, ",")
		left := b.expr(n.ChildByFieldName("left"))
		right := b.expr(n.ChildByFieldName("right"))
		b.list.SetAST(op, left, right)
		return op

	case "conditional_expression":
		question, colon := b.leaf(n, "?"), b.leaf(n, ":")
		cond := b.expr(n.ChildByFieldName("condition"))
		b.list.SetAST(colon, b.expr(n.ChildByFieldName("consequence")), b.expr(n.ChildByFieldName("alternative")))
		b.list.SetAST(question, cond, colon)
		return question

	case "cast_expression":
		open := b.first(n)
		b.list.SetAST(open, b.expr(n.ChildByFieldName("value")), nil)
		return open

	case "sizeof_expression", "alignof_expression":
		kw := b.first(n)
		if value := n.ChildByFieldName("value"); value != nil {
			if value.Type() == "parenthesized_expression" {
				open := b.first(value)
				b.list.SetAST(open, kw, b.expr(value))
				return open
			}
			b.list.SetAST(kw, b.expr(value), nil)
			return kw
		}
		open := b.leaf(n, "(")
		b.list.SetAST(open, kw, nil)
		return open

	case "new_expression":
		kw := b.leaf(n, "new")
		typeTok := b.first(n.ChildByFieldName("type"))
		args := n.ChildByFieldName("arguments")
		if args != nil && args.Type() == "argument_list" {
			open := b.first(args)
			b.list.SetAST(open, typeTok, b.arguments(args))
			b.list.SetAST(kw, open, nil)
			return kw
		}
		b.expr(args)
		b.list.SetAST(kw, typeTok, nil)
		return kw

	case "delete_expression":
		kw := b.leaf(n, "delete")
		children := namedChildren(n)
		if len(children) > 0 {
			b.list.SetAST(kw, b.expr(children[len(children)-1]), nil)
		}
		return kw

	case "initializer_list":
		open := b.first(n)
		b.list.SetAST(open, b.arguments(n), nil)
		return open

	case "compound_literal_expression":
		return b.expr(n.ChildByFieldName("value"))

	case "lambda_expression":
		b.pushBlock()
		if d := n.ChildByFieldName("declarator"); d != nil {
			b.parameters(d.ChildByFieldName("parameters"), token.VariableArgument)
		}
		b.statement(n.ChildByFieldName("body"))
		b.popBlock()
		return nil

	case "comment":
		return nil
	}

	for _, child := range namedChildren(n) {
		b.any(child)
	}
	return nil
}

// qualifiedName returns the token for the name part of a qualified
// identifier without binding it: std::x never resolves to a local x.
func (b *builder) qualifiedName(n *sitter.Node) *token.Token {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "qualified_identifier":
		return b.expr(n)
	case "template_function", "template_type", "template_method":
		return b.first(n.ChildByFieldName("name"))
	}
	return b.first(n)
}
