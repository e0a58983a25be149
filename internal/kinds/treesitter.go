package kinds

// treeSitterGo maps node types of the tree-sitter Go grammar onto kinds.
// Types not listed here are structural and map to Unknown.
var treeSitterGo = map[string]Kind{
	"assignment_statement":        Assignment,
	"short_var_declaration":       Assignment,
	"inc_statement":               PostfixExpression,
	"dec_statement":               PostfixExpression,
	"unary_expression":            PrefixExpression,
	"binary_expression":           InfixExpression,
	"call_expression":             MethodInvocation,
	"selector_expression":         FieldAccess,
	"index_expression":            ArrayAccess,
	"slice_expression":            ArrayAccess,
	"type_conversion_expression":  CastExpression,
	"type_assertion_expression":   CastExpression,
	"composite_literal":           ClassInstanceCreation,
	"func_literal":                LambdaExpression,
	"int_literal":                 NumberLiteral,
	"float_literal":               NumberLiteral,
	"imaginary_literal":           NumberLiteral,
	"interpreted_string_literal":  StringLiteral,
	"raw_string_literal":          StringLiteral,
	"rune_literal":                CharacterLiteral,
	"true":                        BooleanLiteral,
	"false":                       BooleanLiteral,
	"nil":                         NullLiteral,
	"identifier":                  SimpleName,
	"field_identifier":            SimpleName,
	"if_statement":                IfStatement,
	"for_statement":               ForStatement,
	"expression_switch_statement": SwitchStatement,
	"type_switch_statement":       SwitchStatement,
	"return_statement":            ReturnStatement,
	"break_statement":             BreakStatement,
	"continue_statement":          ContinueStatement,
}

// FromTreeSitter returns the kind for a tree-sitter Go node type.
func FromTreeSitter(nodeType string) Kind {
	if k, ok := treeSitterGo[nodeType]; ok {
		return k
	}
	return Unknown
}
