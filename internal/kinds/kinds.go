// Package kinds enumerates the syntax-node kinds a change node can originate from.
//
// Values follow the JDT ASTNode numbering used by the change-graph producers, so
// descriptors written by other tools keep their integer kinds unchanged.
package kinds

import "strconv"

// Kind is a syntax-node kind.
type Kind int

const (
	Unknown                       Kind = 0
	AnonymousClassDeclaration     Kind = 1
	ArrayAccess                   Kind = 2
	ArrayCreation                 Kind = 3
	ArrayInitializer              Kind = 4
	AssertStatement               Kind = 6
	Assignment                    Kind = 7
	Block                         Kind = 8
	BooleanLiteral                Kind = 9
	BreakStatement                Kind = 10
	CastExpression                Kind = 11
	CatchClause                   Kind = 12
	CharacterLiteral              Kind = 13
	ClassInstanceCreation         Kind = 14
	ConditionalExpression         Kind = 16
	ConstructorInvocation         Kind = 17
	ContinueStatement             Kind = 18
	DoStatement                   Kind = 19
	ExpressionStatement           Kind = 21
	FieldAccess                   Kind = 22
	ForStatement                  Kind = 24
	IfStatement                   Kind = 25
	InfixExpression               Kind = 27
	MethodDeclaration             Kind = 31
	MethodInvocation              Kind = 32
	NullLiteral                   Kind = 33
	NumberLiteral                 Kind = 34
	ParenthesizedExpression       Kind = 36
	PostfixExpression             Kind = 37
	PrefixExpression              Kind = 38
	QualifiedName                 Kind = 40
	ReturnStatement               Kind = 41
	SimpleName                    Kind = 42
	SimpleType                    Kind = 43
	StringLiteral                 Kind = 45
	SuperConstructorInvocation    Kind = 46
	SuperFieldAccess              Kind = 47
	SuperMethodInvocation         Kind = 48
	SwitchCase                    Kind = 49
	SwitchStatement               Kind = 50
	SynchronizedStatement         Kind = 51
	ThisExpression                Kind = 52
	ThrowStatement                Kind = 53
	TryStatement                  Kind = 54
	TypeLiteral                   Kind = 57
	VariableDeclarationExpression Kind = 58
	VariableDeclarationStatement  Kind = 59
	VariableDeclarationFragment   Kind = 60
	WhileStatement                Kind = 61
	InstanceofExpression          Kind = 62
	EnhancedForStatement          Kind = 70
	LambdaExpression              Kind = 86
)

var names = map[Kind]string{
	Unknown:                       "Unknown",
	AnonymousClassDeclaration:     "AnonymousClassDeclaration",
	ArrayAccess:                   "ArrayAccess",
	ArrayCreation:                 "ArrayCreation",
	ArrayInitializer:              "ArrayInitializer",
	AssertStatement:               "AssertStatement",
	Assignment:                    "Assignment",
	Block:                         "Block",
	BooleanLiteral:                "BooleanLiteral",
	BreakStatement:                "BreakStatement",
	CastExpression:                "CastExpression",
	CatchClause:                   "CatchClause",
	CharacterLiteral:              "CharacterLiteral",
	ClassInstanceCreation:         "ClassInstanceCreation",
	ConditionalExpression:         "ConditionalExpression",
	ConstructorInvocation:         "ConstructorInvocation",
	ContinueStatement:             "ContinueStatement",
	DoStatement:                   "DoStatement",
	ExpressionStatement:           "ExpressionStatement",
	FieldAccess:                   "FieldAccess",
	ForStatement:                  "ForStatement",
	IfStatement:                   "IfStatement",
	InfixExpression:               "InfixExpression",
	MethodDeclaration:             "MethodDeclaration",
	MethodInvocation:              "MethodInvocation",
	NullLiteral:                   "NullLiteral",
	NumberLiteral:                 "NumberLiteral",
	ParenthesizedExpression:       "ParenthesizedExpression",
	PostfixExpression:             "PostfixExpression",
	PrefixExpression:              "PrefixExpression",
	QualifiedName:                 "QualifiedName",
	ReturnStatement:               "ReturnStatement",
	SimpleName:                    "SimpleName",
	SimpleType:                    "SimpleType",
	StringLiteral:                 "StringLiteral",
	SuperConstructorInvocation:    "SuperConstructorInvocation",
	SuperFieldAccess:              "SuperFieldAccess",
	SuperMethodInvocation:         "SuperMethodInvocation",
	SwitchCase:                    "SwitchCase",
	SwitchStatement:               "SwitchStatement",
	SynchronizedStatement:         "SynchronizedStatement",
	ThisExpression:                "ThisExpression",
	ThrowStatement:                "ThrowStatement",
	TryStatement:                  "TryStatement",
	TypeLiteral:                   "TypeLiteral",
	VariableDeclarationExpression: "VariableDeclarationExpression",
	VariableDeclarationStatement:  "VariableDeclarationStatement",
	VariableDeclarationFragment:   "VariableDeclarationFragment",
	WhileStatement:                "WhileStatement",
	InstanceofExpression:          "InstanceofExpression",
	EnhancedForStatement:          "EnhancedForStatement",
	LambdaExpression:              "LambdaExpression",
}

// String returns the kind name, or Kind(n) for values outside the enumeration.
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Known reports whether k is a member of the enumeration.
func (k Kind) Known() bool {
	_, ok := names[k]
	return ok
}

// ID is the normalized label used for core action nodes.
func (k Kind) ID() string {
	return strconv.Itoa(int(k))
}

func (k Kind) IsAssignment() bool {
	return k == Assignment
}

// IsUnary reports prefix and postfix expressions.
func (k Kind) IsUnary() bool {
	return k == PrefixExpression || k == PostfixExpression
}

func (k Kind) IsLiteral() bool {
	switch k {
	case BooleanLiteral, CharacterLiteral, NullLiteral, NumberLiteral, StringLiteral, TypeLiteral:
		return true
	}
	return false
}

// IsCoreAction reports kinds whose identity, not their source text, is what
// matters when two nodes are matched.
func (k Kind) IsCoreAction() bool {
	switch k {
	case Assignment, InfixExpression, PrefixExpression, PostfixExpression,
		ConditionalExpression, InstanceofExpression, CastExpression,
		ArrayAccess, ArrayCreation,
		IfStatement, ForStatement, EnhancedForStatement, WhileStatement, DoStatement,
		SwitchStatement, TryStatement, ThrowStatement, ReturnStatement,
		BreakStatement, ContinueStatement, SynchronizedStatement, AssertStatement,
		LambdaExpression:
		return true
	}
	return false
}
