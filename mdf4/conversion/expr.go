// Package conversion compiles an MDF4 channel's conversion block tree into a
// flat postfix expression and folds that expression into a human-readable
// display string. Evaluating the expression against actual sample values is
// out of scope; this package only compiles and displays it.
package conversion

// Kind discriminates the closed node vocabulary an Expression is built from.
type Kind int

const (
	// KindArg is the channel's raw numeric value.
	KindArg Kind = iota
	// KindValue is a literal f64.
	KindValue
	// KindValues is a literal f64 vector, used as lookup keys.
	KindValues
	// KindText is a literal string sourced from a ##TX child.
	KindText
	// KindGroup marks the previous N pushed items as one function call's
	// argument tuple, flattening any nested stacks into one argument list.
	KindGroup
	// KindFunctionCall consumes the last Group's items and produces one item.
	KindFunctionCall
)

// Node is one element of a compiled Expression.
type Node struct {
	Kind Kind

	Value    float64   // KindValue
	Values   []float64 // KindValues
	Text     string    // KindText
	Group    uint32    // KindGroup: count of preceding items it collects
	FuncName string    // KindFunctionCall
}

// Expression is a flat sequence of Nodes in postfix order.
type Expression []Node

func argNode() Expression       { return Expression{{Kind: KindArg}} }
func valueNode(v float64) Expression {
	return Expression{{Kind: KindValue, Value: v}}
}
func valuesNode(v []float64) Expression {
	return Expression{{Kind: KindValues, Values: v}}
}
func textNode(s string) Expression { return Expression{{Kind: KindText, Text: s}} }

// call concatenates each arg expression, appends a Group sized to len(args),
// then a FunctionCall node — the generic postfix shape for any n-ary
// function, including the binary arithmetic operators.
func call(name string, args ...Expression) Expression {
	out := make(Expression, 0, len(args)+2)
	for _, a := range args {
		out = append(out, a...)
	}

	out = append(out, Node{Kind: KindGroup, Group: uint32(len(args))})
	out = append(out, Node{Kind: KindFunctionCall, FuncName: name})

	return out
}
