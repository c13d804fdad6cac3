package conversion

import (
	"strconv"
	"strings"
)

// stackItem is one entry of the display-folding evaluation stack: either a
// fully rendered value, or a pending argument group awaiting the
// FunctionCall that must immediately follow it.
type stackItem struct {
	rendered string
	group    []string
	isGroup  bool
}

// Display folds the postfix Expression into a human-readable string using an
// evaluation stack of already-rendered argument groups. Binary operators
// render infix; "+" and "*" with more than two operands collapse to a single
// chain; every other call renders as name(args...). Multiple top-level
// results (a malformed or partial expression) are joined by "; ".
func (e Expression) Display() string {
	var stack []stackItem

	for _, n := range e {
		switch n.Kind {
		case KindArg:
			stack = append(stack, stackItem{rendered: "x"})

		case KindValue:
			stack = append(stack, stackItem{rendered: formatFloat(n.Value)})

		case KindValues:
			parts := make([]string, len(n.Values))
			for i, v := range n.Values {
				parts[i] = formatFloat(v)
			}

			stack = append(stack, stackItem{rendered: "[" + strings.Join(parts, ", ") + "]"})

		case KindText:
			stack = append(stack, stackItem{rendered: strconv.Quote(n.Text)})

		case KindGroup:
			count := int(n.Group)
			if count > len(stack) {
				count = len(stack)
			}

			split := len(stack) - count
			args := make([]string, count)
			for i, it := range stack[split:] {
				args[i] = it.rendered
			}

			stack = stack[:split]
			stack = append(stack, stackItem{group: args, isGroup: true})

		case KindFunctionCall:
			var args []string
			if len(stack) > 0 && stack[len(stack)-1].isGroup {
				args = stack[len(stack)-1].group
				stack = stack[:len(stack)-1]
			}

			stack = append(stack, stackItem{rendered: renderCall(n.FuncName, args)})
		}
	}

	rendered := make([]string, len(stack))
	for i, it := range stack {
		rendered[i] = it.rendered
	}

	return strings.Join(rendered, "; ")
}

func renderCall(name string, args []string) string {
	switch {
	case (name == "+" || name == "*") && len(args) > 2:
		return "(" + strings.Join(args, " "+name+" ") + ")"
	case isBinaryOperator(name) && len(args) == 2:
		return "(" + args[0] + " " + name + " " + args[1] + ")"
	default:
		return name + "(" + strings.Join(args, ", ") + ")"
	}
}

func isBinaryOperator(name string) bool {
	switch name {
	case "+", "-", "*", "/", "??":
		return true
	default:
		return false
	}
}

// formatFloat renders an integral value without a trailing ".0" / fractional
// zeros, matching the display examples in the conversion-compiler spec.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
