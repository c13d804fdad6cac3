package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayLinear(t *testing.T) {
	expr := call("+", call("*", argNode(), valueNode(2)), valueNode(3))
	assert.Equal(t, "((x * 2) + 3)", expr.Display())
}

func TestDisplayOneToOne(t *testing.T) {
	assert.Equal(t, "x", argNode().Display())
}

func TestDisplayRationalCollapsesSumOfThree(t *testing.T) {
	x2 := call("*", argNode(), argNode())
	num := call("+", call("*", valueNode(1), x2), call("*", valueNode(2), argNode()), valueNode(3))
	den := call("+", call("*", valueNode(4), x2), call("*", valueNode(5), argNode()), valueNode(6))
	expr := call("/", num, den)

	assert.Equal(t, "(((1 * (x * x)) + (2 * x) + 3) / ((4 * (x * x)) + (5 * x) + 6))", expr.Display())
}

func TestDisplayUnsupported(t *testing.T) {
	expr := call("unsupported")
	assert.Equal(t, "unsupported()", expr.Display())
}

func TestDisplayMapWithFallback(t *testing.T) {
	mapExpr := call("map", argNode(), valuesNode([]float64{0, 1}), textNode("off"), textNode("on"))
	expr := call("??", mapExpr, textNode("unknown"))

	assert.Equal(t, `(map(x, [0, 1], "off", "on") ?? "unknown")`, expr.Display())
}
