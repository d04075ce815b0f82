package tevsimplify

// Binding tells BuildStageFor whether a stage operand slot is bound to the
// literal constant 0, the literal constant 1, or remains a run-time
// variable (e.g. a texture/rasterizer/konst read) that Simplify must leave
// as an opaque leaf.
type Binding uint8

const (
	BindVariable Binding = iota
	BindZero
	BindOne
)

// BuildStageFor builds the canonical D + ((1-C)*A + C*B) tree with each of
// A/B/C/D replaced by its literal when bound, letting Simplify fold
// constants the same way the GLSL generator needs to (spec §4.6, §4.7
// "skip multiplications with 0 or 1").
func BuildStageFor(a, b, c, d Binding) (*Arena, int) {
	ar := NewArena()
	dNode := leaf(ar, d, OperandD)
	one := ar.unary(OperandOne)
	c1 := leaf(ar, c, OperandC)
	oneMinusC := ar.binary(OpSub, one, c1)
	aNode := leaf(ar, a, OperandA)
	left := ar.binary(OpMul, oneMinusC, aNode)
	c2 := leaf(ar, c, OperandC)
	bNode := leaf(ar, b, OperandB)
	right := ar.binary(OpMul, c2, bNode)
	mix := ar.binary(OpAdd, left, right)
	root := ar.binary(OpAdd, dNode, mix)
	return ar, root
}

func leaf(a *Arena, bind Binding, variable Operand) int {
	switch bind {
	case BindZero:
		return a.unary(OperandZero)
	case BindOne:
		return a.unary(OperandOne)
	default:
		return a.unary(variable)
	}
}

// Simplify applies the fixpoint rewrite rules of spec §4.6 to the tree
// rooted at idx in src, returning a freshly built (never larger) Arena
// holding only the nodes reachable from its new root, and that root.
// Because every rule folds a binary node purely from its
// two already-simplified children, a single bottom-up pass is a fixpoint:
// there is no rule whose left-hand side spans more than one parent/child
// level.
func Simplify(src *Arena, idx int) (*Arena, int) {
	scratch := NewArena()
	root := simplifyRec(src, idx, scratch)
	dst := NewArena()
	var compact func(i int) int
	compact = func(i int) int {
		n := scratch.Node(i)
		if n.Kind == KindUnary {
			return dst.unary(n.Operand)
		}
		l := compact(n.Left)
		r := compact(n.Right)
		return dst.binary(n.Op, l, r)
	}
	return dst, compact(root)
}

func simplifyRec(src *Arena, idx int, dst *Arena) int {
	n := src.Node(idx)
	if n.Kind == KindUnary {
		return dst.unary(n.Operand)
	}
	l := simplifyRec(src, n.Left, dst)
	r := simplifyRec(src, n.Right, dst)
	return combine(dst, n.Op, l, r)
}

func combine(dst *Arena, op BinOp, l, r int) int {
	switch op {
	case OpMul:
		if isLiteral(dst, l, OperandZero) || isLiteral(dst, r, OperandZero) {
			return dst.unary(OperandZero)
		}
		if isLiteral(dst, l, OperandOne) {
			return r
		}
		if isLiteral(dst, r, OperandOne) {
			return l
		}
		return dst.binary(OpMul, l, r)
	case OpSub:
		if isLiteral(dst, l, OperandOne) && isLiteral(dst, r, OperandOne) {
			return dst.unary(OperandZero)
		}
		if isLiteral(dst, r, OperandZero) {
			// x - 0 -> x + 0 -> x (spec §4.6).
			return l
		}
		return dst.binary(OpSub, l, r)
	default: // OpAdd
		if isLiteral(dst, l, OperandZero) {
			return r
		}
		if isLiteral(dst, r, OperandZero) {
			return l
		}
		return dst.binary(OpAdd, l, r)
	}
}

func isLiteral(a *Arena, idx int, want Operand) bool {
	n := a.Node(idx)
	return n.Kind == KindUnary && n.Operand == want
}
