package tevsimplify

import "testing"

func TestBuildStageEvalMatchesFormula(t *testing.T) {
	a, root := BuildStage()
	cases := []struct{ av, bv, cv, dv float64 }{
		{1, 2, 0, 0},
		{1, 2, 1, 0},
		{1, 2, 0.5, 3},
		{-1, 4, 0.25, -2},
	}
	for _, c := range cases {
		got := Eval(a, root, c.av, c.bv, c.cv, c.dv)
		want := c.dv + ((1-c.cv)*c.av + c.cv*c.bv)
		if got != want {
			t.Errorf("Eval(%+v) = %v, want %v", c, got, want)
		}
	}
}

func TestBuildStageUsesAllFourOperands(t *testing.T) {
	a, root := BuildStage()
	mask := Used(a, root)
	want := UsesA | UsesB | UsesC | UsesD
	if mask != want {
		t.Fatalf("UsedMask = %b, want %b", mask, want)
	}
}

// TestSimplifyReducesToSingleLeaf exercises the case A=var, B=var, C=1,
// D=0: D + ((1-C)*A + C*B) collapses entirely to the B operand.
func TestSimplifyReducesToSingleLeaf(t *testing.T) {
	src, root := BuildStageFor(BindVariable, BindVariable, BindOne, BindZero)
	dst, newRoot := Simplify(src, root)

	node := dst.Node(newRoot)
	if node.Kind != KindUnary || node.Operand != OperandB {
		t.Fatalf("simplified root = %+v, want a unary OperandB leaf", node)
	}
	if got := dst.Len(); got != 1 {
		t.Errorf("simplified arena has %d nodes, want 1", got)
	}

	mask := Used(dst, newRoot)
	if mask != UsesB {
		t.Fatalf("UsedMask = %b, want UsesB only", mask)
	}
}

// TestSimplifyFixpointMatchesUnsimplifiedEval checks, over every boolean
// (A,B,C,D) binding combination, that the simplified tree evaluates
// identically to the unsimplified one when 0/1 bound operands are fed their
// literal values and variable operands are fed arbitrary values.
func TestSimplifyFixpointMatchesUnsimplifiedEval(t *testing.T) {
	bindings := []Binding{BindVariable, BindZero, BindOne}
	varVals := struct{ a, b, c, d float64 }{a: 0.3, b: 0.7, c: 0.4, d: 0.6}

	bindingValue := func(bind Binding, variable float64) float64 {
		switch bind {
		case BindZero:
			return 0
		case BindOne:
			return 1
		default:
			return variable
		}
	}

	for _, ba := range bindings {
		for _, bb := range bindings {
			for _, bc := range bindings {
				for _, bd := range bindings {
					src, root := BuildStageFor(ba, bb, bc, bd)
					simplified, newRoot := Simplify(src, root)

					av := bindingValue(ba, varVals.a)
					bv := bindingValue(bb, varVals.b)
					cv := bindingValue(bc, varVals.c)
					dv := bindingValue(bd, varVals.d)

					want := Eval(src, root, av, bv, cv, dv)
					got := Eval(simplified, newRoot, av, bv, cv, dv)
					if got != want {
						t.Errorf("bindings (%v,%v,%v,%v): simplified Eval = %v, want %v", ba, bb, bc, bd, got, want)
					}
					if simplified.Len() > src.Len() {
						t.Errorf("bindings (%v,%v,%v,%v): simplified arena grew from %d to %d nodes", ba, bb, bc, bd, src.Len(), simplified.Len())
					}
				}
			}
		}
	}
}

func TestSimplifyAllZeroCollapsesToZero(t *testing.T) {
	src, root := BuildStageFor(BindZero, BindZero, BindZero, BindZero)
	dst, newRoot := Simplify(src, root)
	node := dst.Node(newRoot)
	if node.Kind != KindUnary || node.Operand != OperandZero {
		t.Fatalf("simplified root = %+v, want a unary OperandZero leaf", node)
	}
}
