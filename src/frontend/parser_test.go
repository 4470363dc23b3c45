package frontend

import "testing"

func TestParseSimpleFunc(t *testing.T) {
	src := `int add(int a, int b) { return a + b; }`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	f, ok := items[0].(*Func)
	if !ok {
		t.Fatalf("expected *Func, got %T", items[0])
	}
	if f.Ident != "add" || f.Ret.Kind != TyInt || len(f.Params) != 2 {
		t.Fatalf("unexpected func shape: %+v", f)
	}
	if len(f.Body.Items) != 1 {
		t.Fatalf("expected 1 block item, got %d", len(f.Body.Items))
	}
	ret, ok := f.Body.Items[0].(*StmtItem).Stmt.(*ReturnStmt)
	if !ok {
		t.Fatalf("expected return statement, got %T", f.Body.Items[0])
	}
	bin, ok := ret.Exp.(*BinaryExp)
	if !ok || bin.Op != BinAdd {
		t.Fatalf("expected a '+' binary expression, got %+v", ret.Exp)
	}
}

func TestParseVarDeclGlobalVsFunc(t *testing.T) {
	src := `int x;
int f() { return 0; }`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if _, ok := items[0].(*Global); !ok {
		t.Errorf("expected item 0 to be *Global, got %T", items[0])
	}
	if _, ok := items[1].(*Func); !ok {
		t.Errorf("expected item 1 to be *Func, got %T", items[1])
	}
}

func TestParseConstArrayInitializer(t *testing.T) {
	src := `const int a[2][3] = {{1, 2, 3}, {4, 5, 6}};`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	g, ok := items[0].(*Global)
	if !ok || len(g.Decls) != 1 {
		t.Fatalf("expected one global const decl, got %+v", items[0])
	}
	d := g.Decls[0]
	if d.Kind != KindConst || d.Ty.Kind != TyArray || len(d.Ty.Dims) != 2 {
		t.Fatalf("unexpected decl shape: %+v", d)
	}
	list, ok := d.Init.(*InitList)
	if !ok || len(list.Items) != 2 {
		t.Fatalf("expected outer init list of length 2, got %+v", d.Init)
	}
}

func TestParseAssignVsExprStatement(t *testing.T) {
	src := `int f() {
  int a;
  a = 1;
  a;
  f();
  return a;
}`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	f := items[0].(*Func)
	var kinds []string
	for _, bi := range f.Body.Items {
		switch v := bi.(type) {
		case *DeclItem:
			kinds = append(kinds, "decl")
		case *StmtItem:
			switch v.Stmt.(type) {
			case *AssignStmt:
				kinds = append(kinds, "assign")
			case *ExpStmt:
				kinds = append(kinds, "exp")
			case *ReturnStmt:
				kinds = append(kinds, "return")
			}
		}
	}
	want := []string{"decl", "assign", "exp", "exp", "return"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i1 := range want {
		if kinds[i1] != want[i1] {
			t.Errorf("block item %d: expected %s, got %s", i1, want[i1], kinds[i1])
		}
	}
}

func TestParseIfElseDangling(t *testing.T) {
	src := `int f() {
  if (1)
    if (2)
      return 1;
    else
      return 2;
  return 3;
}`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	f := items[0].(*Func)
	outer := f.Body.Items[0].(*StmtItem).Stmt.(*IfStmt)
	inner, ok := outer.Then.(*IfStmt)
	if !ok {
		t.Fatalf("expected nested if as then-branch, got %T", outer.Then)
	}
	if inner.Else == nil {
		t.Fatal("expected dangling else to bind to the nearest if")
	}
	if outer.Else != nil {
		t.Fatal("outer if must not have an else branch")
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	src := `int f() { return 1 + 2 * 3 == 7 && 1 || 0; }`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	f := items[0].(*Func)
	ret := f.Body.Items[0].(*StmtItem).Stmt.(*ReturnStmt)
	top, ok := ret.Exp.(*BinaryExp)
	if !ok || top.Op != BinLOr {
		t.Fatalf("expected top-level '||', got %+v", ret.Exp)
	}
	land, ok := top.L.(*BinaryExp)
	if !ok || land.Op != BinLAnd {
		t.Fatalf("expected '&&' under '||', got %+v", top.L)
	}
	eq, ok := land.L.(*BinaryExp)
	if !ok || eq.Op != BinEq {
		t.Fatalf("expected '==' under '&&', got %+v", land.L)
	}
	add, ok := eq.L.(*BinaryExp)
	if !ok || add.Op != BinAdd {
		t.Fatalf("expected '+' under '==', got %+v", eq.L)
	}
	mul, ok := add.R.(*BinaryExp)
	if !ok || mul.Op != BinMul {
		t.Fatalf("expected '*' to bind tighter than '+', got %+v", add.R)
	}
}

func TestParseArrayParamDecaysToPointer(t *testing.T) {
	src := `int sum(int n, int a[]) { return a[0]; }`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	f := items[0].(*Func)
	if f.Params[1].Ty.Kind != TyArray || len(f.Params[1].Ty.Dims) != 0 {
		t.Fatalf("expected pointer-decayed array param with 0 stated dims, got %+v", f.Params[1].Ty)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse(`int f( { }`); err == nil {
		t.Fatal("expected a parse error for malformed parameter list")
	}
}
