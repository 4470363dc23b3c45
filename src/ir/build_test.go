package ir

import (
	"strings"
	"testing"

	"slc/src/frontend"
)

func parseAndBuild(t *testing.T, src string) *Program {
	t.Helper()
	items, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	prog, err := Build(items)
	if err != nil {
		t.Fatalf("Build: %s", err)
	}
	return prog
}

func TestBuildSimpleReturn(t *testing.T) {
	prog := parseAndBuild(t, `int main() { return 42; }`)
	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Funcs))
	}
	f := prog.Funcs[0]
	if f.Entry == nil || !f.Entry.Terminated() {
		t.Fatal("expected the entry block to be terminated by a return")
	}
	ret, ok := f.Entry.Term.(*Ret)
	if !ok {
		t.Fatalf("expected a Ret terminator, got %T", f.Entry.Term)
	}
	ci, ok := ret.Val.(*ConstInt)
	if !ok || ci.Val != 42 {
		t.Fatalf("expected constant 42, got %+v", ret.Val)
	}
}

func TestBuildImplicitZeroReturn(t *testing.T) {
	prog := parseAndBuild(t, `int f() { int a; a = 1; }`)
	f := prog.Funcs[0]
	var last *Block
	for _, bl := range f.Blocks {
		if bl.Term != nil {
			last = bl
		}
	}
	if last == nil {
		t.Fatal("expected some block to carry the implicit return")
	}
	ret, ok := last.Term.(*Ret)
	if !ok || ret.Val == nil {
		t.Fatalf("expected an implicit 'return 0', got %+v", last.Term)
	}
}

func TestBuildVoidFunctionImplicitReturn(t *testing.T) {
	prog := parseAndBuild(t, `void f() { int a; a = 1; }`)
	f := prog.Funcs[0]
	var last *Block
	for _, bl := range f.Blocks {
		if bl.Term != nil {
			last = bl
		}
	}
	ret, ok := last.Term.(*Ret)
	if !ok || ret.Val != nil {
		t.Fatalf("expected an implicit bare 'return', got %+v", last.Term)
	}
}

func TestBuildIfElseBranches(t *testing.T) {
	prog := parseAndBuild(t, `int f(int a) {
  if (a)
    return 1;
  else
    return 2;
}`)
	f := prog.Funcs[0]
	br, ok := f.Entry.Term.(*Branch)
	if !ok {
		t.Fatalf("expected the entry block to end in a branch, got %T", f.Entry.Term)
	}
	if br.Then == br.Else {
		t.Fatal("then and else targets must differ")
	}
}

func TestBuildWhileLoopStructure(t *testing.T) {
	prog := parseAndBuild(t, `int f(int n) {
  int i;
  i = 0;
  while (i < n) {
    i = i + 1;
  }
  return i;
}`)
	f := prog.Funcs[0]
	var headFound bool
	for _, bl := range f.Blocks {
		if strings.HasPrefix(bl.Label, "while_head") {
			headFound = true
			if _, ok := bl.Term.(*Branch); !ok {
				t.Errorf("expected the loop header to end in a branch, got %T", bl.Term)
			}
		}
	}
	if !headFound {
		t.Fatal("expected a while_head block")
	}
}

func TestBuildBreakContinue(t *testing.T) {
	prog := parseAndBuild(t, `int f() {
  int i;
  i = 0;
  while (1) {
    if (i == 5) break;
    i = i + 1;
    continue;
  }
  return i;
}`)
	f := prog.Funcs[0]
	var sawBreakJump, sawContinueJump bool
	for _, bl := range f.Blocks {
		if j, ok := bl.Term.(*Jump); ok && strings.HasPrefix(j.Target.Label, "while_end") {
			sawBreakJump = true
		}
		if j, ok := bl.Term.(*Jump); ok && strings.HasPrefix(j.Target.Label, "while_head") {
			sawContinueJump = true
		}
	}
	if !sawBreakJump {
		t.Error("expected a jump to the loop end block (break)")
	}
	if !sawContinueJump {
		t.Error("expected a jump back to the loop header (continue)")
	}
}

func TestBuildShortCircuitAndAsValue(t *testing.T) {
	prog := parseAndBuild(t, `int f(int a, int b) {
  int c;
  c = a && b;
  return c;
}`)
	f := prog.Funcs[0]
	var sawMerge bool
	for _, bl := range f.Blocks {
		if strings.HasPrefix(bl.Label, "sc_merge") {
			sawMerge = true
			if len(bl.Instructions) == 0 {
				t.Error("expected the merge block to load the materialised result")
			}
		}
	}
	if !sawMerge {
		t.Fatal("expected short-circuit lowering to produce a merge block")
	}
}

func TestBuildArrayIndexAssignAndRead(t *testing.T) {
	prog := parseAndBuild(t, `int f() {
  int a[3];
  a[0] = 1;
  a[1] = a[0] + 1;
  return a[1];
}`)
	f := prog.Funcs[0]
	var gepCount int
	for _, bl := range f.Blocks {
		for _, inst := range bl.Instructions {
			if _, ok := inst.(*GetElemPtr); ok {
				gepCount++
			}
		}
	}
	if gepCount == 0 {
		t.Fatal("expected array indexing to lower through GetElemPtr")
	}
}

func TestBuildCallArgCountMismatch(t *testing.T) {
	items, err := frontend.Parse(`int g(int a) { return a; }
int f() { return g(1, 2); }`)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if _, err := Build(items); err == nil {
		t.Fatal("expected an argument count mismatch error")
	}
}

func TestBuildUndefinedFunctionCall(t *testing.T) {
	items, err := frontend.Parse(`int f() { return g(); }`)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if _, err := Build(items); err == nil {
		t.Fatal("expected an undefined function error")
	}
}

func TestBuildConstReassignmentRejected(t *testing.T) {
	items, err := frontend.Parse(`int f() { const int a = 1; a = 2; return a; }`)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if _, err := Build(items); err == nil {
		t.Fatal("expected assignment to a const to be rejected")
	}
}

func TestBuildGlobalConstArrayInitializer(t *testing.T) {
	prog := parseAndBuild(t, `const int a[3] = {1, 2, 3};
int f() { return a[0]; }`)
	if len(prog.Globals) != 1 {
		t.Fatalf("expected 1 global, got %d", len(prog.Globals))
	}
	g := prog.Globals[0]
	if !g.Const || g.Init == nil {
		t.Fatalf("expected a const global with a folded initializer, got %+v", g)
	}
	leaves := g.Init.Leaves()
	if len(leaves) != 3 {
		t.Fatalf("expected 3 leaves, got %d", len(leaves))
	}
}

func TestBuildPreludeCallsResolveWithoutDeclaration(t *testing.T) {
	prog := parseAndBuild(t, `int main() {
  int a[3];
  putint(getint());
  putch(getch());
  putint(getarray(a));
  putarray(3, a);
  starttime();
  stoptime();
  return 0;
}`)
	f := prog.Funcs[0]
	var calls int
	for _, bl := range f.Blocks {
		for _, inst := range bl.Instructions {
			if _, ok := inst.(*Call); ok {
				calls++
			}
		}
	}
	if calls == 0 {
		t.Fatal("expected prelude calls to lower to Call instructions")
	}
}

func TestBuildBareArrayArgumentDecaysToAddress(t *testing.T) {
	prog := parseAndBuild(t, `int sum(int a[], int n) { return n; }
int f() {
  int xs[4];
  return sum(xs, 4);
}`)
	var f *Function
	for _, fn1 := range prog.Funcs {
		if fn1.Name == "f" {
			f = fn1
		}
	}
	var call *Call
	for _, bl := range f.Blocks {
		for _, inst := range bl.Instructions {
			if c, ok := inst.(*Call); ok {
				call = c
			}
		}
	}
	if call == nil {
		t.Fatal("expected a call to sum")
	}
	if _, ok := call.Args[0].(*Alloc); !ok {
		t.Fatalf("expected the bare array argument to decay to its Alloc address, got %T", call.Args[0])
	}
}

func TestBuildForwardedArrayParamDecaysToAddress(t *testing.T) {
	prog := parseAndBuild(t, `int helper(int a[]) { return a[0]; }
int f(int a[]) { return helper(a); }`)
	var f *Function
	for _, fn1 := range prog.Funcs {
		if fn1.Name == "f" {
			f = fn1
		}
	}
	var call *Call
	for _, bl := range f.Blocks {
		for _, inst := range bl.Instructions {
			if c, ok := inst.(*Call); ok {
				call = c
			}
		}
	}
	if call == nil {
		t.Fatal("expected a call to helper")
	}
	if call.Args[0] != f.Params[0] {
		t.Fatalf("expected the forwarded array parameter to pass its own pointer value unchanged, got %+v", call.Args[0])
	}
}

func TestBuildProgramPrints(t *testing.T) {
	prog := parseAndBuild(t, `int add(int a, int b) { return a + b; }`)
	s := prog.String()
	if !strings.Contains(s, "fun @add") {
		t.Errorf("expected the dump to mention the function, got:\n%s", s)
	}
}
