package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ricardopieper/pony-lang/internal/vm"
)

const counterJSON = `{
  "file": "counter.pony",
  "structs": [
    {"name": "Counter", "line": 1, "fields": [
      {"name": "n", "type": {"kind": "named", "name": "i32"}}
    ]}
  ],
  "traits": [
    {"name": "Tick", "line": 4, "methods": [{"name": "tick"}]}
  ],
  "impls": [
    {"struct": "Counter", "trait": "Tick", "line": 6, "methods": [
      {"name": "tick", "line": 7, "self": true, "body": [
        {"kind": "assign", "line": 8,
         "target": {"kind": "field", "object": {"kind": "ident", "name": "self"}, "field": "n"},
         "value": {"kind": "binary", "op": "+",
                   "left": {"kind": "field", "object": {"kind": "ident", "name": "self"}, "field": "n"},
                   "right": {"kind": "int", "int": 1}}}
      ]}
    ]}
  ],
  "funcs": [
    {"name": "main", "line": 12, "return": {"kind": "named", "name": "i32"}, "body": [
      {"kind": "var", "line": 13, "name": "c",
       "value": {"kind": "struct_lit", "name": "Counter",
                 "fields": [{"name": "n", "value": {"kind": "int", "int": 0}}]}},
      {"kind": "expr", "line": 14,
       "expr": {"kind": "method_call", "receiver": {"kind": "ident", "name": "c"}, "method": "tick"}},
      {"kind": "return", "line": 15,
       "value": {"kind": "field", "object": {"kind": "ident", "name": "c"}, "field": "n"}}
    ]}
  ]
}`

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counter.pony.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fullPipeline() *Pipeline {
	return New(zap.NewNop(),
		DecodeProcessor{},
		AnalyzeProcessor{},
		DispatchProcessor{},
		CompileProcessor{},
	)
}

func TestPipelineCompilesAndRuns(t *testing.T) {
	ctx := fullPipeline().Run(NewContext(writeSource(t, counterJSON)))
	if ctx.Failed() {
		t.Fatalf("pipeline failed: fatal=%v diags=%v", ctx.FatalErr, ctx.Diags.Items())
	}
	if ctx.Image == nil {
		t.Fatal("no image produced")
	}

	v, err := vm.NewVM(ctx.Image).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := v.AsInt(); got != 1 {
		t.Errorf("counter ended at %d, want 1", got)
	}
}

func TestPipelineMissingFileIsFatal(t *testing.T) {
	ctx := fullPipeline().Run(NewContext(filepath.Join(t.TempDir(), "absent.pony.json")))
	if ctx.FatalErr == nil {
		t.Fatal("missing input did not set FatalErr")
	}
	if ctx.Image != nil {
		t.Error("image produced despite fatal decode error")
	}
}

func TestPipelineCollectsDiagnosticsWithoutCompiling(t *testing.T) {
	// The method call target does not exist; analysis reports it and the
	// compile stage must not run.
	broken := strings.Replace(counterJSON, `"method": "tick"`, `"method": "tock"`, 1)
	ctx := fullPipeline().Run(NewContext(writeSource(t, broken)))
	if !ctx.Diags.HasErrors() {
		t.Fatal("no diagnostics for unknown method")
	}
	if ctx.Image != nil {
		t.Error("compile stage ran on a program with errors")
	}
	if ctx.Tables == nil {
		t.Error("dispatch tables should still build from declarations")
	}
}

func TestPipelineBuildsTablesForInspection(t *testing.T) {
	ctx := New(nil, DecodeProcessor{}, AnalyzeProcessor{}, DispatchProcessor{}).
		Run(NewContext(writeSource(t, counterJSON)))
	if ctx.Failed() {
		t.Fatalf("pipeline failed: %v", ctx.FatalErr)
	}
	if ctx.Tables == nil || len(ctx.Tables.Tables()) != 1 {
		t.Fatal("expected exactly one dispatch table")
	}
	if ctx.Image != nil {
		t.Error("image produced without a compile stage")
	}
}
