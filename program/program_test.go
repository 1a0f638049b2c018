package program

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/chazu/ecmagen/codegen"
	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/literal"
	"github.com/chazu/ecmagen/options"
	"github.com/chazu/ecmagen/scope"
	"github.com/chazu/ecmagen/token"
)

// buildUnit lowers a small function by hand:
//
//	function f(a) { try { return a < 1; } catch {} }
func buildUnit(t *testing.T) *codegen.Unit {
	t.Helper()
	u := codegen.NewUnit(options.Options{RecordTypes: true})
	u.AppendLiteralBuffer(literal.NewBuffer(literal.KindArray, literal.Int(1), literal.String("x")))

	fn := scope.NewFunction(scope.NewGlobal(), "f", 1)
	a, _ := fn.Declare("a", scope.DeclParam)
	g := codegen.NewGenerator(u, fn)
	pa := g.AddParameter(a)

	begin, end, handler := g.NewLabel(), g.NewLabel(), g.NewLabel()
	g.Label(begin)
	g.LoadAccumulatorInt(codegen.Pos{Line: 1, Column: 20}, 1)
	if err := g.Binary(codegen.NoPos, token.Less, pa); err != nil {
		t.Fatal(err)
	}
	ret := g.LoadAccumulator(codegen.NoPos, pa)
	g.SetInstType(ret, 0)
	g.Return(codegen.NoPos)
	g.Label(end)
	g.Label(handler)
	g.ReturnUndefined(codegen.NoPos)
	g.NewCatchTable(handler, codegen.LabelPair{Begin: begin, End: end}, 0)

	if err := g.Finish(); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestSnapshotRoundTrip(t *testing.T) {
	u := buildUnit(t)
	p, err := Snapshot(u)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if back.UnitID != u.ID().String() {
		t.Errorf("unit id = %s", back.UnitID)
	}
	f, ok := back.Function("f")
	if !ok {
		t.Fatal("function f missing")
	}
	if f.Params != 1 || f.TotalRegs != u.Functions()[0].TotalRegs() {
		t.Errorf("params=%d regs=%d", f.Params, f.TotalRegs)
	}
	got, err := f.Listing()
	if err != nil {
		t.Fatal(err)
	}
	want := ir.Listing(u.Functions()[0].GetInsns())
	if got != want {
		t.Errorf("listing after round trip:\n%s\nwant:\n%s", got, want)
	}
	if len(f.Catches) != 1 || len(f.Catches[0].Ranges) != 1 {
		t.Errorf("catches = %+v", f.Catches)
	}
	if len(f.Types) != 1 {
		t.Errorf("types = %v", f.Types)
	}
	if len(back.Literals) != 1 || back.Literals[0].String() != p.Literals[0].String() {
		t.Errorf("literals = %v", back.Literals)
	}
}

func TestSnapshotRecordsPositions(t *testing.T) {
	p, err := Snapshot(buildUnit(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range p.Functions[0].Insns {
		if ir.Opcode(in.Op) == ir.OpLdai {
			if in.Line != 1 || in.Col != 20 {
				t.Errorf("ldai position = %d:%d", in.Line, in.Col)
			}
			return
		}
	}
	t.Error("ldai not found")
}

func TestSnapshotRequiresFinished(t *testing.T) {
	u := codegen.NewUnit(options.Default())
	codegen.NewGenerator(u, scope.NewGlobal())
	if _, err := Snapshot(u); err == nil {
		t.Error("snapshot of unfinished function succeeded")
	}
}

func TestFingerprintIgnoresUnitID(t *testing.T) {
	p1, err := Snapshot(buildUnit(t))
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Snapshot(buildUnit(t))
	if err != nil {
		t.Fatal(err)
	}
	if p1.UnitID == p2.UnitID {
		t.Fatal("two units share an ID")
	}
	h1, err := Fingerprint(p1)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(p2, h1); err != nil {
		t.Errorf("Verify: %v", err)
	}

	p2.Functions[0].TotalRegs++
	if err := Verify(p2, h1); err == nil {
		t.Error("Verify accepted a changed program")
	}

	hex, err := FingerprintHex(p1)
	if err != nil || len(hex) != 64 {
		t.Errorf("FingerprintHex = %q, %v", hex, err)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Error("garbage accepted")
	}
	data, _ := Marshal(&Program{Version: Version + 1})
	if _, err := Unmarshal(data); err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("err = %v, want version error", err)
	}
}

func TestListingJSON(t *testing.T) {
	p, err := Snapshot(buildUnit(t))
	if err != nil {
		t.Fatal(err)
	}
	data, err := ListingJSON(p)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Functions []struct {
			Name  string   `json:"name"`
			Insns []string `json:"insns"`
		} `json:"functions"`
		Literals []string `json:"literals"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Functions) != 1 || out.Functions[0].Name != "f" {
		t.Fatalf("functions = %+v", out.Functions)
	}
	last := out.Functions[0].Insns[len(out.Functions[0].Insns)-1]
	if !strings.HasSuffix(last, "returnundefined") {
		t.Errorf("last line = %q", last)
	}
	if len(out.Literals) != 1 {
		t.Errorf("literals = %v", out.Literals)
	}
}
