package codegen

import (
	"fmt"

	"github.com/chazu/ecmagen/ir"
)

// FunctionDesc carries the modifiers of a function being defined. The
// lowering pass extracts them from the declaration.
type FunctionDesc struct {
	Name        string // internal name of the compiled function
	ParamLength int
	Async       bool
	Generator   bool
	Arrow       bool
	Method      bool
}

// DefineFunction creates a closure for fd over env and leaves it in the
// accumulator. Arrow functions and methods load the home object first and
// use the non-constructor form.
func (g *Generator) DefineFunction(pos Pos, fd FunctionDesc, env *ir.VReg) *ir.Insn {
	var op ir.Opcode
	switch {
	case fd.Async && fd.Generator:
		op = ir.OpDefineAsyncGeneratorFunc
	case fd.Async:
		op = ir.OpDefineAsyncFunc
	case fd.Generator:
		op = ir.OpDefineGeneratorFunc
	case fd.Arrow || fd.Method:
		g.LoadHomeObject(pos)
		op = ir.OpDefineNCFunc
	default:
		op = ir.OpDefineFunc
	}
	return g.emit(pos, op, ir.Str(fd.Name), ir.Reg(env), ir.Imm(int64(fd.ParamLength)))
}

// DefineMethod defines a method whose home object is in obj.
func (g *Generator) DefineMethod(pos Pos, name string, paramLength int, obj, env *ir.VReg) *ir.Insn {
	g.LoadAccumulator(pos, obj)
	return g.emit(pos, ir.OpDefineMethod, ir.Str(name), ir.Reg(env), ir.Imm(int64(paramLength)))
}

// DefineClassWithBuffer creates a class from the constructor name and the
// class literal buffer at idx. base holds the superclass, or the hole.
func (g *Generator) DefineClassWithBuffer(pos Pos, ctor string, idx, paramLength int, base *ir.VReg) *ir.Insn {
	return g.emit(pos, ir.OpDefineClassWithBuffer,
		ir.Str(ctor), ir.Buffer(idx), ir.Imm(int64(paramLength)),
		ir.Reg(g.Cached(CacheLexEnv)), ir.Reg(base))
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// Call calls regs[0] with the remaining registers as arguments. With
// passThis, regs[1] is the receiver. The result is in the accumulator.
func (g *Generator) Call(pos Pos, regs []*ir.VReg, passThis bool) error {
	if len(regs) == 0 {
		return fmt.Errorf("call without callee: %w", ErrUnimplemented)
	}
	if passThis {
		if len(regs) < 2 {
			return fmt.Errorf("method call without receiver: %w", ErrUnimplemented)
		}
		args := append([]ir.Operand{ir.Imm(int64(len(regs) - 2))}, ir.Regs(regs...)...)
		g.emit(pos, ir.OpCallThisRange, args...)
		return nil
	}
	switch len(regs) {
	case 1:
		g.emit(pos, ir.OpCallArg0, ir.Regs(regs...)...)
	case 2:
		g.emit(pos, ir.OpCallArg1, ir.Regs(regs...)...)
	case 3:
		g.emit(pos, ir.OpCallArgs2, ir.Regs(regs...)...)
	case 4:
		g.emit(pos, ir.OpCallArgs3, ir.Regs(regs...)...)
	default:
		args := append([]ir.Operand{ir.Imm(int64(len(regs) - 1))}, ir.Regs(regs...)...)
		g.emit(pos, ir.OpCallRange, args...)
	}
	return nil
}

// CallSpread calls fn with receiver this and the argument array args.
func (g *Generator) CallSpread(pos Pos, fn, this, args *ir.VReg) {
	g.emit(pos, ir.OpCallSpread, ir.Reg(fn), ir.Reg(this), ir.Reg(args))
}

// NewObject constructs regs[0] with the remaining registers as arguments.
func (g *Generator) NewObject(pos Pos, regs []*ir.VReg) error {
	if len(regs) == 0 {
		return fmt.Errorf("new without constructor: %w", ErrUnimplemented)
	}
	args := append([]ir.Operand{ir.Imm(int64(len(regs) - 1))}, ir.Regs(regs...)...)
	g.emit(pos, ir.OpNewObjRange, args...)
	return nil
}

// NewObjSpread constructs fn with the argument array args.
func (g *Generator) NewObjSpread(pos Pos, fn, args *ir.VReg) {
	g.emit(pos, ir.OpNewObjSpread, ir.Reg(fn), ir.Reg(args))
}

// SuperCall calls the super constructor with num arguments starting at
// start.
func (g *Generator) SuperCall(pos Pos, num int, start *ir.VReg) {
	g.emit(pos, ir.OpSuperCall, ir.Imm(int64(num)), ir.Reg(start))
}

// SuperCallSpread calls the super constructor with the argument array in
// args.
func (g *Generator) SuperCallSpread(pos Pos, args *ir.VReg) {
	g.emit(pos, ir.OpSuperCallSpread, ir.Reg(args))
}

// ThrowIfSuperNotCorrectCall checks this binding state around super();
// num is 0 before the call and 1 after.
func (g *Generator) ThrowIfSuperNotCorrectCall(pos Pos, num int) {
	g.emit(pos, ir.OpThrowIfSuperNotCorrectCall, ir.Imm(int64(num)))
}

// GetUnmappedArgs creates the unmapped arguments object.
func (g *Generator) GetUnmappedArgs(pos Pos) {
	g.emit(pos, ir.OpGetUnmappedArgs)
}

// CopyRestArgs collects the arguments from index onward into an array.
func (g *Generator) CopyRestArgs(pos Pos, index int) {
	g.scope.SetArgumentsOrRestArgs()
	g.emit(pos, ir.OpCopyRestArgs, ir.Imm(int64(index)))
}
