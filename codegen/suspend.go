package codegen

import "github.com/chazu/ecmagen/ir"

// Suspension is expressed entirely as instructions. The emitter wires the
// generator object, value and resume-mode registers; the runtime halts at
// a suspend and re-enters after it.

// CreateGeneratorObj creates the generator object for the function in fn.
func (g *Generator) CreateGeneratorObj(pos Pos, fn *ir.VReg) {
	g.emit(pos, ir.OpCreateGeneratorObj, ir.Reg(fn))
}

// CreateAsyncGeneratorObj creates the async generator object for fn.
func (g *Generator) CreateAsyncGeneratorObj(pos Pos, fn *ir.VReg) {
	g.emit(pos, ir.OpCreateAsyncGeneratorObj, ir.Reg(fn))
}

// CreateIterResultObj creates {value, done} from the two registers.
func (g *Generator) CreateIterResultObj(pos Pos, value, done *ir.VReg) {
	g.emit(pos, ir.OpCreateIterResultObj, ir.Reg(value), ir.Reg(done))
}

// SuspendGenerator suspends genObj yielding the value in value.
func (g *Generator) SuspendGenerator(pos Pos, genObj, value *ir.VReg) {
	g.emit(pos, ir.OpSuspendGenerator, ir.Reg(genObj), ir.Reg(value))
}

// ResumeGenerator loads the value genObj was resumed with.
func (g *Generator) ResumeGenerator(pos Pos, genObj *ir.VReg) {
	g.emit(pos, ir.OpResumeGenerator, ir.Reg(genObj))
}

// GetResumeMode loads how genObj was resumed: next, throw or return.
func (g *Generator) GetResumeMode(pos Pos, genObj *ir.VReg) {
	g.emit(pos, ir.OpGetResumeMode, ir.Reg(genObj))
}

// AsyncFunctionEnter creates the async function object.
func (g *Generator) AsyncFunctionEnter(pos Pos) { g.emit(pos, ir.OpAsyncFunctionEnter) }

// AsyncFunctionAwaitUncaught awaits value on behalf of the async function
// object in fnObj.
func (g *Generator) AsyncFunctionAwaitUncaught(pos Pos, fnObj, value *ir.VReg) {
	g.emit(pos, ir.OpAsyncFunctionAwaitUncaught, ir.Reg(fnObj), ir.Reg(value))
}

// AsyncFunctionResolve settles the async function's promise with value.
func (g *Generator) AsyncFunctionResolve(pos Pos, fnObj, value, canSuspend *ir.VReg) {
	g.emit(pos, ir.OpAsyncFunctionResolve, ir.Reg(fnObj), ir.Reg(value), ir.Reg(canSuspend))
}

// AsyncFunctionReject rejects the async function's promise with value.
func (g *Generator) AsyncFunctionReject(pos Pos, fnObj, value, canSuspend *ir.VReg) {
	g.emit(pos, ir.OpAsyncFunctionReject, ir.Reg(fnObj), ir.Reg(value), ir.Reg(canSuspend))
}

// AsyncGeneratorResolve resolves the pending request of genObj.
func (g *Generator) AsyncGeneratorResolve(pos Pos, genObj, value, done *ir.VReg) {
	g.emit(pos, ir.OpAsyncGeneratorResolve, ir.Reg(genObj), ir.Reg(value), ir.Reg(done))
}

// AsyncGeneratorReject rejects the pending request of genObj.
func (g *Generator) AsyncGeneratorReject(pos Pos, genObj, value *ir.VReg) {
	g.emit(pos, ir.OpAsyncGeneratorReject, ir.Reg(genObj), ir.Reg(value))
}
