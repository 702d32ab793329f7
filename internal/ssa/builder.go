package ssa

import "github.com/gmofishsauce/cadenza/internal/values"

// Builder tracks a "current function" and "current block" and issues the
// dense ids every instruction/block/function needs, matching spec.md
// §4.9's builder contract.
type Builder struct {
	module *Module

	curFunc  *Function
	curBlock *Block

	nextValue ValueID
	nextBlock BlockID
	nextFunc  FuncID
}

// NewBuilder returns a builder with an empty module and no current
// function or block.
func NewBuilder() *Builder {
	return &Builder{module: &Module{}}
}

// NewFunctionID mints the next dense function id, without creating or
// entering a function.
func (b *Builder) NewFunctionID() FuncID {
	id := b.nextFunc
	b.nextFunc++
	return id
}

// StartFunction begins a new function with the given id (normally one
// obtained from NewFunctionID), its parameter types, and its result type
// (HasResult false for a void-returning function). Parameters occupy
// value IDs [0, len(paramTypes)), per spec.md §3.9 invariant (iv).
func (b *Builder) StartFunction(id FuncID, name string, paramTypes []values.Type, resultType values.Type, hasResult bool) *Function {
	fn := &Function{
		ID:         id,
		Name:       name,
		ParamTypes: paramTypes,
		ResultType: resultType,
		HasResult:  hasResult,
	}
	fn.Params = make([]ValueID, len(paramTypes))
	b.nextValue = 0
	b.nextBlock = 0
	for i := range paramTypes {
		fn.Params[i] = b.NewValue()
	}
	b.module.Functions = append(b.module.Functions, fn)
	b.curFunc = fn

	entry := b.NewBlock()
	fn.EntryBlock = entry
	return fn
}

// NewValue mints the next dense value id within the current function.
func (b *Builder) NewValue() ValueID {
	id := b.nextValue
	b.nextValue++
	return id
}

// NewBlock creates and enters a fresh block in the current function,
// returning its id. The caller must Terminate it before starting another
// block or finishing the function.
func (b *Builder) NewBlock() BlockID {
	id := b.nextBlock
	b.nextBlock++
	blk := &Block{ID: id}
	b.curFunc.Blocks = append(b.curFunc.Blocks, blk)
	b.curBlock = blk
	return id
}

// SetBlock switches the current block to an existing block in the
// current function, e.g. to resume emitting into a block created earlier
// for a forward jump target.
func (b *Builder) SetBlock(id BlockID) {
	blk, ok := b.curFunc.Block(id)
	if !ok {
		panic("ssa: SetBlock: no such block in current function")
	}
	b.curBlock = blk
}

// Emit appends instr to the current block.
func (b *Builder) Emit(instr Instruction) {
	b.curBlock.Instr = append(b.curBlock.Instr, instr)
}

// Terminate sets the current block's terminator.
func (b *Builder) Terminate(term Terminator) {
	b.curBlock.Term = term
}

// FinishFunction clears the current function/block, normally called once
// every block of the function being built has a terminator.
func (b *Builder) FinishFunction() {
	b.curFunc = nil
	b.curBlock = nil
}

// Export marks a function as visible to an embedder under name.
func (b *Builder) Export(name string, fn FuncID) {
	b.module.Exports = append(b.module.Exports, Export{Name: name, Kind: ExportFunction, Func: fn})
}

// Finish yields the completed module.
func (b *Builder) Finish() *Module {
	return b.module
}
