package lox

import (
	"fmt"
	"io"
	"strconv"
)

// FunctionType tells the compiler what kind of function body it is
// currently emitting bytecode for, which changes how slot 0 and `return`
// are handled.
type FunctionType int

const (
	FnScript FunctionType = iota
	FnFunction
	FnMethod
	FnInitializer
)

// Local is one entry of a compiler frame's local-variable stack. depth is
// -1 while the local is declared but not yet initialized, which is what
// makes `var a = a;` inside its own initializer a compile error.
type Local struct {
	name       Token
	depth      int
	isCaptured bool
}

// UpvalueDesc describes one upvalue a Closure must capture: either the
// slot of a local in the immediately enclosing frame, or the index of an
// upvalue already captured by that enclosing frame.
type UpvalueDesc struct {
	Index   uint8
	IsLocal bool
}

const maxLocals = 256
const maxUpvalues = 256

// compilerFrame is the compiler's per-function activation record; frames
// form a stack (via enclosing) mirroring the nesting of function bodies.
type compilerFrame struct {
	enclosing    *compilerFrame
	function     *ObjFunction
	functionType FunctionType

	locals     [maxLocals]Local
	localCount int
	scopeDepth int

	upvalues     [maxUpvalues]UpvalueDesc
	upvalueCount int

	// operandBytes records, by offset into function.chunk.Code, every
	// byte written as an instruction operand rather than an opcode.
	// The serializer needs this to classify each byte of the chunk.
	operandBytes map[int]bool
}

// classState tracks the class currently being compiled, enabling `super`
// resolution; classState forms a stack via enclosing for nested classes.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// CompileArtifacts carries everything besides the top-level Function that
// the Serializer needs: every compiled Function in the order its body
// finished compiling (nested functions first, the top-level script last), the set
// of operand-byte addresses per function, and each function's upvalue
// descriptors.
type CompileArtifacts struct {
	Functions    []*ObjFunction
	OperandAddrs map[*ObjFunction]map[int]bool
	Upvalues     map[*ObjFunction][]UpvalueDesc
}

// Compiler is a single-pass Pratt parser: it drives the Scanner on demand
// and emits bytecode directly into the current frame's Function as it
// parses, with no separate AST stage.
type Compiler struct {
	vm      *VM
	scanner *Scanner

	current  Token
	previous Token

	hadError  bool
	panicMode bool
	errOut    io.Writer

	frame *compilerFrame
	class *classState

	artifacts *CompileArtifacts
}

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < <= > >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[TokenType]parseRule

func init() {
	rules = map[TokenType]parseRule{
		TokenLeftParen:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		TokenDot:          {infix: (*Compiler).dot, precedence: precCall},
		TokenMinus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		TokenPlus:         {infix: (*Compiler).binary, precedence: precTerm},
		TokenSlash:        {infix: (*Compiler).binary, precedence: precFactor},
		TokenStar:         {infix: (*Compiler).binary, precedence: precFactor},
		TokenBang:         {prefix: (*Compiler).unary},
		TokenBangEqual:    {infix: (*Compiler).binary, precedence: precEquality},
		TokenEqualEqual:   {infix: (*Compiler).binary, precedence: precEquality},
		TokenGreater:      {infix: (*Compiler).binary, precedence: precComparison},
		TokenGreaterEqual: {infix: (*Compiler).binary, precedence: precComparison},
		TokenLess:         {infix: (*Compiler).binary, precedence: precComparison},
		TokenLessEqual:    {infix: (*Compiler).binary, precedence: precComparison},
		TokenIdentifier:   {prefix: (*Compiler).variable},
		TokenString:       {prefix: (*Compiler).string},
		TokenNumber:       {prefix: (*Compiler).number},
		TokenAnd:          {infix: (*Compiler).and_, precedence: precAnd},
		TokenOr:           {infix: (*Compiler).or_, precedence: precOr},
		TokenFalse:        {prefix: (*Compiler).literal},
		TokenNil:          {prefix: (*Compiler).literal},
		TokenTrue:         {prefix: (*Compiler).literal},
		TokenSuper:        {prefix: (*Compiler).super_},
		TokenThis:         {prefix: (*Compiler).this_},
	}
}

func getRule(t TokenType) parseRule { return rules[t] }

// Compile compiles source into a top-level Function (the implicit
// `<script>`), reporting diagnostics to errOut. ok is false if any compile
// error was reported, in which case the returned function should be
// discarded.
func Compile(vm *VM, source string, errOut io.Writer) (fn *ObjFunction, artifacts *CompileArtifacts, ok bool) {
	c := &Compiler{
		vm:      vm,
		scanner: NewScanner(source),
		errOut:  errOut,
		artifacts: &CompileArtifacts{
			OperandAddrs: map[*ObjFunction]map[int]bool{},
			Upvalues:     map[*ObjFunction][]UpvalueDesc{},
		},
	}
	c.pushFrame(FnScript, "")

	vm.compilerRootsFn = func(vm *VM) {
		for f := c.frame; f != nil; f = f.enclosing {
			vm.markObject(f.function)
		}
	}
	defer func() { vm.compilerRootsFn = nil }()

	c.advance()
	for !c.match(TokenEOF) {
		c.declaration()
	}
	fn = c.endCompiler()
	return fn, c.artifacts, !c.hadError
}

// ---- frame / scope management ----

func (c *Compiler) pushFrame(ft FunctionType, name string) {
	fn := c.vm.newFunction()
	if ft != FnScript {
		fn.name = c.vm.copyString(name)
	}
	frame := &compilerFrame{
		enclosing:    c.frame,
		function:     fn,
		functionType: ft,
		operandBytes: map[int]bool{},
	}
	slot0 := ""
	if ft == FnMethod || ft == FnInitializer {
		slot0 = "this"
	}
	frame.locals[0] = Local{name: Token{Lexeme: slot0}, depth: 0}
	frame.localCount = 1
	c.frame = frame
}

func (c *Compiler) endCompiler() *ObjFunction {
	c.emitReturn()
	fn := c.frame.function

	c.artifacts.Functions = append(c.artifacts.Functions, fn)
	c.artifacts.OperandAddrs[fn] = c.frame.operandBytes
	ups := make([]UpvalueDesc, c.frame.upvalueCount)
	copy(ups, c.frame.upvalues[:c.frame.upvalueCount])
	c.artifacts.Upvalues[fn] = ups

	c.frame = c.frame.enclosing
	return fn
}

func (c *Compiler) beginScope() { c.frame.scopeDepth++ }

func (c *Compiler) endScope() {
	c.frame.scopeDepth--
	for c.frame.localCount > 0 && c.frame.locals[c.frame.localCount-1].depth > c.frame.scopeDepth {
		if c.frame.locals[c.frame.localCount-1].isCaptured {
			c.emitOp(OpCloseUpvalue)
		} else {
			c.emitOp(OpPop)
		}
		c.frame.localCount--
	}
}

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.NextToken()
		if c.current.Type != TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(t TokenType, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(t TokenType) bool { return c.current.Type == t }

func (c *Compiler) match(t TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

// ---- error reporting / recovery ----

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	if c.errOut == nil {
		return
	}
	fmt.Fprintf(c.errOut, "[line %d] Error", tok.Line)
	switch tok.Type {
	case TokenEOF:
		fmt.Fprint(c.errOut, " at end")
	case TokenError:
		// lexical errors carry their own message already
	default:
		fmt.Fprintf(c.errOut, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(c.errOut, ": %s\n", message)
}

func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != TokenEOF {
		if c.previous.Type == TokenSemicolon {
			return
		}
		switch c.current.Type {
		case TokenClass, TokenFun, TokenVar, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn:
			return
		}
		c.advance()
	}
}

// ---- emission helpers ----

func (c *Compiler) chunk() *Chunk { return c.frame.function.chunk }

func (c *Compiler) emitOp(op OpCode) {
	c.chunk().WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOperand(b byte) {
	offset := len(c.chunk().Code)
	c.chunk().Write(b, c.previous.Line)
	c.frame.operandBytes[offset] = true
}

func (c *Compiler) emitBytes(op OpCode, operand byte) {
	c.emitOp(op)
	c.emitOperand(operand)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitOperand(byte(offset >> 8))
	c.emitOperand(byte(offset & 0xff))
}

// emitJump writes op followed by a two-byte placeholder and returns the
// offset of the first placeholder byte, for patchJump to fill in later.
func (c *Compiler) emitJump(op OpCode) int {
	c.emitOp(op)
	c.emitOperand(0xff)
	c.emitOperand(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitReturn() {
	if c.frame.functionType == FnInitializer {
		c.emitBytes(OpGetLocal, 0)
	} else {
		c.emitOp(OpNil)
	}
	c.emitOp(OpReturn)
}

func (c *Compiler) makeConstant(v Value) byte {
	idx := c.chunk().AddConstant(c.vm, v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v Value) {
	c.emitBytes(OpConstant, c.makeConstant(v))
}

func (c *Compiler) identifierConstant(name Token) byte {
	return c.makeConstant(ObjValue(c.vm.copyString(name.Lexeme)))
}

func identifiersEqual(a, b Token) bool { return a.Lexeme == b.Lexeme }

// ---- locals / upvalues ----

func (c *Compiler) addLocal(name Token) {
	if c.frame.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.frame.locals[c.frame.localCount] = Local{name: name, depth: -1}
	c.frame.localCount++
}

func (c *Compiler) declareVariable() {
	if c.frame.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := c.frame.localCount - 1; i >= 0; i-- {
		local := c.frame.locals[i]
		if local.depth != -1 && local.depth < c.frame.scopeDepth {
			break
		}
		if identifiersEqual(name, local.name) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) parseVariable(errMessage string) byte {
	c.consume(TokenIdentifier, errMessage)
	c.declareVariable()
	if c.frame.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) markInitialized() {
	if c.frame.scopeDepth == 0 {
		return
	}
	c.frame.locals[c.frame.localCount-1].depth = c.frame.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.frame.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(OpDefineGlobal, global)
}

func resolveLocalIn(frame *compilerFrame, name Token, c *Compiler) int {
	for i := frame.localCount - 1; i >= 0; i-- {
		local := &frame.locals[i]
		if identifiersEqual(name, local.name) {
			if local.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(frame *compilerFrame, index byte, isLocal bool) int {
	count := frame.upvalueCount
	for i := 0; i < count; i++ {
		uv := &frame.upvalues[i]
		if int(uv.Index) == int(index) && uv.IsLocal == isLocal {
			return i
		}
	}
	if count == maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	frame.upvalues[count] = UpvalueDesc{Index: index, IsLocal: isLocal}
	frame.upvalueCount++
	frame.function.upvalueCount = uint16(frame.upvalueCount)
	return count
}

func (c *Compiler) resolveUpvalue(frame *compilerFrame, name Token) int {
	if frame.enclosing == nil {
		return -1
	}
	if local := resolveLocalIn(frame.enclosing, name, c); local != -1 {
		frame.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(frame, byte(local), true)
	}
	if upvalue := c.resolveUpvalue(frame.enclosing, name); upvalue != -1 {
		return c.addUpvalue(frame, byte(upvalue), false)
	}
	return -1
}

// ---- declarations / statements ----

func (c *Compiler) declaration() {
	switch {
	case c.match(TokenClass):
		c.classDeclaration()
	case c.match(TokenFun):
		c.funDeclaration()
	case c.match(TokenVar):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(TokenIdentifier, "Expect class name.")
	className := c.previous
	nameConstant := c.identifierConstant(className)
	c.declareVariable()

	c.emitBytes(OpClass, nameConstant)
	c.defineVariable(nameConstant)

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(TokenLess) {
		c.consume(TokenIdentifier, "Expect superclass name.")
		c.variable(false)
		if identifiersEqual(className, c.previous) {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal(syntheticToken("super"))
		c.markInitialized()

		c.namedVariable(className, false)
		c.emitOp(OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(TokenLeftBrace, "Expect '{' before class body.")
	for !c.check(TokenRightBrace) && !c.check(TokenEOF) {
		c.method()
	}
	c.consume(TokenRightBrace, "Expect '}' after class body.")
	c.emitOp(OpPop)

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(TokenIdentifier, "Expect method name.")
	name := c.previous
	nameConstant := c.identifierConstant(name)

	ft := FnMethod
	if name.Lexeme == "init" {
		ft = FnInitializer
	}
	c.functionBody(ft, name.Lexeme)
	c.emitBytes(OpMethod, nameConstant)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.functionBody(FnFunction, c.previous.Lexeme)
	c.defineVariable(global)
}

func (c *Compiler) functionBody(ft FunctionType, name string) {
	c.pushFrame(ft, name)
	c.beginScope()

	c.consume(TokenLeftParen, "Expect '(' after function name.")
	if !c.check(TokenRightParen) {
		for {
			c.frame.function.arity++
			if c.frame.function.arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(TokenComma) {
				break
			}
		}
	}
	c.consume(TokenRightParen, "Expect ')' after parameters.")
	c.consume(TokenLeftBrace, "Expect '{' before function body.")
	c.block()

	fn := c.endCompiler()
	frameUpvalues := c.artifacts.Upvalues[fn]
	c.emitBytes(OpClosure, c.makeConstant(ObjValue(fn)))
	for _, uv := range frameUpvalues {
		isLocal := byte(0)
		if uv.IsLocal {
			isLocal = 1
		}
		c.emitOperand(isLocal)
		c.emitOperand(uv.Index)
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(TokenEqual) {
		c.expression()
	} else {
		c.emitOp(OpNil)
	}
	c.consume(TokenSemicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(TokenPrint):
		c.printStatement()
	case c.match(TokenFor):
		c.forStatement()
	case c.match(TokenIf):
		c.ifStatement()
	case c.match(TokenReturn):
		c.returnStatement()
	case c.match(TokenWhile):
		c.whileStatement()
	case c.match(TokenLeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(TokenSemicolon, "Expect ';' after value.")
	c.emitOp(OpPrint)
}

func (c *Compiler) returnStatement() {
	if c.frame.functionType == FnScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(TokenSemicolon) {
		c.emitReturn()
		return
	}
	if c.frame.functionType == FnInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(TokenSemicolon, "Expect ';' after return value.")
	c.emitOp(OpReturn)
}

func (c *Compiler) ifStatement() {
	c.consume(TokenLeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(TokenRightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emitOp(OpPop)

	if c.match(TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(TokenLeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(TokenRightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(OpPop)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(TokenLeftParen, "Expect '(' after 'for'.")
	switch {
	case c.match(TokenSemicolon):
		// no initializer
	case c.match(TokenVar):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(TokenSemicolon) {
		c.expression()
		c.consume(TokenSemicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OpJumpIfFalse)
		c.emitOp(OpPop)
	}

	if !c.check(TokenRightParen) {
		bodyJump := c.emitJump(OpJump)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(OpPop)
		c.consume(TokenRightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(OpPop)
	}
	c.endScope()
}

func (c *Compiler) block() {
	for !c.check(TokenRightBrace) && !c.check(TokenEOF) {
		c.declaration()
	}
	c.consume(TokenRightBrace, "Expect '}' after block.")
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(TokenSemicolon, "Expect ';' after expression.")
	c.emitOp(OpPop)
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := getRule(c.previous.Type)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(TokenEqual) {
		c.error("Invalid assignment target.")
	}
}

// ---- parse rules ----

func (c *Compiler) grouping(bool) {
	c.expression()
	c.consume(TokenRightParen, "Expect ')' after expression.")
}

func (c *Compiler) number(bool) {
	v, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(NumberValue(v))
}

func (c *Compiler) string(bool) {
	lexeme := c.previous.Lexeme
	s := lexeme[1 : len(lexeme)-1]
	c.emitConstant(ObjValue(c.vm.copyString(s)))
}

func (c *Compiler) literal(bool) {
	switch c.previous.Type {
	case TokenFalse:
		c.emitOp(OpFalse)
	case TokenNil:
		c.emitOp(OpNil)
	case TokenTrue:
		c.emitOp(OpTrue)
	}
}

func (c *Compiler) unary(bool) {
	opType := c.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case TokenBang:
		c.emitOp(OpNot)
	case TokenMinus:
		c.emitOp(OpNegate)
	}
}

func (c *Compiler) binary(bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.precedence + 1)
	switch opType {
	case TokenBangEqual:
		c.emitOp(OpEqual)
		c.emitOp(OpNot)
	case TokenEqualEqual:
		c.emitOp(OpEqual)
	case TokenGreater:
		c.emitOp(OpGreater)
	case TokenGreaterEqual:
		c.emitOp(OpLess)
		c.emitOp(OpNot)
	case TokenLess:
		c.emitOp(OpLess)
	case TokenLessEqual:
		c.emitOp(OpGreater)
		c.emitOp(OpNot)
	case TokenPlus:
		c.emitOp(OpAdd)
	case TokenMinus:
		c.emitOp(OpSubtract)
	case TokenStar:
		c.emitOp(OpMultiply)
	case TokenSlash:
		c.emitOp(OpDivide)
	}
}

func (c *Compiler) call(bool) {
	argCount := c.argumentList()
	c.emitBytes(OpCall, argCount)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(TokenIdentifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(TokenEqual):
		c.expression()
		c.emitBytes(OpSetProperty, name)
	case c.match(TokenLeftParen):
		argCount := c.argumentList()
		c.emitBytes(OpInvoke, name)
		c.emitOperand(argCount)
	default:
		c.emitBytes(OpGetProperty, name)
	}
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(TokenRightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(TokenComma) {
				break
			}
		}
	}
	c.consume(TokenRightParen, "Expect ')' after arguments.")
	return byte(count)
}

func (c *Compiler) and_(bool) {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(bool) {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	c.emitOp(OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name Token, canAssign bool) {
	var getOp, setOp OpCode
	arg := resolveLocalIn(c.frame, name, c)
	if arg != -1 {
		getOp, setOp = OpGetLocal, OpSetLocal
	} else if arg = c.resolveUpvalue(c.frame, name); arg != -1 {
		getOp, setOp = OpGetUpvalue, OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = OpGetGlobal, OpSetGlobal
	}

	if canAssign && c.match(TokenEqual) {
		c.expression()
		c.emitBytes(setOp, byte(arg))
	} else {
		c.emitBytes(getOp, byte(arg))
	}
}

func (c *Compiler) this_(bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super_(bool) {
	switch {
	case c.class == nil:
		c.error("Can't use 'super' outside of a class.")
	case !c.class.hasSuperclass:
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(TokenDot, "Expect '.' after 'super'.")
	c.consume(TokenIdentifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(syntheticToken("this"), false)
	if c.match(TokenLeftParen) {
		argCount := c.argumentList()
		c.namedVariable(syntheticToken("super"), false)
		c.emitBytes(OpSuperInvoke, name)
		c.emitOperand(argCount)
	} else {
		c.namedVariable(syntheticToken("super"), false)
		c.emitBytes(OpGetSuper, name)
	}
}

func syntheticToken(lexeme string) Token {
	return Token{Type: TokenIdentifier, Lexeme: lexeme}
}
