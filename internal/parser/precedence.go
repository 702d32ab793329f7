package parser

import "github.com/gmofishsauce/cadenza/internal/syntaxkind"

// InfixGroup is the single ordered enum spec.md §4.5 derives binding
// powers from. Groups are listed Pipe (loosest) → PathAccess (tightest).
type InfixGroup int

const (
	GroupPipe InfixGroup = iota
	GroupRange
	GroupAssignment
	GroupJuxtaposition
	GroupMatchArm
	GroupLogicalOr
	GroupLogicalAnd
	GroupEquality
	GroupComparison
	GroupBitwiseShift
	GroupAdditive
	GroupMultiplicative
	GroupExponentiation
	GroupFieldAccess
	GroupPathAccess

	numGroups
)

type assoc int

const (
	assocLeft assoc = iota
	assocRight
)

// groupOf maps a punctuation kind to its infix group and associativity.
// Kinds absent from this table are not infix operators.
var groupOf = map[syntaxkind.Kind]struct {
	group InfixGroup
	assoc assoc
}{
	syntaxkind.PipeGt:     {GroupPipe, assocLeft},
	syntaxkind.DotDot:     {GroupRange, assocLeft},
	syntaxkind.DotDotEq:   {GroupRange, assocLeft},
	syntaxkind.Eq:         {GroupAssignment, assocRight},
	syntaxkind.PlusEq:     {GroupAssignment, assocRight},
	syntaxkind.MinusEq:    {GroupAssignment, assocRight},
	syntaxkind.StarEq:     {GroupAssignment, assocRight},
	syntaxkind.SlashEq:    {GroupAssignment, assocRight},
	syntaxkind.PercentEq:  {GroupAssignment, assocRight},
	syntaxkind.AmpEq:      {GroupAssignment, assocRight},
	syntaxkind.PipeEq:     {GroupAssignment, assocRight},
	syntaxkind.CaretEq:    {GroupAssignment, assocRight},
	syntaxkind.LtLtEq:     {GroupAssignment, assocRight},
	syntaxkind.GtGtEq:     {GroupAssignment, assocRight},
	syntaxkind.Arrow:      {GroupAssignment, assocRight},
	syntaxkind.LArrow:     {GroupAssignment, assocRight},
	syntaxkind.FatArrow:   {GroupMatchArm, assocLeft},
	syntaxkind.PipePipe:   {GroupLogicalOr, assocLeft},
	syntaxkind.AmpAmp:     {GroupLogicalAnd, assocLeft},
	syntaxkind.EqEq:       {GroupEquality, assocLeft},
	syntaxkind.BangEq:     {GroupEquality, assocLeft},
	syntaxkind.Lt:         {GroupComparison, assocLeft},
	syntaxkind.LtEq:       {GroupComparison, assocLeft},
	syntaxkind.Gt:         {GroupComparison, assocLeft},
	syntaxkind.GtEq:       {GroupComparison, assocLeft},
	syntaxkind.Pipe:       {GroupBitwiseShift, assocLeft},
	syntaxkind.Caret:      {GroupBitwiseShift, assocLeft},
	syntaxkind.Amp:        {GroupBitwiseShift, assocLeft},
	syntaxkind.LtLt:       {GroupBitwiseShift, assocLeft},
	syntaxkind.GtGt:       {GroupBitwiseShift, assocLeft},
	syntaxkind.Plus:       {GroupAdditive, assocLeft},
	syntaxkind.Minus:      {GroupAdditive, assocLeft},
	syntaxkind.Star:       {GroupMultiplicative, assocLeft},
	syntaxkind.Slash:      {GroupMultiplicative, assocLeft},
	syntaxkind.Percent:    {GroupMultiplicative, assocLeft},
	syntaxkind.StarStar:   {GroupExponentiation, assocRight},
	syntaxkind.Dot:        {GroupFieldAccess, assocLeft},
	syntaxkind.ColonColon: {GroupPathAccess, assocLeft},
}

// bindingPower returns (left, right) binding powers for an infix group:
// (2k, 2k+1) for left-associative groups, (2k+1, 2k) for right-associative
// ones, per spec.md §4.5.
func bindingPower(g InfixGroup, a assoc) (left, right int) {
	k := int(g)
	if a == assocLeft {
		return 2 * k, 2*k + 1
	}
	return 2*k + 1, 2 * k
}

// juxtapositionBP is the binding power juxtaposition (implicit function
// application, e.g. `f a b`) uses on both sides, looked up from the same
// enum ordinal as every other group.
func juxtapositionBP() (left, right int) {
	return bindingPower(GroupJuxtaposition, assocLeft)
}

// infixInfo reports whether kind is a known infix operator and, if so,
// its binding powers.
func infixInfo(kind syntaxkind.Kind) (left, right int, ok bool) {
	e, found := groupOf[kind]
	if !found {
		return 0, 0, false
	}
	l, r := bindingPower(e.group, e.assoc)
	return l, r, true
}

// prefixBP gives the right binding power for a prefix operator: `! ~ $
// ... @`. Prefix operators bind tighter than every infix group except
// FieldAccess/PathAccess/Exponentiation, matching their role as
// close-binding unary forms.
var prefixPowers = map[syntaxkind.Kind]int{
	syntaxkind.Bang:     2*int(GroupMultiplicative) + 1,
	syntaxkind.Tilde:    2*int(GroupMultiplicative) + 1,
	syntaxkind.Dollar:   2*int(GroupMultiplicative) + 1,
	syntaxkind.Ellipsis: 2*int(GroupMultiplicative) + 1,
	syntaxkind.At:       2*int(GroupMultiplicative) + 1,
	syntaxkind.Minus:    2*int(GroupMultiplicative) + 1,
}

func prefixBP(kind syntaxkind.Kind) (right int, ok bool) {
	r, found := prefixPowers[kind]
	return r, found
}

// postfixPowers gives the left binding power for postfix operators: `?
// |?` and indexing (the `[` that opens __index__).
var postfixPowers = map[syntaxkind.Kind]int{
	syntaxkind.Question:     2*int(GroupPathAccess) + 1,
	syntaxkind.PipeQuestion: 2*int(GroupPathAccess) + 1,
	syntaxkind.LBracket:     2*int(GroupPathAccess) + 1,
}

func postfixBP(kind syntaxkind.Kind) (left int, ok bool) {
	l, found := postfixPowers[kind]
	return l, found
}
