/*
Package grammar implements the combinator grammar used to recognise voice commands.

An Expression is one of six node kinds: Literal, Sequence, Alternative,
Optional, Command and EntityExpr. Expressions are built with the constructors
Lit, Seq, Alt, Opt, Cmd, Entity, EntityOf and EntityFromMap and evaluated
against a normalized token list by an Evaluator.

Evaluation consumes a prefix of the tokens and never backtracks: once an
alternative or an entity match committed, a later failure does not cause a
different choice to be tried. Evaluation has no side effects; a Command only
describes the action (see domain.Action), which the rule engine performs after
a whole rule matched.

	onOff := grammar.Alt(grammar.Cmd(grammar.Lit("on"), "ON"), grammar.Cmd(grammar.Lit("off"), "OFF"))
	rule := grammar.Seq(grammar.Lit("turn"), grammar.Opt(grammar.Lit("the")), grammar.Entity(grammar.EntityOptions{}), onOff)
*/
package grammar
