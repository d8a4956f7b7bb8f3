package rulesets

import g "github.com/JanMattner/cuevox/pkg/grammar"

// German returns the German rules:
//
//	schalte|mache|schalt|mach [den|die|das] <entity> ein|an|aus
//	fahre|fahr|mache|mach [den|die|das] <entity> hoch|runter
//	schalte|mache|schalt|mach [alle] [die] licht|lichter|lampen im|in [den|die|das|dem|der] <location> ein|an|aus
func German() []Rule {
	einAnAus := g.Alt(g.Cmd(g.Lit("ein"), "ON"), g.Cmd(g.Lit("an"), "ON"), g.Cmd(g.Lit("aus"), "OFF"))
	hochRunter := g.Alt(g.Cmd(g.Lit("hoch"), "UP"), g.Cmd(g.Lit("runter"), "DOWN"))
	schalte := g.Words("schalte", "mache", "schalt", "mach")
	fahre := g.Words("fahre", "fahr", "mache", "mach")
	denDieDas := g.Opt(g.Words("den", "die", "das"))
	entity := g.Entity(g.EntityOptions{})

	lights := g.Words("licht", "lichter", "lampen")
	im := g.Seq(g.Words("im", "in"), g.Opt(g.Words("den", "die", "das", "dem", "der")))

	return []Rule{
		{
			Name: "Lichter im Raum",
			Expression: g.Seq(schalte, g.Opt(g.Lit("alle")), g.Opt(g.Lit("die")),
				lightsIn(g.Seq(lights, im, location())),
				einAnAus),
		},
		{Name: "schalte Objekt", Expression: g.Seq(schalte, denDieDas, entity, einAnAus)},
		{Name: "fahre Objekt", Expression: g.Seq(fahre, denDieDas, entity, hochRunter)},
	}
}
