package rulesets

import g "github.com/JanMattner/cuevox/pkg/grammar"

// English returns the English rules:
//
//	turn|switch [the] <entity> on|off
//	turn|switch on|off [the] <entity>
//	put|bring [the] <entity> up|down
//	put|bring up|down [the] <entity>
//	turn|switch [on|off] [all] [the] light|lights [on|off] in|of [the] <location> [on|off]
func English() []Rule {
	onOff := g.Alt(g.Cmd(g.Lit("on"), "ON"), g.Cmd(g.Lit("off"), "OFF"))
	upDown := g.Alt(g.Cmd(g.Lit("up"), "UP"), g.Cmd(g.Lit("down"), "DOWN"))
	turn := g.Words("turn", "switch")
	put := g.Words("put", "bring")
	the := g.Opt(g.Lit("the"))
	entity := g.Entity(g.EntityOptions{})

	allThe := g.Alt(g.Seq(g.Lit("all"), the), the)
	inOfThe := g.Seq(g.Words("in", "of"), the)
	lights := g.Words("light", "lights")

	return []Rule{
		{
			Name: "lights in location",
			Expression: g.Seq(turn, g.Opt(onOff), allThe,
				lightsIn(g.Seq(lights, g.Opt(onOff), inOfThe, location())),
				g.Opt(onOff)),
		},
		{Name: "turn entity on/off", Expression: g.Seq(turn, the, entity, onOff)},
		{Name: "turn on/off entity", Expression: g.Seq(turn, onOff, the, entity)},
		{Name: "put entity up/down", Expression: g.Seq(put, the, entity, upDown)},
		{Name: "put up/down entity", Expression: g.Seq(put, upDown, the, entity)},
	}
}
