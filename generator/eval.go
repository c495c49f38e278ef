package generator

import (
	"github.com/teranos/randconst/grammar"
	"github.com/teranos/randconst/logger"
)

// Eval runs the pipeline on one inline request ("u32", "[i8;16]") and
// returns the rendered Go expression.
func (g *Generator) Eval(text string) (string, error) {
	req, err := grammar.ParseRequest(g.registry, text)
	if err != nil {
		return "", err
	}
	values, err := g.synth.Generate(req)
	if err != nil {
		return "", err
	}
	lit, err := g.emitter.Render(req, values)
	if err != nil {
		return "", err
	}
	g.log.Debugw("Evaluated", logger.FieldType, req.String(), logger.FieldDraws, req.Slots())
	return lit, nil
}
