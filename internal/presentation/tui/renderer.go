package tui

import (
	"github.com/JanMattner/cuevox"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/muesli/termenv"
)

// NewFormatter returns an annotation formatter that colours the plain-text
// form by outcome. The Ascii profile yields the plain text unchanged.
func NewFormatter(p termenv.Profile) cuevox.AnnotationFormatter {
	return func(ann domain.Annotation, err error) string {
		s := cuevox.FormatAnnotation(ann, err)
		if p == termenv.Ascii {
			return s
		}
		style := p.String(s)
		switch {
		case err != nil:
			style = style.Foreground(p.Color("#f87171")).Bold()
		case ann.Success:
			style = style.Foreground(p.Color("#4ade80"))
		case ann.Rule == domain.NoRule:
			style = style.Faint()
		default:
			style = style.Foreground(p.Color("#facc15"))
		}
		return style.String()
	}
}
