package flows

import (
	"strconv"
	"strings"
)

// Helpers compartilhados pelos renderizadores de prompt. Cada flow monta sua
// instrução com strings.Builder; valores opcionais ausentes viram string vazia.

// renderEach escreve um bloco por elemento, com sep apenas entre elementos.
func renderEach[T any](b *strings.Builder, items []T, sep string, render func(b *strings.Builder, item T)) {
	for i, item := range items {
		render(b, item)
		if i < len(items)-1 {
			b.WriteString(sep)
		}
	}
}

// listText junta os itens com ", ", sem separador depois do último.
func listText(items []string) string {
	var b strings.Builder
	renderEach(&b, items, ", ", func(b *strings.Builder, item string) {
		b.WriteString(item)
	})
	return b.String()
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// optionalNumber trata zero como ausente; a unidade só aparece junto do valor.
func optionalNumber(f float64, unit string) string {
	if f == 0 {
		return ""
	}
	return number(f) + unit
}
