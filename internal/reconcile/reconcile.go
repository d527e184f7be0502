// Package reconcile compares requested against received quantities for an
// order's lines and derives the order status from the deltas.
package reconcile

// Line is one requested/received pair under reconciliation.
type Line struct {
	ProductoID int64
	Codigo     string
	Solicitada int
	Recibida   int
}

// Faltante returns the line shortage, never negative.
func (l Line) Faltante() int {
	if d := l.Solicitada - l.Recibida; d > 0 {
		return d
	}
	return 0
}

// Excedente returns the line surplus, never negative.
func (l Line) Excedente() int {
	if d := l.Recibida - l.Solicitada; d > 0 {
		return d
	}
	return 0
}

// Summary aggregates reconciliation totals across all lines.
type Summary struct {
	TotalSolicitada int
	TotalRecibida   int
	TotalFaltante   int
	TotalExcedente  int
	Lines           []Line
}

// Exact reports whether every line was received exactly as requested.
func (s Summary) Exact() bool {
	return s.TotalFaltante == 0 && s.TotalExcedente == 0
}

// Summarize totals requested, received, shortage and surplus across lines.
func Summarize(lines []Line) Summary {
	s := Summary{Lines: lines}
	for _, l := range lines {
		s.TotalSolicitada += l.Solicitada
		s.TotalRecibida += l.Recibida
		s.TotalFaltante += l.Faltante()
		s.TotalExcedente += l.Excedente()
	}
	return s
}

// ProvisionalEstado derives the working status of an order that has not been
// finalized: PENDIENTE with nothing received, COMPLETO when received equals
// requested, PARCIAL otherwise. It compares totals only; per-line deltas do
// not matter until finalization.
func ProvisionalEstado(totalSolicitada, totalRecibida int) string {
	switch {
	case totalRecibida == 0:
		return "PENDIENTE"
	case totalRecibida == totalSolicitada:
		return "COMPLETO"
	default:
		return "PARCIAL"
	}
}

// FinalEstado derives the terminal status at finalization: COMPLETO only when
// no line has a shortage or surplus, PARCIAL otherwise. Unlike the
// provisional formula this is per-line exact, so a shortage on one line
// cannot be masked by a surplus on another.
func FinalEstado(s Summary) string {
	if s.Exact() {
		return "COMPLETO"
	}
	return "PARCIAL"
}
