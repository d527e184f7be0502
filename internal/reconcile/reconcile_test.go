package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]Line{
		{ProductoID: 1, Solicitada: 10, Recibida: 8},
		{ProductoID: 2, Solicitada: 5, Recibida: 7},
		{ProductoID: 3, Solicitada: 3, Recibida: 3},
	})

	assert.Equal(t, 18, s.TotalSolicitada)
	assert.Equal(t, 18, s.TotalRecibida)
	assert.Equal(t, 2, s.TotalFaltante)
	assert.Equal(t, 2, s.TotalExcedente)
	assert.False(t, s.Exact())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalSolicitada)
	assert.Zero(t, s.TotalRecibida)
	assert.True(t, s.Exact())
}

func TestProvisionalEstado(t *testing.T) {
	cases := []struct {
		name       string
		solicitada int
		recibida   int
		want       string
	}{
		{"nothing received", 15, 0, "PENDIENTE"},
		{"partial receipt", 15, 13, "PARCIAL"},
		{"totals match", 15, 15, "COMPLETO"},
		{"over-received", 15, 16, "PARCIAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ProvisionalEstado(tc.solicitada, tc.recibida))
		})
	}
}

// The provisional formula compares totals while the final formula is per-line
// exact. An order with offsetting deltas is provisionally COMPLETO but closes
// as PARCIAL.
func TestProvisionalAndFinalDiverge(t *testing.T) {
	lines := []Line{
		{ProductoID: 1, Solicitada: 10, Recibida: 8},
		{ProductoID: 2, Solicitada: 5, Recibida: 7},
	}
	s := Summarize(lines)

	assert.Equal(t, "COMPLETO", ProvisionalEstado(s.TotalSolicitada, s.TotalRecibida))
	assert.Equal(t, "PARCIAL", FinalEstado(s))
}

func TestFinalEstado(t *testing.T) {
	exact := Summarize([]Line{{Solicitada: 10, Recibida: 10}, {Solicitada: 5, Recibida: 5}})
	assert.Equal(t, "COMPLETO", FinalEstado(exact))

	short := Summarize([]Line{{Solicitada: 10, Recibida: 9}})
	assert.Equal(t, "PARCIAL", FinalEstado(short))

	surplus := Summarize([]Line{{Solicitada: 10, Recibida: 11}})
	assert.Equal(t, "PARCIAL", FinalEstado(surplus))
}
