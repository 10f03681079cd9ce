package confreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSessionsOrder(t *testing.T) {
	table := DefaultSessions()
	require.Equal(t, 5, table.Len())

	var codes []string
	for _, s := range table.Sessions() {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"sat_am", "sat_pm", "sat_ps", "sun_am", "sun_pm"}, codes)

	rank, ok := table.Rank("sat_ps")
	assert.True(t, ok)
	assert.Equal(t, 3, rank)

	_, ok = table.Rank("mon_am")
	assert.False(t, ok)
}

func TestSessionTableResolve(t *testing.T) {
	table, err := NewSessionTable(defaultSessions, map[string]string{
		"Szombat délelőtti ülés": "sat_am",
		"Vasárnap délutáni ülés": "sun_pm",
		"Papsági általános ülés": "sat_ps",
	})
	require.NoError(t, err)

	tests := []struct {
		label  string
		want   string
		wantOK bool
	}{
		{"Szombat délelőtti ülés", "sat_am", true},
		{"  vasárnap   DÉLUTÁNI ülés ", "sun_pm", true},
		{"Sunday Morning Session", "sun_am", true},
		{"sunday morning session", "sun_am", true},
		{"Monday Session", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := table.Resolve(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSessionTableErrors(t *testing.T) {
	tests := []struct {
		name     string
		sessions []Session
		labels   map[string]string
	}{
		{"empty code", []Session{{Code: " ", Rank: 1}}, nil},
		{"duplicate code", []Session{{Code: "a", Rank: 1}, {Code: "a", Rank: 2}}, nil},
		{"duplicate rank", []Session{{Code: "a", Rank: 1}, {Code: "b", Rank: 1}}, nil},
		{"label to unknown code", []Session{{Code: "a", Rank: 1}}, map[string]string{"Morning": "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSessionTable(tt.sessions, tt.labels)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestZeroSessionTable(t *testing.T) {
	var table SessionTable
	assert.Equal(t, 0, table.Len())
	_, ok := table.Lookup("sat_am")
	assert.False(t, ok)
	assert.Empty(t, table.Sessions())
}
