package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		lower bool
		want  string
	}{
		{name: "trim", s: "  Campus \n", want: "Campus"},
		{name: "trim & lower", s: " Jane@Example.COM ", lower: true, want: "jane@example.com"},
		{name: "blank", s: " \t ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanString(tt.s, tt.lower); got != tt.want {
				t.Errorf("CleanString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Dedupe([]string{"a", "", "b", "a", " ", "c", "b"}))
	assert.Empty(t, Dedupe(nil))
}

func TestDBOrdering_String(t *testing.T) {
	assert.Equal(t, "date DESC", DBOrdering{Field: "date"}.String())
	assert.Equal(t, "minutes ASC", DBOrdering{Field: "minutes", Ascending: true}.String())
}
