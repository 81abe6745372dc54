package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSchedule(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected string
	}{
		{"five fields gains seconds", "* * * * *", "0 * * * * *"},
		{"every two minutes", "*/2 * * * *", "0 */2 * * * *"},
		{"six fields untouched", "30 * * * * *", "30 * * * * *"},
		{"descriptor untouched", "@hourly", "@hourly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeSchedule(tt.expr))
		})
	}
}
