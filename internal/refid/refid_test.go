package refid

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_Format(t *testing.T) {
	g := New()
	code := g.Generate()

	assert.True(t, Valid(code), "code %q does not match %s", code, Pattern)
	assert.Contains(t, code, fmt.Sprintf("%s-%d-", Prefix, time.Now().Year()))
}

func TestGenerate_UsesInjectedClock(t *testing.T) {
	g := &Generator{Now: func() time.Time {
		return time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC)
	}}

	code := g.Generate()
	assert.Regexp(t, `^SEV-1999-[A-Z0-9]{5}$`, code)
}

func TestGenerate_ZeroValueWorks(t *testing.T) {
	var g Generator
	assert.True(t, Valid(g.Generate()))

	var nilGen *Generator
	assert.True(t, Valid(nilGen.Generate()))
}

func TestGenerate_Distinct(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[g.Generate()] = true
	}
	// 20 bits of entropy; a handful of collisions in 200 draws would be odd.
	assert.Greater(t, len(seen), 190)
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"SEV-2026-AB12C", true},
		{"SEV-2026-ab12c", false},
		{"SEV-26-AB12C", false},
		{"ABC-2026-AB12C", false},
		{"SEV-2026-AB12", false},
		{"SEV-2026-AB12CD", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.code))
		})
	}
}
