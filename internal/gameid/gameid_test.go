package gameid

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()
	id := Generate()
	require.True(t, strings.HasPrefix(id, Prefix))
	assert.Len(t, id, len(Prefix)+encodedLen)
	assert.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for range 200 {
		id := Generate()
		require.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	t.Parallel()
	base := time.UnixMilli(1_700_000_000_000)
	tick := 0
	g := NewGenerator(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}, nil)

	prev := g.Generate()
	for range 20 {
		next := g.Generate()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()
	now := func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	a := NewGenerator(now, bytes.NewReader(bytes.Repeat([]byte{0xab}, 10))).Generate()
	b := NewGenerator(now, bytes.NewReader(bytes.Repeat([]byte{0xab}, 10))).Generate()
	assert.Equal(t, a, b)
	assert.NoError(t, Validate(a))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", Prefix + "01h2xcejqtf2nbrexx3vqjhp41", false},
		{"missing prefix", "01h2xcejqtf2nbrexx3vqjhp41", true},
		{"too short", Prefix + "01h2x", true},
		{"first char too large", Prefix + "81h2xcejqtf2nbrexx3vqjhp41", true},
		{"invalid character", Prefix + "01h2xcejqtf2nbrexx3vqjhpu1", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tc.id)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
