package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		expectErr    bool
		expectedAddr Address
	}{
		{
			name:         "uuid node",
			raw:          "1f2e3d4c-aaaa-bbbb-cccc-000000000000.Value",
			expectedAddr: NewAddress("1f2e3d4c-aaaa-bbbb-cccc-000000000000", "Value"),
		},
		{
			name:         "document label node",
			raw:          "ring_const.Vector",
			expectedAddr: NewAddress("ring_const", "Vector"),
		},
		{
			name:      "error - empty string",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "error - missing property",
			raw:       "abc",
			expectErr: true,
		},
		{
			name:      "error - empty node",
			raw:       ".Value",
			expectErr: true,
		},
		{
			name:      "error - property with spaces",
			raw:       "abc.Ring Scale",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedAddr, addr)
			assert.Equal(t, tc.raw, addr.String(), "round trip")
		})
	}
}

func TestShaderID(t *testing.T) {
	assert.Equal(t, "S1f2e3d4c", ShaderID("1f2e3d4c-aaaa-bbbb-cccc-000000000000"))
	assert.Equal(t, "Sconst", ShaderID("const"))
}

func TestNew(t *testing.T) {
	a := New()
	b := New()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.Len(t, ShaderID(a), 9, "S plus the 8 hex digits of the first uuid group")
}
