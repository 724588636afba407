package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeEnv_LaterLayersWin(t *testing.T) {
	a := map[string]string{"A": "a1", "B": "b1", "C": "c1"}
	b := map[string]string{"B": "b2", "C": "c2"}
	c := map[string]string{"C": "c3"}

	merged := mergeEnv(a, b, c)
	assert.Equal(t, map[string]string{"A": "a1", "B": "b2", "C": "c3"}, merged)

	// Layer-by-layer merge equals the single-pass merge
	assert.Equal(t, merged, mergeEnv(mergeEnv(a, b), c))
}

func TestMergeEnv_NilLayers(t *testing.T) {
	assert.Equal(t, map[string]string{"A": "a"}, mergeEnv(nil, map[string]string{"A": "a"}, nil))
	assert.Empty(t, mergeEnv())
}

func TestNormalizeProxyVars(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want map[string]string
	}{
		{
			name: "uppercase mirrored to lowercase",
			in:   map[string]string{"HTTP_PROXY": "http://proxy:8080"},
			want: map[string]string{"HTTP_PROXY": "http://proxy:8080", "http_proxy": "http://proxy:8080"},
		},
		{
			name: "lowercase mirrored to uppercase",
			in:   map[string]string{"no_proxy": "localhost"},
			want: map[string]string{"no_proxy": "localhost", "NO_PROXY": "localhost"},
		},
		{
			name: "both present with different values left alone",
			in:   map[string]string{"HTTPS_PROXY": "http://a", "https_proxy": "http://b"},
			want: map[string]string{"HTTPS_PROXY": "http://a", "https_proxy": "http://b"},
		},
		{
			name: "all four pairs handled",
			in: map[string]string{
				"HTTP_PROXY": "1", "https_proxy": "2", "NO_PROXY": "3", "all_proxy": "4",
			},
			want: map[string]string{
				"HTTP_PROXY": "1", "http_proxy": "1",
				"HTTPS_PROXY": "2", "https_proxy": "2",
				"NO_PROXY": "3", "no_proxy": "3",
				"ALL_PROXY": "4", "all_proxy": "4",
			},
		},
		{
			name: "non-proxy keys untouched",
			in:   map[string]string{"PATH": "/usr/bin"},
			want: map[string]string{"PATH": "/usr/bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeProxyVars(tt.in))
		})
	}
}

func TestNormalizeProxyVars_DoesNotMutateInput(t *testing.T) {
	in := map[string]string{"HTTP_PROXY": "x"}
	normalizeProxyVars(in)
	assert.Equal(t, map[string]string{"HTTP_PROXY": "x"}, in)
}

func TestProcessEnv(t *testing.T) {
	t.Setenv("AGENTPLANE_TEST_VAR", "present")
	env := processEnv()
	assert.Equal(t, "present", env["AGENTPLANE_TEST_VAR"])
}
