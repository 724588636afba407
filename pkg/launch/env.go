package launch

import (
	"os"
	"strings"
)

// proxyPairs are the variable name pairs mirrored across casings so
// downstream libraries that check either spelling behave consistently.
var proxyPairs = [][2]string{
	{"HTTP_PROXY", "http_proxy"},
	{"HTTPS_PROXY", "https_proxy"},
	{"NO_PROXY", "no_proxy"},
	{"ALL_PROXY", "all_proxy"},
}

// mergeEnv merges layers lowest to highest priority; keys in later layers
// overwrite identically-named keys from earlier ones.
func mergeEnv(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// normalizeProxyVars mirrors each proxy variable onto its other case
// variant when exactly one of the pair is present. It operates on the
// provider/default layer before the final merge, so an explicit user
// override is never clobbered by its own mirror.
func normalizeProxyVars(env map[string]string) map[string]string {
	if len(env) == 0 {
		return env
	}

	out := make(map[string]string, len(env)+len(proxyPairs))
	for k, v := range env {
		out[k] = v
	}

	for _, pair := range proxyPairs {
		upper, lower := pair[0], pair[1]
		upperVal, hasUpper := out[upper]
		lowerVal, hasLower := out[lower]

		switch {
		case hasUpper && !hasLower:
			out[lower] = upperVal
		case hasLower && !hasUpper:
			out[upper] = lowerVal
		}
	}
	return out
}

// processEnv returns the inherited process environment as a map, the lowest
// priority merge layer.
func processEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}
