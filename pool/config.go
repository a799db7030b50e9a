package pool

import (
	"os"
	"strconv"
)

// managedPoolEnv is the one environment-style flag this package
// recognizes. Default true: the background reclaimer runs unless
// explicitly disabled.
const managedPoolEnv = "MANAGED_POOL"

// managedPoolEnabled reports whether the background reclaimer should
// be spawned by Init. Unset or unparseable values default to true.
func managedPoolEnabled() bool {
	v, set := os.LookupEnv(managedPoolEnv)
	if !set {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}
