package pool

import "go.uber.org/zap"

// logger is package-global: there is one pool (or one of each
// variant) per process, so there is one logger. SetLogger lets an
// embedding application route it into its own zap configuration.
var logger *zap.SugaredLogger = zap.NewNop().Sugar()

// SetLogger installs l as the logger used by this package. Passing
// nil restores the no-op default. Never called on the hot allocation
// path (ladder steps 1-2); safe to call concurrently with Init, not
// safe to call concurrently with itself.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l.Sugar()
}
