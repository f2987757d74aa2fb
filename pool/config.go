package pool

import (
	"github.com/rs/zerolog"

	"github.com/AlexsanderHamir/tlpool/internal/threadinfo"
)

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithLogger overrides the zerolog.Logger used by a Manager and every Pool
// it creates. Defaults to the global zerolog logger.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithThreadInfo overrides how a Manager discovers the calling thread's
// identity and occupancy. Defaults to threadinfo.Current. Tests use this to
// simulate several "threads" and arbitrary occupancy levels without
// spinning up real OS threads or waiting on real CPU load.
func WithThreadInfo(f func() threadinfo.Info) ManagerOption {
	return func(m *Manager) { m.threadInfo = f }
}
