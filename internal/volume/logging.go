package volume

import (
	"fmt"
	"strings"

	"github.com/AnishMulay/fatstore/internal/config"
	"github.com/AnishMulay/fatstore/internal/log_service"
	"github.com/AnishMulay/fatstore/internal/log_service/localdisc"
	"github.com/AnishMulay/fatstore/internal/log_service/zaplog"
)

// NewLogService builds the configured backend. The returned closer flushes
// or closes it.
func NewLogService(c config.LogConfig, nodeID string) (log_service.LogService, func() error, error) {
	switch strings.ToLower(c.Backend) {
	case config.BackendLocal:
		ls, err := localdisc.NewLocalDiscLogService(c.Dir, nodeID, strings.ToUpper(c.Level))
		if err != nil {
			return nil, nil, err
		}
		return ls, ls.Close, nil
	case config.BackendZap, "":
		zs, err := zaplog.NewZapLogService(nodeID, c.Level, c.Development)
		if err != nil {
			return nil, nil, err
		}
		return zs, func() error {
			// stderr cannot be fsynced on most terminals
			_ = zs.Sync()
			return nil
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w: backend %q", ErrBadLogging, c.Backend)
	}
}
