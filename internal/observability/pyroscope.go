package observability

import (
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/trading-tournament/internal/config"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

// mutexProfileRate samples one in five contention and blocking events.
const mutexProfileRate = 5

// InitPyroscope starts continuous profiling when enabled. The returned stop
// func also resets the runtime mutex and block sampling it turned on.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PyroscopeEnabled {
		logger.Info("continuous profiling disabled")
		return func() error { return nil }, nil
	}

	previousMutexRate := runtime.SetMutexProfileFraction(mutexProfileRate)
	runtime.SetBlockProfileRate(mutexProfileRate)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              profileTags(cfg),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		runtime.SetMutexProfileFraction(previousMutexRate)
		runtime.SetBlockProfileRate(0)
		return nil, err
	}

	logger.Info("continuous profiling enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
		"storage", cfg.StorageDriver,
		"quote_provider", cfg.QuoteProvider,
	)
	return func() error {
		err := profiler.Stop()
		runtime.SetMutexProfileFraction(previousMutexRate)
		runtime.SetBlockProfileRate(0)
		return err
	}, nil
}

// profileTags lets flame graphs be split by deployment and by which storage
// and quote backends the process was wired with.
func profileTags(cfg config.Config) map[string]string {
	tags := map[string]string{
		"env":     cfg.AppEnv,
		"service": cfg.ServiceName,
	}
	if cfg.ServiceVersion != "" {
		tags["version"] = cfg.ServiceVersion
	}
	if cfg.StorageDriver != "" {
		tags["storage"] = cfg.StorageDriver
	}
	if cfg.QuoteProvider != "" {
		tags["quote_provider"] = cfg.QuoteProvider
	}
	return tags
}
