package scheduler

import (
	"context"
	"errors"

	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/service"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
)

const (
	JobMaintenance = "thread-maintenance"
	JobAdExpiry    = "ad-expiry"
	JobImport      = "thread-import"
)

// RegisterJobs wires the board's periodic work. The import job is only
// registered when the importer is enabled.
func RegisterJobs(s *Scheduler, cfg config.SchedulerConfig, importerEnabled bool,
	threads service.ThreadService, ads service.AdService, importer service.ImporterService) error {

	if err := s.Register(JobMaintenance, cfg.MaintenanceSpec, func(ctx context.Context) error {
		_, err := threads.RunMaintenance(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := s.Register(JobAdExpiry, cfg.AdExpirySpec, func(ctx context.Context) error {
		expired, rejected, err := ads.ExpireAndReject(ctx)
		if err != nil {
			return err
		}
		if expired > 0 || rejected > 0 {
			pkglogger.GetLogger().Info().Int64("expired", expired).Int64("rejected", rejected).Msg("ad statuses updated")
		}
		return nil
	}); err != nil {
		return err
	}

	if !importerEnabled || cfg.ImportSpec == "" {
		return nil
	}
	return s.Register(JobImport, cfg.ImportSpec, func(ctx context.Context) error {
		_, err := importer.Run(ctx)
		if errors.Is(err, service.ErrImporterDisabled) {
			return nil
		}
		return err
	})
}
