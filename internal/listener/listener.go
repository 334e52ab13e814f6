// Package listener runs the unattended ingest loop: poll a mailbox,
// file whatever arrived, rebuild the warehouse.
package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"despensa/internal"
	"despensa/internal/canon"
	"despensa/internal/config"
	"despensa/internal/connectors"
	gmailconnector "despensa/internal/connectors/gmail"
	imapconnector "despensa/internal/connectors/imap"
	"despensa/internal/logger"
	"despensa/internal/pipeline"
	"despensa/internal/storage"
)

type Service struct {
	db     *storage.DB
	cfg    config.Config
	intake *pipeline.IntakeService
	etl    *pipeline.ETLService
}

func NewService(db *storage.DB, cfg config.Config, resolver *canon.Resolver) *Service {
	return &Service{
		db:     db,
		cfg:    cfg,
		intake: pipeline.NewIntakeService(db, cfg),
		etl:    pipeline.NewETLService(cfg, resolver, db),
	}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			logger.Error("listener cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	docs, filed, err := s.intake.ProcessPending(s.cfg.MailListenerProcessBatch)
	if err != nil {
		return err
	}

	// filed documents from a cycle that died before its run are picked
	// up here as well
	pending, err := s.db.ListDocumentsByStatus(string(internal.StatusFiled), 200)
	if err != nil {
		return err
	}

	runID := ""
	if len(pending) > 0 {
		res, err := s.etl.Run("mail")
		if err != nil {
			return err
		}
		runID = res.RunID

		if s.cfg.MailListenerAutoExport {
			out := filepath.Join(s.cfg.OutputDir, "listener", res.RunID+".xlsx")
			if err := pipeline.ExportWarehouseXLSX(res.Warehouse, out); err != nil {
				return err
			}
		}
		for _, doc := range pending {
			if err := s.db.UpdateDocumentStatus(doc.ID, string(internal.StatusProcessed), ""); err != nil {
				return err
			}
		}
	}

	logger.Info("listener cycle done",
		"provider", provider,
		"fetched", fetchResult.Fetched,
		"stored", fetchResult.Stored,
		"documents", docs,
		"filed", filed,
		"run_id", runID,
	)
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
