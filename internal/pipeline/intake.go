package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"despensa/internal"
	"despensa/internal/config"
	"despensa/internal/logger"
	"despensa/internal/storage"
)

// IntakeService files price lists and recipe catalogs that arrived by
// mail into the pipeline's input directory, under the fixed names the
// extractors read.
type IntakeService struct {
	db  *storage.DB
	cfg config.Config
}

func NewIntakeService(db *storage.DB, cfg config.Config) *IntakeService {
	return &IntakeService{db: db, cfg: cfg}
}

type IntakeResult struct {
	DocumentID int
	Filed      int
}

func (s *IntakeService) ProcessPending(limit int) (docs, filed int, err error) {
	pending, err := s.db.ListDocumentsByStatus(string(internal.StatusFetched), limit)
	if err != nil {
		return 0, 0, err
	}
	for _, doc := range pending {
		res, err := s.ProcessDocument(doc)
		if err != nil {
			return docs, filed, err
		}
		docs++
		filed += res.Filed
	}
	return docs, filed, nil
}

func (s *IntakeService) ProcessDocument(doc internal.DocumentRow) (IntakeResult, error) {
	raw, err := os.ReadFile(doc.RawRef)
	if err != nil {
		return IntakeResult{}, err
	}
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return IntakeResult{}, err
	}

	subject := firstNonEmpty(env.GetHeader("Subject"), doc.Subject)
	filed := 0
	kinds := make([]string, 0, 2)
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			continue
		}
		res := ClassifyDocument(filename, subject, contentSample(filename, att.Content))
		if res.Kind == internal.KindUnknown {
			logger.Debug("attachment ignored", "file", filename, "score", res.Score)
			continue
		}
		target := s.targetPath(res.Kind, filename)
		if target == "" {
			logger.Debug("attachment has no target", "file", filename, "kind", res.Kind)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return IntakeResult{}, err
		}
		if err := os.WriteFile(target, att.Content, 0o644); err != nil {
			return IntakeResult{}, err
		}
		logger.Info("attachment filed", "file", filename, "kind", res.Kind, "target", target)
		filed++
		kinds = append(kinds, string(res.Kind))
	}

	status := internal.StatusFiled
	if filed == 0 {
		status = internal.StatusSkipped
	}
	if err := s.db.UpdateDocumentStatus(doc.ID, string(status), strings.Join(kinds, ",")); err != nil {
		return IntakeResult{}, err
	}
	return IntakeResult{DocumentID: doc.ID, Filed: filed}, nil
}

// targetPath maps a classified attachment onto the fixed source paths
// the extractors read. CSV sheet exports go to the alternate grid path
// so the fallback in locateGridSource picks them up.
func (s *IntakeService) targetPath(kind internal.SourceKind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch kind {
	case internal.KindLayoutPrices:
		if ext != ".pdf" {
			return ""
		}
		return s.cfg.LayoutSourcePath()
	case internal.KindGridPrices:
		switch ext {
		case ".xlsx", ".xls":
			return s.cfg.GridSourcePath()
		case ".csv":
			if strings.HasSuffix(s.cfg.GridFile, ".xlsx") {
				return s.cfg.GridSourcePath() + " - Hoja1.csv"
			}
		}
		return ""
	case internal.KindRecipes:
		return s.cfg.RecipesSourcePath()
	}
	return ""
}

func contentSample(filename string, content []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".txt", ".csv", ".html", ".htm":
		if len(content) > 4096 {
			content = content[:4096]
		}
		return string(content)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
