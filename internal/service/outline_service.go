package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/internal/storage"

	"github.com/rs/zerolog"
)

const (
	// OutlineListLimit is the number of recent outlines returned by ListOutlines.
	OutlineListLimit = 10

	exportURLTTL = 15 * time.Minute
)

// OutlineExport points at a downloadable markdown copy of an outline.
type OutlineExport struct {
	URL       string
	ExpiresAt time.Time
}

type OutlineService interface {
	ListOutlines(ctx context.Context) ([]model.Outline, error)
	CreateOutline(ctx context.Context, o *model.Outline) (*model.Outline, error)
	UpdateOutline(ctx context.Context, o *model.Outline) (*model.Outline, error)
	DeleteOutline(ctx context.Context, outlineID int64) error
	ExportOutline(ctx context.Context, outlineID int64) (*OutlineExport, error)
}

type outlineService struct {
	repo   repository.OutlineRepository
	store  storage.ObjectStore
	logger zerolog.Logger
}

// NewOutlineService creates an OutlineService. store may be nil, in which case
// ExportOutline returns ErrExportDisabled.
func NewOutlineService(repo repository.OutlineRepository, store storage.ObjectStore, logger zerolog.Logger) OutlineService {
	return &outlineService{
		repo:   repo,
		store:  store,
		logger: logger.With().Str("service", "OutlineService").Logger(),
	}
}

func (s *outlineService) ListOutlines(ctx context.Context) ([]model.Outline, error) {
	return s.repo.ListRecentOutlines(ctx, OutlineListLimit)
}

func (s *outlineService) CreateOutline(ctx context.Context, o *model.Outline) (*model.Outline, error) {
	if err := requireText([2]string{"title", o.Title}, [2]string{"content", o.Content}); err != nil {
		return nil, err
	}
	if err := s.repo.CreateOutline(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *outlineService) UpdateOutline(ctx context.Context, o *model.Outline) (*model.Outline, error) {
	if err := requireID("id", o.ID); err != nil {
		return nil, err
	}
	if err := requireText([2]string{"title", o.Title}, [2]string{"content", o.Content}); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOutline(ctx, o); err != nil {
		return nil, mapRepoErr(err)
	}
	return o, nil
}

func (s *outlineService) DeleteOutline(ctx context.Context, outlineID int64) error {
	if err := requireID("id", outlineID); err != nil {
		return err
	}
	return mapRepoErr(s.repo.DeleteOutline(ctx, outlineID))
}

// ExportOutline uploads the outline as markdown and returns a presigned
// download URL.
func (s *outlineService) ExportOutline(ctx context.Context, outlineID int64) (*OutlineExport, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}
	if err := requireID("id", outlineID); err != nil {
		return nil, err
	}
	o, err := s.repo.GetOutlineByID(ctx, outlineID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}

	key := fmt.Sprintf("outlines/%d.md", o.ID)
	if err := s.store.PutObject(ctx, key, []byte(OutlineMarkdown(o)), "text/markdown; charset=utf-8"); err != nil {
		return nil, err
	}
	url, err := s.store.PresignGet(ctx, key, exportURLTTL)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("outline_id", o.ID).Str("key", key).Msg("Outline exported")
	return &OutlineExport{URL: url, ExpiresAt: time.Now().Add(exportURLTTL).UTC()}, nil
}

// OutlineMarkdown renders the exported document: a title heading, the
// description as a blockquote when present, then the content verbatim.
func OutlineMarkdown(o *model.Outline) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(strings.TrimSpace(o.Title))
	b.WriteString("\n\n")
	if o.Description != nil && strings.TrimSpace(*o.Description) != "" {
		for _, line := range strings.Split(strings.TrimSpace(*o.Description), "\n") {
			b.WriteString("> ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(o.Content)
	if !strings.HasSuffix(o.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}
