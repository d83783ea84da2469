package ingest

import (
	"context"
	"log/slog"

	"movienight/proj/internal/clients/tmdb"
	"movienight/proj/internal/domain/models"
)

type Source interface {
	Trending(ctx context.Context) ([]tmdb.Movie, error)
	Popular(ctx context.Context, page int) ([]tmdb.Movie, int, error)
}

type Catalog interface {
	Upsert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
}

type Report struct {
	Fetched  int
	Upserted int
}

// IngestService copies upstream movie metadata into the local catalog.
type IngestService struct {
	log     *slog.Logger
	source  Source
	catalog Catalog
}

func New(log *slog.Logger, source Source, catalog Catalog) *IngestService {
	return &IngestService{
		log:     log,
		source:  source,
		catalog: catalog,
	}
}

// Run ingests the trending list plus up to pages pages of popular movies. Every movie is
// upserted once per run, later pages never overwrite an earlier copy of the same id.
func (s *IngestService) Run(ctx context.Context, pages int) (Report, error) {
	const op = "ingest.IngestService.Run"
	log := s.log.With("op", op, "pages", pages)
	var report Report
	seen := make(map[int64]struct{})
	store := func(batch []tmdb.Movie) error {
		report.Fetched += len(batch)
		for _, m := range batch {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			if _, err := s.catalog.Upsert(ctx, ToModel(m)); err != nil {
				return err
			}
			report.Upserted++
		}
		return nil
	}

	trending, err := s.source.Trending(ctx)
	if err != nil {
		log.Error("failed to fetch trending", "errMsg", err.Error())
		return report, err
	}
	if err := store(trending); err != nil {
		return report, err
	}
	for p := 1; p <= pages; p++ {
		batch, total, err := s.source.Popular(ctx, p)
		if err != nil {
			log.Error("failed to fetch popular page", "page", p, "errMsg", err.Error())
			return report, err
		}
		if err := store(batch); err != nil {
			return report, err
		}
		if p >= total {
			break
		}
	}
	log.Info("catalog ingested", "fetched", report.Fetched, "upserted", report.Upserted)
	return report, nil
}

func ToModel(m tmdb.Movie) *models.Movie {
	movie := &models.Movie{
		ID:           m.ID,
		Title:        m.Title,
		Overview:     optional(m.Overview),
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  optional(m.ReleaseDate),
		VoteAverage:  &m.VoteAverage,
		VoteCount:    &m.VoteCount,
		Popularity:   &m.Popularity,
	}
	return movie
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
