package search

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/newscope/searcher/internal/domain"
	"github.com/newscope/searcher/internal/dto"
	"github.com/newscope/searcher/internal/embed"
	"github.com/newscope/searcher/internal/query"
	"github.com/newscope/searcher/internal/store"
)

// Searcher executes a compiled descriptor against an index.
type Searcher interface {
	Search(ctx context.Context, index string, d *query.Descriptor) (*store.Result, error)
}

// Service is the read-side search service. Queries arriving here are
// already normalized and validated.
type Service struct {
	store   Searcher
	encoder embed.Encoder
	log     *slog.Logger
}

// NewService creates a search service.
func NewService(store Searcher, encoder embed.Encoder, log *slog.Logger) *Service {
	return &Service{store: store, encoder: encoder, log: log}
}

// SearchArticles dispatches on the query's search type.
func (s *Service) SearchArticles(ctx context.Context, q *dto.ArticleQuery) (*domain.ArticleList, error) {
	switch q.SearchType {
	case dto.SearchSemantic:
		return s.searchArticlesSemantic(ctx, q)
	case dto.SearchCombined:
		return s.searchArticlesCombined(ctx, q)
	default:
		return s.searchArticlesText(ctx, q)
	}
}

func (s *Service) searchArticlesText(ctx context.Context, q *dto.ArticleQuery) (*domain.ArticleList, error) {
	res, err := s.store.Search(ctx, store.ArticlesIndex, query.CompileArticleLexical(q))
	if err != nil {
		return nil, err
	}
	return MapArticles(res)
}

func (s *Service) searchArticlesSemantic(ctx context.Context, q *dto.ArticleQuery) (*domain.ArticleList, error) {
	vector, err := s.encoder.Encode(ctx, q.Query)
	if err != nil {
		return nil, err
	}
	res, err := s.store.Search(ctx, store.ArticlesIndex, query.CompileArticleKNN(q, vector))
	if err != nil {
		return nil, err
	}
	return MapArticles(res)
}

// searchArticlesCombined runs the lexical and kNN searches concurrently
// and fuses the hit lists. When one side matches nothing the other is
// returned as-is. The total counts overlap, so the combined total is the
// larger of the two.
func (s *Service) searchArticlesCombined(ctx context.Context, q *dto.ArticleQuery) (*domain.ArticleList, error) {
	vector, err := s.encoder.Encode(ctx, q.Query)
	if err != nil {
		return nil, err
	}

	var lexical, knn *store.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lexical, err = s.store.Search(gctx, store.ArticlesIndex, query.CompileArticleLexical(q))
		return err
	})
	g.Go(func() error {
		var err error
		knn, err = s.store.Search(gctx, store.ArticlesIndex, query.CompileArticleKNN(q, vector))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if lexical.Total == 0 {
		return MapArticles(knn)
	}
	if knn.Total == 0 {
		return MapArticles(lexical)
	}

	fused := FuseRRF(lexical.Hits, knn.Hits)
	if len(fused) > q.PageSize {
		fused = fused[:q.PageSize]
	}
	return MapArticles(&store.Result{
		Total: max(lexical.Total, knn.Total),
		Hits:  fused,
	})
}

// SearchTopics searches the topics index.
func (s *Service) SearchTopics(ctx context.Context, q *dto.TopicQuery) (*domain.TopicList, error) {
	res, err := s.store.Search(ctx, store.TopicsIndex, query.CompileTopics(q))
	if err != nil {
		return nil, err
	}
	return MapTopics(res)
}

// SearchTopicBatches searches the topic-batches index.
func (s *Service) SearchTopicBatches(ctx context.Context, q *dto.TopicBatchQuery) (*domain.TopicBatchList, error) {
	res, err := s.store.Search(ctx, store.TopicBatchesIndex, query.CompileTopicBatches(q))
	if err != nil {
		return nil, err
	}
	return MapTopicBatches(res)
}

// SearchCategories searches the categories index.
func (s *Service) SearchCategories(ctx context.Context, q *dto.CategoryQuery) (*domain.CategoryList, error) {
	res, err := s.store.Search(ctx, store.CategoriesIndex, query.CompileCategories(q))
	if err != nil {
		return nil, err
	}
	return MapCategories(res)
}
