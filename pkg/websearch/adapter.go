package websearch

import (
	"context"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/pkg/outcome"
)

const SourceLabel = "Web Search"

type Adapter struct {
	searcher   Searcher
	maxResults int
	log        logger.ILogger
}

func NewAdapter(searcher Searcher, maxResults int, log logger.ILogger) *Adapter {
	if maxResults <= 0 {
		maxResults = 3
	}
	log.Info("WEB_SEARCH", "Web Search Tool initialized", map[string]interface{}{"max_results": maxResults})
	return &Adapter{searcher: searcher, maxResults: maxResults, log: log}
}

// Search returns at most maxResults normalised hits. Failures are logged and
// yield a degraded empty result.
func (a *Adapter) Search(ctx context.Context, query string) outcome.Result[[]entity.WebResult] {
	raw, err := a.searcher.Search(ctx, query, a.maxResults)
	if err != nil {
		a.log.Error("WEB_SEARCH", "Error in web search", map[string]interface{}{"error": err.Error()})
		return outcome.Degraded([]entity.WebResult{}, err)
	}

	if len(raw) > a.maxResults {
		raw = raw[:a.maxResults]
	}
	results := make([]entity.WebResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, entity.WebResult{
			Title:   r.Title,
			Snippet: r.Body,
			Url:     r.Href,
			Source:  SourceLabel,
		})
	}

	a.log.Info("WEB_SEARCH", "Web search returned results", map[string]interface{}{"count": len(results)})
	return outcome.OK(results)
}
