package bestfirst

import (
	"context"
	"sync"
)

// Query is one start/goal pair for SearchAll.
type Query[NodeType comparable] struct {
	Start NodeType
	Goal  NodeType
}

// searchTask represents a request from the dispatcher to the workers.
type searchTask[NodeType comparable] struct {
	index int
	query Query[NodeType]
}

// SearchAll runs one independent Search per query on a pool of
// NumberOfWorkers goroutines and returns results in query order. Each
// search is single threaded; graph and heuristic must tolerate concurrent
// reads. The first error cancels the remaining queries.
func SearchAll[NodeType comparable](
	contextObject context.Context,
	graph Graph[NodeType],
	queries []Query[NodeType],
	heuristic Heuristic[NodeType],
	options ...Option,
) ([]Result[NodeType], error) {
	searchOptions := buildOptions(options)
	numberOfWorkers := min(searchOptions.NumberOfWorkers, len(queries))

	ctx, cancel := context.WithCancel(contextObject)
	defer cancel()

	results := make([]Result[NodeType], len(queries))
	taskChannel := make(chan searchTask[NodeType])

	var (
		waitGroup sync.WaitGroup
		errOnce   sync.Once
		firstErr  error
	)

	// --- Start worker pool ---
	for i := 0; i < numberOfWorkers; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			searcher := NewSearcher[NodeType](options...)
			for task := range taskChannel {
				result, err := searcher.Search(ctx, graph, task.query.Start, task.query.Goal, heuristic)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				results[task.index] = result
			}
		}()
	}

dispatch:
	for index, query := range queries {
		select {
		case <-ctx.Done():
			break dispatch
		case taskChannel <- searchTask[NodeType]{index: index, query: query}:
		}
	}
	close(taskChannel)
	waitGroup.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := contextObject.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
