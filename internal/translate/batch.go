package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// translates one batch with a single API request
type batchFunc func(ctx context.Context, items []TranslationItem) ([]TranslationResult, error)

// sends one system/user prompt pair to a model and returns its reply text
type completer interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

// batching and reply handling shared by the provider translators
type engine struct {
	provider Provider
	options  Options
	llm      completer
}

func (e engine) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	return translateSequential(ctx, items, e.options.batchSize(), e.translateBatch)
}

func (e engine) TranslateWithConcurrency(
	ctx context.Context,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	return translateConcurrent(ctx, items, e.options.batchSize(), concurrency, e.translateBatch)
}

func (e engine) translateBatch(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	reply, err := e.llm.complete(ctx, systemPrompt, BuildPrompt(e.options, items))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", e.provider, err)
	}
	return parseReply(e.provider, reply, items)
}

func splitBatches(items []TranslationItem, size int) [][]TranslationItem {
	var batches [][]TranslationItem
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

func sortResults(results []TranslationResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
}

// translateSequential sends batches one after another.
func translateSequential(
	ctx context.Context,
	items []TranslationItem,
	batchSize int,
	fn batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}

	var all []TranslationResult
	for i, batch := range splitBatches(items, batchSize) {
		results, err := fn(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i, err)
		}
		all = append(all, results...)
	}

	sortResults(all)
	return all, nil
}

// translateConcurrent sends batches from a shared queue to up to
// concurrency workers. The first failure cancels the rest.
func translateConcurrent(
	ctx context.Context,
	items []TranslationItem,
	batchSize int,
	concurrency int,
	fn batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	batches := splitBatches(items, batchSize)
	if len(batches) == 1 {
		return fn(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []TranslationResult
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := fn(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var all []TranslationResult
	var firstErr error
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", result.Index, result.Error)
				cancel()
			}
			continue
		}
		all = append(all, result.Results...)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	// a cancelled parent can stop the queue before every batch ran
	if err := ctx.Err(); err != nil && len(all) < len(items) {
		return nil, err
	}

	sortResults(all)
	return all, nil
}
