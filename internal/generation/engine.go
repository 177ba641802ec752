package generation

import (
	"context"
	"log"

	"assessment-service/internal/fallback"
	"assessment-service/internal/models"

	"golang.org/x/sync/errgroup"
)

// Provider is the content gateway contract: one call generates one batch of
// len(categories) items. Implementations never retry; failed batches are
// compensated here.
type Provider interface {
	GenerateBatch(ctx context.Context, sectionNumber int, categories []string, itemType string, profile models.UserProfile) ([]models.Question, error)
}

// Engine populates one section with exactly the requested number of items,
// fanning batches out to the provider concurrently and backfilling any
// shortfall from the curated bank and placeholders.
type Engine struct {
	provider  Provider
	bank      *fallback.Bank
	batchSize int
}

func NewEngine(provider Provider, bank *fallback.Bank, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Engine{provider: provider, bank: bank, batchSize: batchSize}
}

// GenerateSection returns exactly target items for the section. Individual
// batch failures (transport, timeout, unparsable payload) cost only their own
// items; the fallback bank and placeholders guarantee the final count.
func (e *Engine) GenerateSection(ctx context.Context, sectionNumber int, categories []string, itemType string, profile models.UserProfile, target int) []models.Question {
	if target <= 0 || len(categories) == 0 {
		return nil
	}

	numBatches := (target + e.batchSize - 1) / e.batchSize
	results := make([][]models.Question, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	for k := 0; k < numBatches; k++ {
		k := k
		count := e.batchSize
		if remaining := target - k*e.batchSize; remaining < count {
			count = remaining
		}
		batchCats := batchCategories(categories, k*e.batchSize, count)
		g.Go(func() error {
			items, err := e.provider.GenerateBatch(gctx, sectionNumber, batchCats, itemType, profile)
			if err != nil {
				// A failed batch contributes zero items; backfill covers it.
				log.Printf("Section %d batch %d generation failed: %v", sectionNumber, k, err)
				return nil
			}
			if len(items) > count {
				items = items[:count]
			}
			results[k] = items
			return nil
		})
	}
	// Closures always return nil; Wait only synchronizes the fan-in.
	_ = g.Wait()

	merged := make([]models.Question, 0, target)
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	if len(merged) > target {
		merged = merged[:target]
	}

	if missing := target - len(merged); missing > 0 {
		if sectionNumber == models.SectionBehavioral && e.bank != nil {
			drawn := e.bank.Draw(missing, categories)
			merged = append(merged, drawn...)
			log.Printf("Section %d backfilled %d curated items", sectionNumber, len(drawn))
		}
		if remaining := target - len(merged); remaining > 0 {
			merged = append(merged, fallback.Placeholders(sectionNumber, itemType, categories, remaining)...)
			log.Printf("Section %d backfilled %d placeholder items", sectionNumber, remaining)
		}
	}
	return merged
}

// batchCategories assigns wrapping category slices so every batch is fully
// populated even when the category list is shorter than the batch.
func batchCategories(categories []string, start, count int) []string {
	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i] = categories[(start+i)%len(categories)]
	}
	return out
}
