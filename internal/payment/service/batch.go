package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"qosic/internal/payment/models"
)

// BatchItem pairs one payer with its outcome. Exactly one of Result and Err
// is set.
type BatchItem struct {
	Payer  models.Payer
	Result *models.Result
	Err    error
}

// PayBatch issues independent payments concurrently, bounded by the batch
// limit. One payer failing does not cancel the others; each item carries its
// own result or error, in input order.
func (s *Service) PayBatch(ctx context.Context, payers []models.Payer) []BatchItem {
	items := make([]BatchItem, len(payers))

	var g errgroup.Group
	g.SetLimit(s.batchLimit)
	for i, payer := range payers {
		i, payer := i, payer
		g.Go(func() error {
			result, err := s.Pay(ctx, payer)
			items[i] = BatchItem{Payer: payer, Result: result, Err: err}
			return nil
		})
	}
	g.Wait()

	return items
}
