package service

import (
	"context"
	"fmt"
	"time"

	"despesas/internal/repository"
)

// CheckStore pings the store once at startup. Failure is fatal for a run.
func CheckStore(ctx context.Context, repo repository.ExpenseRepository) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
