package wallet

import (
	"errors"
	"fmt"

	"github.com/tobinmarsh/kidwallet/internal/model"
)

// walletStrategy is one way of producing a wallet. Strategies are tried in
// declaration order; the first to succeed wins. Keeping the precedence as a
// list makes each path independently testable.
type walletStrategy struct {
	name string
	run  func() (model.ChildWallet, error)
}

func (e *Engine) runStrategies(childID string, strategies []walletStrategy) (model.ChildWallet, error) {
	var failures []error
	for _, s := range strategies {
		w, err := s.run()
		if err == nil {
			e.metrics.WalletComputed(s.name)
			return w, nil
		}
		e.logger.Warn("wallet strategy failed", "strategy", s.name, "child_id", childID, "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", s.name, err))
	}

	e.metrics.WalletFailed()
	return model.ChildWallet{}, fmt.Errorf("%w: %w", ErrWalletUnavailable, errors.Join(failures...))
}
