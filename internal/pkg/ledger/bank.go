package ledger

import (
	"fmt"

	"github.com/vreid/shinpan/internal/pkg/common"
	"go.etcd.io/bbolt"
)

// The bank replaces the host chain's fungible value type: plain per-address
// balances mutated inside the same transaction as the operation that spends
// or earns them.

func balanceOf(tx *bbolt.Tx, address string) (uint64, error) {
	balances, err := bucket(tx, common.BankBalancesBucket)
	if err != nil {
		return 0, err
	}

	return common.BytesToUint64(balances.Get([]byte(address)), 0), nil
}

func setBalance(tx *bbolt.Tx, address string, amount uint64) error {
	balances, err := bucket(tx, common.BankBalancesBucket)
	if err != nil {
		return err
	}

	err = balances.Put([]byte(address), common.Uint64ToBytes(amount))
	if err != nil {
		return fmt.Errorf("failed to put balance for %s: %w", address, err)
	}

	return nil
}

func debit(tx *bbolt.Tx, address string, amount uint64) error {
	balance, err := balanceOf(tx, address)
	if err != nil {
		return err
	}

	if balance < amount {
		return ErrInsufficientFunds
	}

	return setBalance(tx, address, balance-amount)
}

func credit(tx *bbolt.Tx, address string, amount uint64) error {
	balance, err := balanceOf(tx, address)
	if err != nil {
		return err
	}

	return setBalance(tx, address, balance+amount)
}

// Deposit mints demo funds onto an address. The original demo funded callers
// from the host chain's faucet.
func (s *LedgerService) Deposit(address string, amount uint64) (uint64, error) {
	var balance uint64

	err := s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		err := credit(tx, address, amount)
		if err != nil {
			return err
		}

		balance, err = balanceOf(tx, address)

		return err
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}

func (s *LedgerService) Balance(address string) (uint64, error) {
	var balance uint64

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		var err error

		balance, err = balanceOf(tx, address)

		return err
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}
