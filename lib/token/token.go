package token

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
)

var ErrInsufficientBalance = errors.New("insufficient token balance")

// Ledger is the external balance book the pool settles against. The pool
// never custodies the traded assets itself: it reads its own balance here
// and transfers out of its own account, nothing more.
type Ledger interface {
	BalanceOf(token, account common.Address) *ui.Int
	Transfer(token, from, to common.Address, amount *ui.Int) error
}

// Book is an in-memory Ledger for tests and the scenario runner.
type Book struct {
	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*ui.Int
}

func NewBook() *Book {
	return &Book{balances: make(map[common.Address]map[common.Address]*ui.Int)}
}

func (b *Book) BalanceOf(token, account common.Address) *ui.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bal, ok := b.balances[token][account]; ok {
		return bal.Clone()
	}
	return ui.NewInt(0)
}

// Mint credits freshly created tokens to an account.
func (b *Book) Mint(token, account common.Address, amount *ui.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(token, account, amount)
}

func (b *Book) Transfer(token, from, to common.Address, amount *ui.Int) error {
	if amount.IsZero() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[token][from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	b.credit(token, to, amount)
	return nil
}

func (b *Book) credit(token, account common.Address, amount *ui.Int) {
	accounts, ok := b.balances[token]
	if !ok {
		accounts = make(map[common.Address]*ui.Int)
		b.balances[token] = accounts
	}
	bal, ok := accounts[account]
	if !ok {
		bal = ui.NewInt(0)
		accounts[account] = bal
	}
	bal.Add(bal, amount)
}
