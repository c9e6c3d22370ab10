package obj

import (
	"encoding/json"
	"log"

	"github.com/milk9111/hollowmere/session"
)

// Money is the currency manager. The session core adjusts the balance
// through the Wallet face; everything else sees the opaque snapshot.
type Money struct {
	balance int
}

func NewMoney() *Money {
	return &Money{}
}

func (m *Money) Balance() int {
	return m.balance
}

func (m *Money) SetBalance(amount int) {
	if amount < 0 {
		amount = 0
	}
	m.balance = amount
}

// Earn adds to the balance.
func (m *Money) Earn(amount int) {
	if amount > 0 {
		m.balance += amount
	}
}

// Spend removes amount if affordable, reporting whether it was.
func (m *Money) Spend(amount int) bool {
	if amount < 0 || amount > m.balance {
		return false
	}
	m.balance -= amount
	return true
}

type moneySnapshot struct {
	Balance int `json:"balance"`
}

func (m *Money) Snapshot() session.Snapshot {
	data, err := json.Marshal(moneySnapshot{Balance: m.balance})
	if err != nil {
		log.Printf("money: snapshot: %v", err)
		return nil
	}
	return data
}

func (m *Money) Apply(snap session.Snapshot) {
	if snap == nil {
		return
	}
	var s moneySnapshot
	if err := json.Unmarshal(snap, &s); err != nil {
		log.Printf("money: apply snapshot: %v", err)
		return
	}
	m.SetBalance(s.Balance)
}

func (m *Money) Dispose() {
	m.balance = 0
}
