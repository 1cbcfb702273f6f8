package usecase

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
)

// AddressBook maps step names and symbolic roles to addresses.
// It is populated as steps execute or are skipped.
type AddressBook struct {
	entries map[string]common.Address
	order   []string
}

// NewAddressBook creates an empty address book
func NewAddressBook() *AddressBook {
	return &AddressBook{entries: make(map[string]common.Address)}
}

// Bind publishes an address under a name and its aliases
func (b *AddressBook) Bind(addr common.Address, name string, aliases ...string) error {
	for _, n := range append([]string{name}, aliases...) {
		if existing, ok := b.entries[n]; ok && existing != addr {
			return fmt.Errorf("%q is already bound to %s", n, existing.Hex())
		}
		if _, ok := b.entries[n]; !ok {
			b.order = append(b.order, n)
		}
		b.entries[n] = addr
	}
	return nil
}

// Resolve returns the address bound to name
func (b *AddressBook) Resolve(name string) (common.Address, error) {
	addr, ok := b.entries[name]
	if !ok {
		return common.Address{}, domain.UnresolvedRecipientErr{Role: name}
	}
	return addr, nil
}

// Has reports whether name is bound
func (b *AddressBook) Has(name string) bool {
	_, ok := b.entries[name]
	return ok
}

// Names returns bound names in binding order
func (b *AddressBook) Names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}
