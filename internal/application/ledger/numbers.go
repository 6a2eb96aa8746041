package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentNumberGenerator produces human-readable document numbers
type DocumentNumberGenerator interface {
	Next(prefix string) string
}

// UUIDNumberGenerator generates numbers like PAY-20260831-1A2B3C4D.
// The date segment keeps documents sortable at a glance; the uuid
// segment keeps them unique without a sequence table.
type UUIDNumberGenerator struct{}

// NewUUIDNumberGenerator creates a new UUIDNumberGenerator
func NewUUIDNumberGenerator() *UUIDNumberGenerator {
	return &UUIDNumberGenerator{}
}

// Next returns the next document number for the given prefix
func (g *UUIDNumberGenerator) Next(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), id)
}

// Document number prefixes
const (
	PaymentNumberPrefix = "PAY"
	CreditNumberPrefix  = "CR"
	InvoiceNumberPrefix = "INV"
)
