package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/clock"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	invoicingdomain "github.com/smallbiznis/faktura/internal/invoicing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSchedulerTest(t *testing.T, cfg Config) (*Scheduler, *gorm.DB, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invoicedomain.Invoice{}, &invoicedomain.InvoiceLine{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	s, err := New(Params{DB: db, Log: zap.NewNop(), Clock: fake, Config: cfg})
	require.NoError(t, err)

	return s, db, fake, node
}

func seedInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, status invoicingdomain.PaymentStatus, dueDate time.Time) snowflake.ID {
	t.Helper()
	inv := invoicedomain.Invoice{
		ID:           node.Generate(),
		Number:       "RE-20260301120000-42-AB-" + node.Generate().String(),
		CustomerID:   node.Generate(),
		CustomerName: "Erika Mustermann",
		OperatorCode: "AB",
		Status:       status,
		IssuedAt:     dueDate.AddDate(0, 0, -14),
		DueDate:      dueDate,
		Currency:     "EUR",
	}
	require.NoError(t, db.Create(&inv).Error)
	return inv.ID
}

// fetchInvoice loads into a fresh struct each time; reusing a dest across
// First calls would let gorm carry the previous primary key into the WHERE
// clause.
func fetchInvoice(t *testing.T, db *gorm.DB, id snowflake.ID) invoicedomain.Invoice {
	t.Helper()
	var inv invoicedomain.Invoice
	require.NoError(t, db.First(&inv, id).Error)
	return inv
}

func TestSweepOverdue(t *testing.T) {
	s, db, fake, node := setupSchedulerTest(t, Config{})

	past := fake.Now().AddDate(0, 0, -1)
	future := fake.Now().AddDate(0, 0, 7)

	overdueID := seedInvoice(t, db, node, invoicingdomain.StatusOpen, past)
	notDueID := seedInvoice(t, db, node, invoicingdomain.StatusOpen, future)
	paidID := seedInvoice(t, db, node, invoicingdomain.StatusPaid, past)

	require.NoError(t, s.SweepOverdue(context.Background()))

	assert.Equal(t, invoicingdomain.StatusOverdue, fetchInvoice(t, db, overdueID).Status)
	assert.Equal(t, invoicingdomain.StatusOpen, fetchInvoice(t, db, notDueID).Status)
	assert.Equal(t, invoicingdomain.StatusPaid, fetchInvoice(t, db, paidID).Status)
}

func TestSweepOverdueDueDateNotYetPassed(t *testing.T) {
	s, db, fake, node := setupSchedulerTest(t, Config{})

	// Due exactly now: not yet past due.
	id := seedInvoice(t, db, node, invoicingdomain.StatusOpen, fake.Now())
	require.NoError(t, s.SweepOverdue(context.Background()))
	assert.Equal(t, invoicingdomain.StatusOpen, fetchInvoice(t, db, id).Status)

	// One day later the same invoice is swept.
	fake.Advance(24 * time.Hour)
	require.NoError(t, s.SweepOverdue(context.Background()))
	assert.Equal(t, invoicingdomain.StatusOverdue, fetchInvoice(t, db, id).Status)
}

func TestSweepOverdueBatches(t *testing.T) {
	s, db, fake, node := setupSchedulerTest(t, Config{BatchSize: 2})

	past := fake.Now().AddDate(0, 0, -3)
	for i := 0; i < 5; i++ {
		seedInvoice(t, db, node, invoicingdomain.StatusOpen, past)
	}

	require.NoError(t, s.SweepOverdue(context.Background()))

	var count int64
	require.NoError(t, db.Model(&invoicedomain.Invoice{}).
		Where("status = ?", invoicingdomain.StatusOverdue).
		Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
