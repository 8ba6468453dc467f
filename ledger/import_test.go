package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahtshamyou/jhulelal/ledger"
)

// =============================================================================
// BULK IMPORT
// =============================================================================

func TestImportOwners_PartialFailure(t *testing.T) {
	// GIVEN: Three rows where the second reuses an existing phone number
	// WHEN: Importing
	// THEN: Two rows are inserted and the failure is reported with its
	//       original index

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()

	_, err := l.CreateOwner(ctx, ledger.Owner{Name: "Existing", Phone: "0300-1111111"})
	require.NoError(t, err)

	result, err := l.ImportOwners(ctx, []ledger.OwnerImport{
		{Name: "Ali", Phone: "0300-2222222", Balance: dec(150)},
		{Name: "Dup", Phone: "0300-1111111", Balance: dec(50)},
		{Name: "Sara", Phone: "0300-3333333"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.InsertedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index, "error carries the original row index")
	assert.Contains(t, result.Errors[0].Error, "duplicate")
}

func TestImportOwners_OpeningBalances(t *testing.T) {
	// GIVEN: Rows with positive, zero and negative stated balances
	// WHEN: Importing
	// THEN: Only the positive balance produces an opening_balance entry and
	//       its recorded balance is the stated amount verbatim

	l, _ := newTestLedger(t, debitConv{})
	ctx := context.Background()

	result, err := l.ImportOwners(ctx, []ledger.OwnerImport{
		{Name: "Ali", Phone: "0300-2222222", Balance: dec(150)},
		{Name: "Sara", Phone: "0300-3333333"},
		{Name: "Zain", Phone: "0300-4444444", Balance: dec(-20)},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.InsertedCount)

	var withEntries, withoutEntries int
	for _, o := range result.Owners {
		page, err := l.Entries(ctx, ledger.Filter{OwnerID: o.ID})
		require.NoError(t, err)
		if o.Name == "Ali" {
			require.Len(t, page.Results, 1)
			e := page.Results[0]
			assert.Equal(t, ledger.TxOpeningBalance, e.Type)
			assert.Equal(t, "Opening Balance", e.Description)
			assert.True(t, e.Debit.Equal(dec(150)), "debit-positive kind places the amount on the debit side")
			assert.True(t, e.Balance.Equal(dec(150)))
			withEntries++
		} else {
			assert.Empty(t, page.Results)
			withoutEntries++
		}
	}
	assert.Equal(t, 1, withEntries)
	assert.Equal(t, 2, withoutEntries)

	// Stated balances are cached on the owner records as imported.
	aliBalance, err := l.Balance(ctx, result.Owners[0].ID)
	require.NoError(t, err)
	assert.True(t, aliBalance.Equal(dec(150)))
}

func TestImportOwners_CreditPositiveKind(t *testing.T) {
	// GIVEN: A supplier-style ledger
	// WHEN: Importing an owner with an opening balance
	// THEN: The opening amount lands on the credit side

	l, _ := newTestLedger(t, creditConv{})
	ctx := context.Background()

	result, err := l.ImportOwners(ctx, []ledger.OwnerImport{
		{Name: "Traders", Phone: "0300-5555555", Balance: dec(900)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.InsertedCount)

	page, err := l.Entries(ctx, ledger.Filter{OwnerID: result.Owners[0].ID})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.True(t, page.Results[0].Credit.Equal(dec(900)))
	assert.True(t, page.Results[0].Debit.IsZero())
	assert.True(t, page.Results[0].Balance.Equal(dec(900)))
}

func TestImportOwners_EmptyPhonesNeverCollide(t *testing.T) {
	// GIVEN: Two rows with no phone number
	// WHEN: Importing
	// THEN: Both insert; the phone uniqueness rule only applies to non-empty
	//       phones

	l, _ := newTestLedger(t, debitConv{})

	result, err := l.ImportOwners(context.Background(), []ledger.OwnerImport{
		{Name: "A"},
		{Name: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Empty(t, result.Errors)
}
