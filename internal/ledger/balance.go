package ledger

import "gorm.io/gorm"

// RecalculateBalance rewrites an account's cached balance as the signed sum
// of its transactions (income positive, expense negative).
//
// tx must be the handle of the unit of work that performed the triggering
// ledger write: the balance update commits or rolls back together with it,
// so a stale balance is never observable outside the transaction. Calling
// it again with no intervening ledger change is a no-op.
func RecalculateBalance(tx *gorm.DB, accountID string) error {
	return tx.Exec(
		`UPDATE accounts SET balance = (
			SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)
			FROM transactions WHERE account_id = ?
		 ) WHERE id = ?`,
		accountID, accountID,
	).Error
}
