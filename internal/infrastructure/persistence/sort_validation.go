package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Allowed sort fields per table
var (
	CustomerSortFields    = withCommon("name", "email", "status")
	ProjectSortFields     = withCommon("name", "status", "budget", "start_date", "end_date", "customer_id")
	InvoiceSortFields     = withCommon("invoice_number", "amount", "paid_amount", "status", "issue_date", "due_date", "customer_id")
	PaymentSortFields     = withCommon("amount", "payment_date", "method", "customer_id")
	PartnerSortFields     = withCommon("name", "share_percentage", "status")
	ExpenseSortFields     = withCommon("amount", "expense_date", "reimbursed", "partner_id")
	CategorySortFields    = withCommon("name", "type")
	TransactionSortFields = withCommon("amount", "transaction_date", "type", "category_id")
	UserSortFields        = withCommon("email", "full_name", "role", "status", "last_login_at")
	ActivityLogSortFields = map[string]bool{"created_at": true, "action": true, "entity_type": true}
	FileSortFields        = withCommon("file_name", "size", "content_type")
)
