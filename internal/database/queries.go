package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (receipt_ref, order_date, order_time, customer_name, customer_phone,
			customer_email, payment_method, items, cost_of_drinks, cost_of_cakes, service_charge,
			discount, discount_percent, subtotal, tax_paid, total_cost, status, served_by,
			table_number, order_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at`

	GetOrderByRefSQL = `
		SELECT id, receipt_ref, to_char(order_date, 'YYYY-MM-DD'), order_time, customer_name,
			   customer_phone, customer_email, payment_method, items, cost_of_drinks, cost_of_cakes,
			   service_charge, discount, discount_percent, subtotal, tax_paid, total_cost, status,
			   served_by, table_number, order_type, notes, created_at, updated_at
		FROM orders WHERE receipt_ref = $1`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE receipt_ref = $2 AND status = 'Pending'`

	GetNextReceiptSequenceSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(receipt_ref FROM 'REC_[0-9]{8}_([0-9]{3})') AS INTEGER)), 0) + 1
		FROM orders
		WHERE receipt_ref LIKE $1`

	GetDailyReportSQL = `
		SELECT COUNT(*),
			   COALESCE(SUM(subtotal), 0),
			   COALESCE(SUM(discount), 0),
			   COALESCE(SUM(service_charge), 0),
			   COALESCE(SUM(tax_paid), 0),
			   COALESCE(SUM(total_cost), 0)
		FROM orders
		WHERE order_date = $1 AND status <> 'Cancelled'`

	GetDailyPaymentBreakdownSQL = `
		SELECT payment_method, COUNT(*), COALESCE(SUM(total_cost), 0)
		FROM orders
		WHERE order_date = $1 AND status <> 'Cancelled'
		GROUP BY payment_method
		ORDER BY payment_method`
)

// Customer queries
const (
	GetCustomerByPhoneForUpdateSQL = `
		SELECT id, name, phone, email, total_orders, total_spent, loyalty_points, loyalty_tier
		FROM customers WHERE phone = $1
		FOR UPDATE`

	InsertCustomerSQL = `
		INSERT INTO customers (name, phone, email)
		VALUES ($1, $2, $3)
		RETURNING id`

	UpdateCustomerLoyaltySQL = `
		UPDATE customers
		SET total_orders = $1, total_spent = $2, loyalty_points = $3, loyalty_tier = $4
		WHERE id = $5`
)

// Menu queries
const (
	GetMenuItemsSQL = `
		SELECT id, name, category, price
		FROM menu_items
		ORDER BY name ASC`
)

// Printer queries
const (
	InsertPrinterSQL = `
		INSERT INTO printers (name, status)
		VALUES ($1, 'online')
		ON CONFLICT (name) DO UPDATE SET
			status = 'online',
			last_seen = NOW()
		RETURNING id`

	UpdatePrinterStatusSQL = `
		UPDATE printers SET status = $1, last_seen = NOW()
		WHERE name = $2`

	IncrementPrinterCounterSQL = `
		UPDATE printers SET last_seen = NOW(), receipts_printed = receipts_printed + $1
		WHERE name = $2`

	CheckPrinterOnlineSQL = `
		SELECT COUNT(*) FROM printers WHERE name = $1 AND status = 'online'`

	GetAllPrintersSQL = `
		SELECT name, status, receipts_printed, last_seen, created_at
		FROM printers
		ORDER BY created_at ASC`
)

// Receipt queries
const (
	InsertReceiptSQL = `
		INSERT INTO receipts (receipt_ref, body, printed_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (receipt_ref) DO UPDATE SET
			body = EXCLUDED.body,
			printed_by = EXCLUDED.printed_by,
			printed_at = NOW()`

	GetReceiptByRefSQL = `
		SELECT body, printed_by, printed_at
		FROM receipts WHERE receipt_ref = $1`
)
