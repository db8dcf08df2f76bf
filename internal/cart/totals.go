package cart

import "github.com/shopspring/decimal"

// ItemCount sums the quantities of every line.
func ItemCount(c Cart) int {
	count := 0
	for _, line := range c {
		count += line.Quantity
	}
	return count
}

// TotalPrice sums currentPrice * quantity over every line.
func TotalPrice(c Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c {
		total = total.Add(LineTotal(line))
	}
	return total
}

// LineTotal is the extended price of a single line.
func LineTotal(line LineItem) decimal.Decimal {
	return line.CurrentPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}
