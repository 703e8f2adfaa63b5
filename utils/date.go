package utils

import (
	"time"
)

const BrazilianDateLayout = "02/01/2006"

// FormatBRDate renders date as dd/mm/yyyy.
func FormatBRDate(date time.Time) string {
	return date.Format(BrazilianDateLayout)
}
