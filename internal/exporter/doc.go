// Package exporter formats values for display and exports presentation tables.
//
// Formatting functions are pure and total: missing or malformed values render
// as "N/A" and never return an error. Scaled currency follows the Indian
// numbering convention:
//
//	FormatScaledCurrency(150000000)  // ₹15.00Cr
//	FormatScaledCurrency(1200000000) // ₹1.20B
//	FormatScaledCurrency(250000)     // ₹2.50L
//	FormatScaledCurrency(1234.5)     // ₹1,234.50
//
// TableWriter exports a domain.Table as CSV (with a UTF-8 BOM for Excel), as
// an XLSX workbook or as a landscape PDF.
package exporter
