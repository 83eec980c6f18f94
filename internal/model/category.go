package model

// Category is an asset category an upload can be filed under, together with
// the CSV columns that hold its date and price.
type Category struct {
	Name        string
	DateColumn  string
	PriceColumn string
}
