package model

// CountRecord is one row of a ranked breakdown: how many records share a label.
type CountRecord struct {
	Label string
	Count int
}
