package book

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")
)

const (
	MsgNameRequired      = "A book must have a name"
	MsgNameTooLong       = "A book name must have less or equal than 200 characters"
	MsgAuthorRequired    = "A book must have an author"
	MsgGenreRequired     = "A book must have a genre"
	MsgPriceRequired     = "A book must have a price"
	MsgPageCountRequired = "A book must have a page count"
	MsgSummaryRequired   = "A book must have a description"
	MsgLanguageRequired  = "A book must have a language"
	MsgRatingRange       = "Rating must be between 1.0 and 5.0"
	MsgDiscountNegative  = "Discount price must not be negative"
	MsgRatingQuantity    = "Rating quantity must not be negative"
)
