package book

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstore-api/internal/query"
	"bookstore-api/internal/validator"
	"bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

var messages = validator.Messages{
	"name.required":     MsgNameRequired,
	"name.max":          MsgNameTooLong,
	"author.required":   MsgAuthorRequired,
	"genre.required":    MsgGenreRequired,
	"price":             MsgPriceRequired,
	"pageCount":         MsgPageCountRequired,
	"summary.required":  MsgSummaryRequired,
	"language.required": MsgLanguageRequired,
	"ratingAverage":     MsgRatingRange,
	"priceDiscount":     MsgDiscountNegative,
	"ratingQuantity":    MsgRatingQuantity,
}

// QuerySchema lists the book fields list endpoints may filter on.
var QuerySchema = query.Schema{
	"_id":                     query.ObjectID,
	"name":                    query.String,
	"author":                  query.String,
	"genre":                   query.String,
	"price":                   query.Number,
	"priceDiscount":           query.Number,
	"available":               query.Bool,
	"publisher.name":          query.String,
	"publisher.publishedDate": query.Date,
	"pageCount":               query.Number,
	"bestSeller":              query.Bool,
	"summary":                 query.String,
	"description":             query.String,
	"language":                query.String,
	"ratingAverage":           query.Number,
	"ratingQuantity":          query.Number,
	"image":                   query.String,
	"createdAt":               query.Date,
	"updatedAt":               query.Date,
}

// BeforeSave runs before every insert or replace of a book document.
func BeforeSave(b *Book, now time.Time) error {
	b.Name = utils.SanitizeText(b.Name)
	b.Author = utils.SanitizeText(b.Author)
	b.Genre = utils.SanitizeText(b.Genre)
	b.Language = utils.SanitizeText(b.Language)
	b.Summary = utils.SanitizeMultiline(b.Summary)
	b.Description = utils.SanitizeMultiline(b.Description)
	b.Image = utils.SanitizeText(b.Image)
	if b.Publisher != nil {
		b.Publisher.Name = utils.SanitizeText(b.Publisher.Name)
	}

	applyDefaults(b)

	if err := validator.ValidateStruct(b, messages); err != nil {
		return err
	}
	if b.PriceDiscount != nil && *b.PriceDiscount >= b.Price {
		value := strconv.FormatFloat(*b.PriceDiscount, 'f', -1, 64)
		return errors.NewValidationError("priceDiscount", "ltfield",
			fmt.Sprintf("Discount price (%s) should be below regular price", value), *b.PriceDiscount)
	}

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	b.Version++
	return nil
}

func applyDefaults(b *Book) {
	if b.Available == nil {
		available := true
		b.Available = &available
	}
	if b.BestSeller == nil {
		bestSeller := false
		b.BestSeller = &bestSeller
	}
	if b.RatingAverage == nil {
		rating := DefaultRatingAverage
		b.RatingAverage = &rating
	}
}
