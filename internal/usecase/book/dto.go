package book

import (
	"bytes"
	"encoding/json"
	"time"

	domainBook "bookstore-api/internal/domain/book"
)

// NullableFloat tells an absent field apart from an explicit null, which
// clears the stored value.
type NullableFloat struct {
	Set   bool
	Value *float64
}

func NewNullableFloat(v float64) NullableFloat {
	return NullableFloat{Set: true, Value: &v}
}

func (n *NullableFloat) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type PublisherInput struct {
	Name          *string    `json:"name"`
	PublishedDate *time.Time `json:"publishedDate"`
}

// BookInput is the body of both create and partial update. Only fields
// present in the request are applied.
type BookInput struct {
	Name           *string         `json:"name"`
	Author         *string         `json:"author"`
	Genre          *string         `json:"genre"`
	Price          *float64        `json:"price"`
	PriceDiscount  NullableFloat   `json:"priceDiscount"`
	Available      *bool           `json:"available"`
	Publisher      *PublisherInput `json:"publisher"`
	PageCount      *int            `json:"pageCount"`
	BestSeller     *bool           `json:"bestSeller"`
	Summary        *string         `json:"summary"`
	Description    *string         `json:"description"`
	Language       *string         `json:"language"`
	RatingAverage  *float64        `json:"ratingAverage"`
	RatingQuantity *int            `json:"ratingQuantity"`
	Image          *string         `json:"image"`
}

func (in *BookInput) ApplyTo(b *domainBook.Book) {
	setString(&b.Name, in.Name)
	setString(&b.Author, in.Author)
	setString(&b.Genre, in.Genre)
	setString(&b.Summary, in.Summary)
	setString(&b.Description, in.Description)
	setString(&b.Language, in.Language)
	setString(&b.Image, in.Image)

	if in.Price != nil {
		b.Price = *in.Price
	}
	if in.PriceDiscount.Set {
		b.PriceDiscount = in.PriceDiscount.Value
	}
	if in.Available != nil {
		b.Available = in.Available
	}
	if in.PageCount != nil {
		b.PageCount = *in.PageCount
	}
	if in.BestSeller != nil {
		b.BestSeller = in.BestSeller
	}
	if in.RatingAverage != nil {
		b.RatingAverage = in.RatingAverage
	}
	if in.RatingQuantity != nil {
		b.RatingQuantity = *in.RatingQuantity
	}

	if in.Publisher != nil {
		if b.Publisher == nil {
			b.Publisher = &domainBook.Publisher{}
		}
		setString(&b.Publisher.Name, in.Publisher.Name)
		if in.Publisher.PublishedDate != nil {
			b.Publisher.PublishedDate = in.Publisher.PublishedDate
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
