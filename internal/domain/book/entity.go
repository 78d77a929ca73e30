package book

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultRatingAverage = 4.5
)

type Publisher struct {
	Name          string     `bson:"name,omitempty" json:"name,omitempty"`
	PublishedDate *time.Time `bson:"publishedDate,omitempty" json:"publishedDate,omitempty"`
}

// Book is a catalog entry. Pointer fields distinguish "unset" from a zero
// value so that defaults can be applied on save.
type Book struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name" validate:"required,max=200"`
	Author         string             `bson:"author" json:"author" validate:"required"`
	Genre          string             `bson:"genre" json:"genre" validate:"required"`
	Price          float64            `bson:"price" json:"price" validate:"gt=0"`
	PriceDiscount  *float64           `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty" validate:"omitempty,gte=0"`
	Available      *bool              `bson:"available" json:"available"`
	Publisher      *Publisher         `bson:"publisher,omitempty" json:"publisher,omitempty"`
	PageCount      int                `bson:"pageCount" json:"pageCount" validate:"gt=0"`
	BestSeller     *bool              `bson:"bestSeller" json:"bestSeller"`
	Summary        string             `bson:"summary" json:"summary" validate:"required"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Language       string             `bson:"language" json:"language" validate:"required"`
	RatingAverage  *float64           `bson:"ratingAverage" json:"ratingAverage" validate:"omitempty,gte=1,lte=5"`
	RatingQuantity int                `bson:"ratingQuantity" json:"ratingQuantity" validate:"gte=0"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	Version        int                `bson:"__v" json:"-"`
}

func (b *Book) HexID() string {
	return b.ID.Hex()
}
