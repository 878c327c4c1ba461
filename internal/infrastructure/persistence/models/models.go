// Package models holds the GORM models for the normalized sales schema.
// The analytics engine reads these tables only; sales and their child
// records are written once at ingestion time and never mutated.
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Sale statuses the analytics engine distinguishes. The column is free text;
// any other value is treated as completed-equivalent except where an
// operation filters explicitly.
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// Channel types: 'P' in-person, 'D' delivery.
const (
	ChannelTypeInPerson = "P"
	ChannelTypeDelivery = "D"
)

// Sale is the central fact record. total_amount is the authoritative revenue
// figure for every aggregation; it is never reconstructed from items.
type Sale struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	StoreID    int64  `gorm:"not null;index" json:"store_id"`
	SubBrandID *int64 `json:"sub_brand_id,omitempty"`
	CustomerID *int64 `gorm:"index" json:"customer_id,omitempty"`
	ChannelID  int64  `gorm:"not null;index" json:"channel_id"`

	CodSale1       string `gorm:"size:100" json:"cod_sale1,omitempty"`
	CodSale2       string `gorm:"size:100" json:"cod_sale2,omitempty"`
	CustomerName   string `gorm:"size:100" json:"customer_name,omitempty"`
	SaleStatusDesc string `gorm:"size:100;not null;index" json:"sale_status_desc"`

	TotalAmountItems decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount_items"`
	TotalDiscount    decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"total_discount"`
	TotalIncrease    decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"total_increase"`
	DeliveryFee      decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"delivery_fee"`
	ServiceTaxFee    decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"service_tax_fee"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	ValuePaid        decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"value_paid"`

	ProductionSeconds *int `json:"production_seconds,omitempty"`
	DeliverySeconds   *int `json:"delivery_seconds,omitempty"`
	PeopleQuantity    *int `json:"people_quantity,omitempty"`

	DiscountReason string `gorm:"size:300" json:"discount_reason,omitempty"`
	IncreaseReason string `gorm:"size:300" json:"increase_reason,omitempty"`
	Origin         string `gorm:"size:100;default:POS" json:"origin,omitempty"`

	Store    *Store        `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Channel  *Channel      `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Products []ProductSale `gorm:"foreignKey:SaleID" json:"products,omitempty"`
	Payments []Payment     `gorm:"foreignKey:SaleID" json:"payments,omitempty"`
	Delivery *DeliverySale `gorm:"foreignKey:SaleID" json:"delivery,omitempty"`
}

// ProductSale is a line item linking a sale to a product.
type ProductSale struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	SaleID       int64           `gorm:"not null;index" json:"sale_id"`
	ProductID    int64           `gorm:"not null;index" json:"product_id"`
	Quantity     float64         `gorm:"not null" json:"quantity"`
	BasePrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"base_price"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Observations string          `gorm:"size:300" json:"observations,omitempty"`

	Product *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Items   []ItemProductSale `gorm:"foreignKey:ProductSaleID" json:"items,omitempty"`
}

// ItemProductSale is a customization/add-on applied to a product line.
type ItemProductSale struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	ProductSaleID   int64           `gorm:"not null;index" json:"product_sale_id"`
	ItemID          int64           `gorm:"not null;index" json:"item_id"`
	OptionGroupID   *int64          `json:"option_group_id,omitempty"`
	Quantity        float64         `gorm:"not null" json:"quantity"`
	AdditionalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"additional_price"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Amount          float64         `gorm:"default:1" json:"amount"`
	Observations    string          `gorm:"size:300" json:"observations,omitempty"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// DeliverySale is the one-to-one delivery metadata of a sale.
type DeliverySale struct {
	ID                  int64            `gorm:"primaryKey" json:"id"`
	SaleID              int64            `gorm:"not null;index" json:"sale_id"`
	CourierID           string           `gorm:"size:100" json:"courier_id,omitempty"`
	CourierName         string           `gorm:"size:100" json:"courier_name,omitempty"`
	CourierPhone        string           `gorm:"size:100" json:"courier_phone,omitempty"`
	CourierType         string           `gorm:"size:100" json:"courier_type,omitempty"`
	DeliveredBy         string           `gorm:"size:100" json:"delivered_by,omitempty"`
	DeliveryType        string           `gorm:"size:100" json:"delivery_type,omitempty"`
	Status              string           `gorm:"size:100" json:"status,omitempty"`
	DeliveryFee         *decimal.Decimal `gorm:"type:numeric(10,2)" json:"delivery_fee,omitempty"`
	CourierFee          *decimal.Decimal `gorm:"type:numeric(10,2)" json:"courier_fee,omitempty"`
	Timing              string           `gorm:"size:100" json:"timing,omitempty"`
	Mode                string           `gorm:"size:100" json:"mode,omitempty"`
	DeliveryTimeMinutes *int             `json:"delivery_time_minutes,omitempty"`

	Addresses []DeliveryAddress `gorm:"foreignKey:DeliverySaleID" json:"addresses,omitempty"`
}

// DeliveryAddress is a normalized address component of a delivery.
type DeliveryAddress struct {
	ID               int64    `gorm:"primaryKey" json:"id"`
	SaleID           int64    `gorm:"not null;index" json:"sale_id"`
	DeliverySaleID   *int64   `gorm:"index" json:"delivery_sale_id,omitempty"`
	Street           string   `gorm:"size:200" json:"street,omitempty"`
	Number           string   `gorm:"size:20" json:"number,omitempty"`
	Complement       string   `gorm:"size:200" json:"complement,omitempty"`
	FormattedAddress string   `gorm:"size:500" json:"formatted_address,omitempty"`
	Neighborhood     string   `gorm:"size:100" json:"neighborhood,omitempty"`
	City             string   `gorm:"size:100" json:"city,omitempty"`
	State            string   `gorm:"size:50" json:"state,omitempty"`
	Country          string   `gorm:"size:100" json:"country,omitempty"`
	PostalCode       string   `gorm:"size:20" json:"postal_code,omitempty"`
	Reference        string   `gorm:"size:300" json:"reference,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// Payment is one of possibly many payments settling a sale.
type Payment struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	SaleID        int64           `gorm:"not null;index" json:"sale_id"`
	PaymentTypeID *int64          `gorm:"index" json:"payment_type_id,omitempty"`
	Value         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"value"`
	IsOnline      bool            `gorm:"default:false" json:"is_online"`
	Description   string          `gorm:"size:100" json:"description,omitempty"`
	Currency      string          `gorm:"size:10;default:BRL" json:"currency,omitempty"`

	PaymentType *PaymentType `gorm:"foreignKey:PaymentTypeID" json:"payment_type,omitempty"`
}

// Store is the store dimension.
type Store struct {
	ID            int64            `gorm:"primaryKey" json:"id"`
	BrandID       *int64           `json:"brand_id,omitempty"`
	SubBrandID    *int64           `json:"sub_brand_id,omitempty"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	City          string           `gorm:"size:100" json:"city,omitempty"`
	State         string           `gorm:"size:2" json:"state,omitempty"`
	District      string           `gorm:"size:100" json:"district,omitempty"`
	AddressStreet string           `gorm:"size:200" json:"address_street,omitempty"`
	AddressNumber *int             `json:"address_number,omitempty"`
	Zipcode       string           `gorm:"size:10" json:"zipcode,omitempty"`
	Latitude      *decimal.Decimal `gorm:"type:numeric(9,6)" json:"latitude,omitempty"`
	Longitude     *decimal.Decimal `gorm:"type:numeric(9,6)" json:"longitude,omitempty"`
	IsActive      bool             `json:"is_active"`
	IsOwn         bool             `gorm:"default:false" json:"is_own"`
	IsHolding     bool             `gorm:"default:false" json:"is_holding"`
	CreationDate  *time.Time       `gorm:"type:date" json:"creation_date,omitempty"`
}

// Channel is the sales-channel dimension.
type Channel struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	BrandID     *int64 `json:"brand_id,omitempty"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
	Type        string `gorm:"type:char(1)" json:"type,omitempty"`
}

// Product is the product dimension.
type Product struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Name       string `gorm:"size:255;not null" json:"name"`
	PosName    string `gorm:"size:255" json:"pos_name,omitempty"`
	IsActive   bool   `json:"is_active"`
}

// Item is the add-on/customization dimension.
type Item struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	IsActive bool   `json:"is_active"`
}

// Customer is the customer dimension.
type Customer struct {
	ID                     int64      `gorm:"primaryKey" json:"id"`
	CustomerName           string     `gorm:"size:100" json:"customer_name,omitempty"`
	Email                  string     `gorm:"size:100" json:"email,omitempty"`
	PhoneNumber            string     `gorm:"size:50" json:"phone_number,omitempty"`
	BirthDate              *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	Gender                 string     `gorm:"size:10" json:"gender,omitempty"`
	StoreID                *int64     `json:"store_id,omitempty"`
	SubBrandID             *int64     `json:"sub_brand_id,omitempty"`
	RegistrationOrigin     string     `gorm:"size:20" json:"registration_origin,omitempty"`
	AgreeTerms             bool       `gorm:"default:false" json:"agree_terms"`
	ReceivePromotionsEmail bool       `gorm:"default:false" json:"receive_promotions_email"`
	ReceivePromotionsSMS   bool       `gorm:"default:false" json:"receive_promotions_sms"`
}

// PaymentType is the payment-type dimension.
type PaymentType struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Description string `gorm:"size:100;not null" json:"description"`
	IsActive    bool   `json:"is_active"`
}

// Brand, SubBrand and Category form the catalog hierarchy.
type Brand struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

type SubBrand struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	BrandID *int64 `json:"brand_id,omitempty"`
	Name    string `gorm:"size:100;not null" json:"name"`
}

type Category struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

// OptionGroup groups the add-on items offered for a product.
type OptionGroup struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

// Dashboard is a saved widget layout. Config is opaque JSON owned by the
// frontend.
type Dashboard struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null;index" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Config      datatypes.JSON `gorm:"not null" json:"config"`
	UserID      *int64         `json:"user_id,omitempty"`
	IsDefault   bool           `gorm:"not null;default:false;index" json:"is_default"`
	ShareToken  *string        `gorm:"size:64;uniqueIndex" json:"share_token,omitempty"`
	IsShared    bool           `gorm:"not null;default:false" json:"is_shared"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// All lists every model for auto-migration in tests and tooling.
func All() []any {
	return []any{
		&Brand{}, &SubBrand{}, &Category{}, &OptionGroup{},
		&Store{}, &Channel{}, &Product{}, &Item{}, &Customer{}, &PaymentType{},
		&Sale{}, &ProductSale{}, &ItemProductSale{},
		&DeliverySale{}, &DeliveryAddress{}, &Payment{},
		&Dashboard{},
	}
}
