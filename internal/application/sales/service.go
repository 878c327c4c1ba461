package sales

import (
	"context"
	"time"

	"github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/domain/shared"
	"github.com/resto-bi/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
)

// Repository is the persistence surface the sales service needs
type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.Sale, error)
	List(ctx context.Context, f analytics.SaleFilter, page, pageSize int, sortField, sortOrder string) (shared.Paginated[models.Sale], error)
	Count(ctx context.Context, f analytics.SaleFilter) (int64, error)
	Create(ctx context.Context, sale *models.Sale) error
}

// Service provides application-level sale operations
type Service struct {
	repo Repository
}

// NewService creates a new sales Service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns sales matching the filter, newest first unless a sort is
// given.
func (s *Service) List(ctx context.Context, f analytics.SaleFilter, page, pageSize int, sortField, sortOrder string) (shared.Paginated[models.Sale], error) {
	return s.repo.List(ctx, f, page, pageSize, sortField, sortOrder)
}

// Get returns one sale with its full line items, payments and delivery data
func (s *Service) Get(ctx context.Context, id int64) (*models.Sale, error) {
	return s.repo.FindByID(ctx, id)
}

// Count returns how many sales match the filter
func (s *Service) Count(ctx context.Context, f analytics.SaleFilter) (int64, error) {
	return s.repo.Count(ctx, f)
}

// ProductLineInput is one product line of an ingested sale
type ProductLineInput struct {
	ProductID    int64           `json:"product_id" binding:"required"`
	Quantity     float64         `json:"quantity" binding:"required,gt=0"`
	BasePrice    decimal.Decimal `json:"base_price" binding:"required"`
	TotalPrice   decimal.Decimal `json:"total_price" binding:"required"`
	Observations string          `json:"observations"`
	Items        []ItemInput     `json:"items"`
}

// ItemInput is one add-on applied to a product line
type ItemInput struct {
	ItemID          int64           `json:"item_id" binding:"required"`
	OptionGroupID   *int64          `json:"option_group_id"`
	Quantity        float64         `json:"quantity" binding:"required,gt=0"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	Price           decimal.Decimal `json:"price"`
}

// PaymentInput is one payment settling an ingested sale
type PaymentInput struct {
	PaymentTypeID *int64          `json:"payment_type_id"`
	Value         decimal.Decimal `json:"value" binding:"required"`
	IsOnline      bool            `json:"is_online"`
	Description   string          `json:"description"`
}

// DeliveryAddressInput is one address attached to a delivery
type DeliveryAddressInput struct {
	Street           string   `json:"street"`
	Number           string   `json:"number"`
	Complement       string   `json:"complement"`
	FormattedAddress string   `json:"formatted_address"`
	Neighborhood     string   `json:"neighborhood"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	Country          string   `json:"country"`
	PostalCode       string   `json:"postal_code"`
	Reference        string   `json:"reference"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
}

// DeliveryInput is the optional delivery block of an ingested sale
type DeliveryInput struct {
	CourierID           string                 `json:"courier_id"`
	CourierName         string                 `json:"courier_name"`
	CourierPhone        string                 `json:"courier_phone"`
	CourierType         string                 `json:"courier_type"`
	DeliveredBy         string                 `json:"delivered_by"`
	DeliveryType        string                 `json:"delivery_type"`
	Status              string                 `json:"status"`
	DeliveryFee         *decimal.Decimal       `json:"delivery_fee"`
	CourierFee          *decimal.Decimal       `json:"courier_fee"`
	Timing              string                 `json:"timing"`
	Mode                string                 `json:"mode"`
	DeliveryTimeMinutes *int                   `json:"delivery_time_minutes"`
	Addresses           []DeliveryAddressInput `json:"addresses"`
}

// CreateSaleInput is the ingestion payload for one sale with all children
type CreateSaleInput struct {
	CreatedAt         time.Time          `json:"created_at" binding:"required"`
	StoreID           int64              `json:"store_id" binding:"required"`
	ChannelID         int64              `json:"channel_id" binding:"required"`
	CustomerID        *int64             `json:"customer_id"`
	CustomerName      string             `json:"customer_name"`
	SaleStatusDesc    string             `json:"sale_status_desc" binding:"required"`
	TotalAmountItems  decimal.Decimal    `json:"total_amount_items"`
	TotalDiscount     decimal.Decimal    `json:"total_discount"`
	TotalIncrease     decimal.Decimal    `json:"total_increase"`
	DeliveryFee       decimal.Decimal    `json:"delivery_fee"`
	ServiceTaxFee     decimal.Decimal    `json:"service_tax_fee"`
	TotalAmount       decimal.Decimal    `json:"total_amount" binding:"required"`
	ValuePaid         decimal.Decimal    `json:"value_paid"`
	ProductionSeconds *int               `json:"production_seconds"`
	DeliverySeconds   *int               `json:"delivery_seconds"`
	DiscountReason    string             `json:"discount_reason"`
	IncreaseReason    string             `json:"increase_reason"`
	Origin            string             `json:"origin"`
	Products          []ProductLineInput `json:"products"`
	Payments          []PaymentInput     `json:"payments"`
	Delivery          *DeliveryInput     `json:"delivery"`
}

// Ingest stores a sale with all its child records atomically and returns
// the persisted record.
func (s *Service) Ingest(ctx context.Context, input CreateSaleInput) (*models.Sale, error) {
	sale := &models.Sale{
		CreatedAt:         input.CreatedAt,
		StoreID:           input.StoreID,
		ChannelID:         input.ChannelID,
		CustomerID:        input.CustomerID,
		CustomerName:      input.CustomerName,
		SaleStatusDesc:    input.SaleStatusDesc,
		TotalAmountItems:  input.TotalAmountItems,
		TotalDiscount:     input.TotalDiscount,
		TotalIncrease:     input.TotalIncrease,
		DeliveryFee:       input.DeliveryFee,
		ServiceTaxFee:     input.ServiceTaxFee,
		TotalAmount:       input.TotalAmount,
		ValuePaid:         input.ValuePaid,
		ProductionSeconds: input.ProductionSeconds,
		DeliverySeconds:   input.DeliverySeconds,
		DiscountReason:    input.DiscountReason,
		IncreaseReason:    input.IncreaseReason,
		Origin:            input.Origin,
	}

	for _, line := range input.Products {
		ps := models.ProductSale{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			BasePrice:    line.BasePrice,
			TotalPrice:   line.TotalPrice,
			Observations: line.Observations,
		}
		for _, item := range line.Items {
			ps.Items = append(ps.Items, models.ItemProductSale{
				ItemID:          item.ItemID,
				OptionGroupID:   item.OptionGroupID,
				Quantity:        item.Quantity,
				AdditionalPrice: item.AdditionalPrice,
				Price:           item.Price,
			})
		}
		sale.Products = append(sale.Products, ps)
	}

	for _, payment := range input.Payments {
		sale.Payments = append(sale.Payments, models.Payment{
			PaymentTypeID: payment.PaymentTypeID,
			Value:         payment.Value,
			IsOnline:      payment.IsOnline,
			Description:   payment.Description,
		})
	}

	if d := input.Delivery; d != nil {
		delivery := &models.DeliverySale{
			CourierID:           d.CourierID,
			CourierName:         d.CourierName,
			CourierPhone:        d.CourierPhone,
			CourierType:         d.CourierType,
			DeliveredBy:         d.DeliveredBy,
			DeliveryType:        d.DeliveryType,
			Status:              d.Status,
			DeliveryFee:         d.DeliveryFee,
			CourierFee:          d.CourierFee,
			Timing:              d.Timing,
			Mode:                d.Mode,
			DeliveryTimeMinutes: d.DeliveryTimeMinutes,
		}
		for _, addr := range d.Addresses {
			delivery.Addresses = append(delivery.Addresses, models.DeliveryAddress{
				Street:           addr.Street,
				Number:           addr.Number,
				Complement:       addr.Complement,
				FormattedAddress: addr.FormattedAddress,
				Neighborhood:     addr.Neighborhood,
				City:             addr.City,
				State:            addr.State,
				Country:          addr.Country,
				PostalCode:       addr.PostalCode,
				Reference:        addr.Reference,
				Latitude:         addr.Latitude,
				Longitude:        addr.Longitude,
			})
		}
		sale.Delivery = delivery
	}

	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}
