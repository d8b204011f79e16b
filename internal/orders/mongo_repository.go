package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HassanTech1/4seven/internal/domain"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) OrderRepository {
	return &mongoRepository{
		collection: db.Collection("orders"),
	}
}

// Monetary fields are persisted as decimal strings so a reloaded record
// reproduces the submitted totals bit-exactly.
type orderDoc struct {
	ID              string                  `bson:"_id"`
	SessionID       string                  `bson:"session_id"`
	UserID          string                  `bson:"user_id,omitempty"`
	Items           []itemDoc               `bson:"items"`
	ShippingAddress *domain.ShippingAddress `bson:"shipping_address,omitempty"`
	DiscountCode    string                  `bson:"discount_code,omitempty"`
	Subtotal        string                  `bson:"subtotal"`
	Tax             string                  `bson:"tax"`
	ShippingCost    string                  `bson:"shipping_cost"`
	Discount        string                  `bson:"discount"`
	Total           string                  `bson:"total"`
	Currency        string                  `bson:"currency"`
	Status          string                  `bson:"status"`
	PaymentStatus   string                  `bson:"payment_status"`
	CreatedAt       time.Time               `bson:"created_at"`
	UpdatedAt       time.Time               `bson:"updated_at"`
}

type itemDoc struct {
	ProductID int64  `bson:"product_id"`
	Name      string `bson:"name"`
	Price     string `bson:"price"`
	Size      string `bson:"size"`
	Quantity  int    `bson:"quantity"`
	Image     string `bson:"image,omitempty"`
}

func (m *mongoRepository) Insert(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, toDoc(order)); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *mongoRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	var doc orderDoc

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return fromDoc(&doc)
}

func (m *mongoRepository) SyncStatus(ctx context.Context, sessionID, status, paymentStatus string) error {
	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		"$set": bson.M{
			"status":         status,
			"payment_status": paymentStatus,
			"updated_at":     time.Now().UTC(),
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to sync order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// EnsureIndexes creates the order collection indexes. One record per
// checkout session; user lookups power the account order history.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}

	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func toDoc(order *domain.Order) *orderDoc {
	items := make([]itemDoc, len(order.Items))
	for i, li := range order.Items {
		items[i] = itemDoc{
			ProductID: li.ProductID,
			Name:      li.Name,
			Price:     li.UnitPrice.String(),
			Size:      li.Size,
			Quantity:  li.Quantity,
			Image:     li.ImageRef,
		}
	}

	return &orderDoc{
		ID:              order.ID,
		SessionID:       order.SessionID,
		UserID:          order.UserID,
		Items:           items,
		ShippingAddress: order.ShippingAddress,
		DiscountCode:    order.DiscountCode,
		Subtotal:        order.Totals.Subtotal.String(),
		Tax:             order.Totals.TaxAmount.String(),
		ShippingCost:    order.Totals.ShippingAmount.String(),
		Discount:        order.Totals.DiscountAmount.String(),
		Total:           order.Totals.GrandTotal.String(),
		Currency:        order.Currency,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func fromDoc(doc *orderDoc) (*domain.Order, error) {
	items := make(domain.Snapshot, len(doc.Items))
	for i, it := range doc.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("corrupt item price %q: %w", it.Price, err)
		}
		items[i] = domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: price,
			Size:      it.Size,
			Quantity:  it.Quantity,
			ImageRef:  it.Image,
		}
	}

	totals, err := totalsFromDoc(doc)
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		ID:              doc.ID,
		SessionID:       doc.SessionID,
		UserID:          doc.UserID,
		Items:           items,
		ShippingAddress: doc.ShippingAddress,
		DiscountCode:    doc.DiscountCode,
		Totals:          totals,
		Currency:        doc.Currency,
		Status:          doc.Status,
		PaymentStatus:   doc.PaymentStatus,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}

func totalsFromDoc(doc *orderDoc) (domain.Totals, error) {
	var totals domain.Totals
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{doc.Subtotal, &totals.Subtotal},
		{doc.Tax, &totals.TaxAmount},
		{doc.ShippingCost, &totals.ShippingAmount},
		{doc.Discount, &totals.DiscountAmount},
		{doc.Total, &totals.GrandTotal},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return domain.Totals{}, fmt.Errorf("corrupt order amount %q: %w", f.raw, err)
		}
		*f.dst = d
	}
	return totals, nil
}
