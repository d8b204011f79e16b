package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/HassanTech1/4seven/internal/domain"
)

// Resolver turns a discount code into a discount. An unknown code resolves
// to ErrInvalidDiscountCode; callers must not apply any deduction then.
type Resolver interface {
	Resolve(ctx context.Context, code string) (domain.Discount, error)
}

// StaticResolver carries the store's two launch codes. A production
// deployment swaps in a resolver backed by the promotions service.
type StaticResolver struct{}

func (StaticResolver) Resolve(_ context.Context, code string) (domain.Discount, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "7777":
		return domain.Discount{
			Code:  "7777",
			Kind:  domain.DiscountPercentage,
			Value: decimal.NewFromInt(10),
		}, nil
	case "WELCOME":
		return domain.Discount{
			Code:  "WELCOME",
			Kind:  domain.DiscountFixedAmount,
			Value: decimal.NewFromInt(50),
		}, nil
	default:
		return domain.Discount{}, ErrInvalidDiscountCode
	}
}
