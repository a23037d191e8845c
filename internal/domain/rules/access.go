package rules

import (
	"strconv"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/domain/model"
)

const (
	ReasonInvalidPrice = "invalid_price"
	ReasonNotOffered   = "not_offered"
)

const (
	labelOwned          = "יש לך גישה"
	labelClaimUnlimited = "קבל גישה (פרימיום)"
	labelClaimLimited   = "קבל גישה (נותרו "
	labelFree           = "קבל חינם"
	labelPurchasePrefix = "רכישה ב-₪"
)

// Classify turns a product and its access flags into one resolution. Order:
// hasAccess, invalid price, canClaim, showPurchaseButton. A product without any
// access block is treated as a plain catalog item and offered for purchase.
func Classify(product model.Product) model.Resolution {
	res := model.Resolution{
		ProductID:   product.ID,
		ProductType: product.ProductType,
		EntityID:    product.EntityID,
	}
	if res.EntityID.IsZero() {
		res.EntityID = product.ID
	}

	access := product.Access
	if access != nil && access.HasAccess {
		res.Kind = enums.ResolutionOwned
		res.Label = ButtonLabel(res)
		return res
	}

	price, class, err := ParsePrice(product.Price)
	if err != nil || class == PriceInvalid {
		res.Kind = enums.ResolutionHidden
		res.Reason = ReasonInvalidPrice
		return res
	}
	res.IsFree = class == PriceFree
	res.Price = FormatPrice(price)

	switch {
	case access == nil:
		res.Kind = enums.ResolutionPurchasable
	case access.CanClaim:
		res.Kind = enums.ResolutionClaimable
		if access.AllowanceType != nil && !access.AllowanceType.IsLimited {
			res.Unlimited = true
		} else {
			res.Remaining = access.RemainingAllowances
		}
	case access.ShowPurchaseButton:
		res.Kind = enums.ResolutionPurchasable
	default:
		res.Kind = enums.ResolutionHidden
		res.Reason = ReasonNotOffered
	}

	res.Label = ButtonLabel(res)
	return res
}

func ButtonLabel(res model.Resolution) string {
	switch res.Kind {
	case enums.ResolutionOwned:
		return labelOwned
	case enums.ResolutionClaimable:
		if res.Unlimited {
			return labelClaimUnlimited
		}
		return labelClaimLimited + strconv.Itoa(res.Remaining) + ")"
	case enums.ResolutionPurchasable:
		if res.IsFree {
			return labelFree
		}
		return labelPurchasePrefix + res.Price
	default:
		return ""
	}
}
