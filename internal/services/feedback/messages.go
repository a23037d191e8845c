package feedback

import (
	"errors"
	"strconv"

	"github.com/ludora/storefront/internal/domain/rules"
	"github.com/ludora/storefront/internal/repo/marketapi"
	accesssvc "github.com/ludora/storefront/internal/services/access"
	authsvc "github.com/ludora/storefront/internal/services/auth"
)

const (
	MessageNetwork           = "שגיאת תקשורת, נסו שוב"
	MessageAlreadyProcessing = "הבקשה כבר בטיפול"
	MessageUnavailable       = "המוצר אינו זמין לרכישה"
	MessageLoginRequired     = "יש להתחבר כדי להמשיך"
	MessageGeneric           = "אירעה שגיאה, נסו שוב מאוחר יותר"

	MessagePurchased = "הרכישה הושלמה בהצלחה"
	MessageClaimed   = "הגישה נוספה לחשבון שלך"
	MessageAddedCart = "המוצר נוסף לעגלה"
)

// Message maps a purchase flow failure to the Hebrew text shown to the buyer.
// Errors carrying a marketplace explanation surface that explanation as is.
func Message(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, rules.ErrAlreadyProcessing):
		return MessageAlreadyProcessing
	case errors.Is(err, rules.ErrUnavailable), errors.Is(err, accesssvc.ErrProductNotFound):
		return MessageUnavailable
	case errors.Is(err, authsvc.ErrLoginRequired):
		return MessageLoginRequired
	}

	if tf, ok := rules.IsTooFast(err); ok {
		return "יותר מדי ניסיונות, נסו שוב בעוד " + strconv.FormatInt(tf.RetryAfter(), 10) + " שניות"
	}

	var domainErr *marketapi.DomainError
	if errors.As(err, &domainErr) && domainErr.Message() != "" {
		return domainErr.Message()
	}
	if marketapi.IsNetworkError(err) {
		return MessageNetwork
	}

	var reqErr *marketapi.RequestError
	if errors.As(err, &reqErr) && reqErr.Retryable {
		return MessageNetwork
	}
	return MessageGeneric
}
