package enums

type ResolutionKind string

const (
	ResolutionOwned       ResolutionKind = "owned"
	ResolutionClaimable   ResolutionKind = "claimable"
	ResolutionPurchasable ResolutionKind = "purchasable"
	ResolutionHidden      ResolutionKind = "hidden"
)

type OutcomeKind string

const (
	OutcomeOwned     OutcomeKind = "owned"
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeClaimed   OutcomeKind = "claimed"
	OutcomeCheckout  OutcomeKind = "checkout"
)

type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)
