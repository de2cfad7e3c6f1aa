// Package billing connects Paddle payments to the entitlement service.
//
// Checkout creates a Paddle transaction for the price configured for a paid
// tier, tagged with the user id in custom data. When Paddle is not configured
// it returns the catalog upgrade URL instead.
//
// HandleWebhook verifies the Paddle-Signature header, normalizes the event and
// applies it:
//
//	subscription.created, activated, resumed
//	transaction.completed, payment_succeeded   -> ChangePlan(tier of price)
//	subscription.canceled                      -> Cancel(end of billing period)
//	subscription.past_due
//	transaction.payment_failed                 -> MarkPastDue
//	subscription.updated                       -> by the reported status
//
// Other events are ignored.
package billing
