package commands

import "encoding/json"

// webhookEnvelope is the outer shape of every processor event.
type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// checkoutSessionObject is the payload of checkout.session.completed.
type checkoutSessionObject struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Subscription       string            `json:"subscription"`
	Mode               string            `json:"mode"`
	SubscriptionStatus string            `json:"subscription_status"`
	PriceID            string            `json:"price_id"`
	AmountTotal        int64             `json:"amount_total"`
	Currency           string            `json:"currency"`
	Metadata           map[string]string `json:"metadata"`
}

// invoiceObject is the payload of invoice.paid.
type invoiceObject struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	PeriodEnd    int64  `json:"period_end"`
}

// subscriptionObject is the payload of customer.subscription.* events.
type subscriptionObject struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Items             struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

func (s subscriptionObject) priceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

// paymentIntentObject is the payload of payment_intent.* events.
type paymentIntentObject struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}
