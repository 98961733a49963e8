package model

import "time"

// TicketBatch mirrors the `ticket_batches` table: a purchased lot of
// tickets sharing country, airline, flight date/time, buying price and
// supplier (agent) info. Tickets are created together with the batch and
// the quantity never changes afterwards.
type TicketBatch struct {
	ID           string    `json:"id"`
	CountryCode  string    `json:"country_code"`
	AirlineName  string    `json:"airline_name"`
	FlightDate   string    `json:"flight_date"`
	FlightTime   string    `json:"flight_time"`
	BuyingPrice  int64     `json:"buying_price,omitempty"`
	Quantity     int       `json:"quantity"`
	AgentName    string    `json:"agent_name"`
	AgentContact *string   `json:"agent_contact,omitempty"`
	AgentAddress *string   `json:"agent_address,omitempty"`
	Remarks      *string   `json:"remarks,omitempty"`
	DocumentURL  *string   `json:"document_url,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// BatchStats annotates a batch with per-status ticket counts and the
// profit realized so far from sold tickets.
type BatchStats struct {
	TicketBatch
	Sold      int   `json:"sold"`
	Locked    int   `json:"locked"`
	Available int   `json:"available"`
	TotalCost int64 `json:"total_cost"`
	Profit    int64 `json:"profit"`
}

// DefaultMarkup is the selling-price markup applied to a batch's buying
// price when its tickets are created.
const DefaultMarkup = 1.2

// SellingPriceFor returns the per-ticket selling price for a buying
// price: floor(buyingPrice * 1.2).
func SellingPriceFor(buyingPrice int64) int64 {
	return int64(float64(buyingPrice) * DefaultMarkup)
}
