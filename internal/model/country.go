package model

import "time"

// Country mirrors the `countries` table. The code is the primary key
// (e.g. "KSA"); Flag holds the emoji shown by the client.
type Country struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Flag      string    `json:"flag"`
	CreatedAt time.Time `json:"created_at"`
}

// Airline mirrors the `airlines` table. Code is the two-letter IATA
// designator used when generating flight numbers for a batch.
type Airline struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      *string   `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
