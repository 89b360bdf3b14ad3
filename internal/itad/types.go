package itad

// DealItem represents a single entry from the ITAD /deals/v2 response list.
type DealItem struct {
	ID    string   `json:"id"`
	Slug  string   `json:"slug"`
	Title string   `json:"title"`
	Deal  DealInfo `json:"deal"`
}

// DealInfo holds the price and shop details of one deal.
type DealInfo struct {
	Shop    Shop   `json:"shop"`
	Price   Amount `json:"price"`
	Regular Amount `json:"regular"`
	Cut     int    `json:"cut"`
	URL     string `json:"url"`
}

// Shop identifies the store offering a deal.
type Shop struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Amount holds ITAD monetary information.
type Amount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// StatsItem represents a single entry from the ITAD /stats/most-*/v1
// popularity lists. Count carries waitlist or collection totals depending
// on the endpoint; Position is the 1-based list rank.
type StatsItem struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Count    int    `json:"count"`
	Position int    `json:"position"`
}
