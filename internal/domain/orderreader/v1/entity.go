package orderreaderv1

// Action discriminates the requests carried on the order topic.
type Action string

const (
	// ActionLimit places a limit order.
	ActionLimit Action = "limit"
	// ActionMarket places a market order.
	ActionMarket Action = "market"
	// ActionCancel cancels a resting order by id.
	ActionCancel Action = "cancel"
)

// OrderRequest is the wire form of one trading request. Price is unset
// for market orders, OrderID only set for cancels.
type OrderRequest struct {
	Action  Action `json:"action"`
	Trader  string `json:"trader"`
	ToBuy   bool   `json:"toBuy"`
	Price   uint64 `json:"price,omitempty"`
	Qty     uint64 `json:"qty,omitempty"`
	OrderID string `json:"orderId,omitempty"`

	// Offset is the position of the request on the topic, filled in by
	// the reader.
	Offset int64 `json:"-"`
}
