package events

import "github.com/abdalwely/online-store/internal/order"

type OrderLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderCreated struct {
	OrderID       string      `json:"orderId"`
	StoreID       string      `json:"storeId"`
	CustomerID    string      `json:"customerId"`
	Items         []OrderLine `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	CouponCode    string      `json:"couponCode,omitempty"`
	Discount      float64     `json:"discount"`
	ShippingCost  float64     `json:"shippingCost"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"paymentMethod"`
}

type OrderStatusChanged struct {
	OrderID    string       `json:"orderId"`
	StoreID    string       `json:"storeId"`
	CustomerID string       `json:"customerId"`
	From       order.Status `json:"from"`
	To         order.Status `json:"to"`
	Total      float64      `json:"total"`
}

func orderCreatedFrom(o order.Order) OrderCreated {
	ev := OrderCreated{
		OrderID:       o.ID,
		StoreID:       o.StoreID,
		CustomerID:    o.CustomerID,
		Subtotal:      o.Subtotal,
		CouponCode:    o.CouponCode,
		Discount:      o.Discount,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return ev
}
