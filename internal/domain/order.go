package domain

import "time"

// OrderStatus is the fulfilment state of an order. The constants are the
// states the admin UI offers; any other value is stored as given.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderItem struct {
	ProductID   string  `json:"product_id" bson:"product_id" validate:"required"`
	ProductName string  `json:"product_name" bson:"product_name" validate:"required"`
	Quantity    int     `json:"quantity" bson:"quantity" validate:"gte=1"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
}

// Order is created by a customer and only ever has its status changed afterwards
type Order struct {
	ID              string      `json:"id" bson:"id"`
	CustomerName    string      `json:"customer_name" bson:"customer_name"`
	CustomerEmail   string      `json:"customer_email" bson:"customer_email"`
	CustomerPhone   string      `json:"customer_phone" bson:"customer_phone"`
	CustomerAddress string      `json:"customer_address" bson:"customer_address"`
	Items           []OrderItem `json:"items" bson:"items"`
	Total           float64     `json:"total" bson:"total"`
	Status          OrderStatus `json:"status" bson:"status"`
	Notes           *string     `json:"notes" bson:"notes"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
}

// OrderTotal sums price times quantity over the items
func OrderTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
