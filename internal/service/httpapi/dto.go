package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
	"github.com/vladislavdragonenkov/cafe-manager/internal/service/order"
)

// Денежные суммы сериализуются строками с двумя знаками после запятой.

type orderResponse struct {
	ID          string              `json:"id"`
	TableNumber int                 `json:"table_number"`
	Status      string              `json:"status"`
	TotalPrice  string              `json:"total_price"`
	Dishes      []orderLineResponse `json:"dishes"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type orderLineResponse struct {
	ID        string `json:"id"`
	DishID    string `json:"dish_id"`
	DishName  string `json:"dish_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type dishResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type createOrderRequest struct {
	TableNumber int               `json:"table_number"`
	Dishes      []order.DishInput `json:"dishes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type replaceDishesRequest struct {
	Dishes []order.DishInput `json:"dishes"`
}

type deleteOrderResponse struct {
	Deleted int `json:"deleted"`
}

type profitResponse struct {
	Profit string `json:"profit"`
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineResponse{
			ID:        line.ID,
			DishID:    line.DishID,
			DishName:  line.DishName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Subtotal:  line.Subtotal().StringFixed(2),
		})
	}

	return orderResponse{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Status:      string(o.Status),
		TotalPrice:  o.TotalPrice.StringFixed(2),
		Dishes:      lines,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	result := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	return result
}

func toDishResponses(dishes []domain.Dish) []dishResponse {
	result := make([]dishResponse, 0, len(dishes))
	for _, dish := range dishes {
		result = append(result, dishResponse{
			ID:    dish.ID,
			Name:  dish.Name,
			Price: dish.Price.StringFixed(2),
		})
	}
	return result
}
