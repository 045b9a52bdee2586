package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	created, err := s.service.Create(req.TableNumber, req.Dishes)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	found, err := s.service.SearchByID(chi.URLParam(r, "orderID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toOrderResponse(found))
}

// listOrders ищет заказы по query-параметрам table_number и status.
// Отсутствующие параметры не участвуют в фильтрации.
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	filters := domain.Filters{}

	if raw := r.URL.Query().Get("table_number"); raw != "" {
		tableNumber, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, &domain.ConstraintError{
				Message: fmt.Sprintf("Bad table_number: [%s]", raw),
				Fields:  map[string]any{"table_number": raw},
			})
			return
		}
		filters[domain.FilterTableNumber] = tableNumber
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		filters[domain.FilterStatus] = status
	}

	found, err := s.service.SearchByFilters(filters, true)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toOrderResponses(found))
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.service.RemoveByID(chi.URLParam(r, "orderID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, deleteOrderResponse{Deleted: deleted})
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.service.ModifyStatusByID(chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (s *Server) replaceOrderDishes(w http.ResponseWriter, r *http.Request) {
	var req replaceDishesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.service.ModifyDishesByID(chi.URLParam(r, "orderID"), req.Dishes)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (s *Server) calculateProfit(w http.ResponseWriter, r *http.Request) {
	profit, err := s.service.CalculateProfit()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, profitResponse{Profit: profit.StringFixed(2)})
}

func (s *Server) listDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := s.service.ListDishes()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toDishResponses(dishes))
}

// decodeJSON читает тело запроса; синтаксическая ошибка
// приводит к ConstraintError и, как следствие, к 400.
func decodeJSON(r *http.Request, dst any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return &domain.ConstraintError{
			Message: "Malformed request body.",
			Fields:  map[string]any{"body": err.Error()},
		}
	}
	return nil
}

type errorEnvelope struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError переводит доменные ошибки в HTTP-статусы:
// SearchError — 404, ConstraintError — 400, остальное — 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var searchErr *domain.SearchError
	if errors.As(err, &searchErr) {
		s.writeJSON(w, http.StatusNotFound, errorEnvelope{
			Error:   searchErr.Message,
			Details: map[string]any(searchErr.Filters),
		})
		return
	}

	var constraintErr *domain.ConstraintError
	if errors.As(err, &constraintErr) {
		s.writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Error:   constraintErr.Message,
			Details: constraintErr.Fields,
		})
		return
	}

	s.logger.WithError(err).Error("request failed")
	s.writeJSON(w, http.StatusInternalServerError, errorEnvelope{
		Error: "internal server error",
	})
}
