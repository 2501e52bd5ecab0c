package models

import (
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func TestCreateOrderRequest_Validate(t *testing.T) {
	valid := func() *CreateOrderRequest {
		return &CreateOrderRequest{
			SaveOrderRequest: SaveOrderRequest{
				CustomerName:  "John Doe",
				CustomerPhone: "+441234567890",
				PaymentMethod: "Card",
				OrderType:     "Dine-in",
				TableNumber:   intPtr(4),
			},
			Items: []ItemRequest{
				{Name: "Latte", Quantity: 2},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*CreateOrderRequest)
		wantErr bool
	}{
		{
			name:    "valid request",
			mutate:  func(r *CreateOrderRequest) {},
			wantErr: false,
		},
		{
			name:    "missing customer name",
			mutate:  func(r *CreateOrderRequest) { r.CustomerName = "" },
			wantErr: true,
		},
		{
			name:    "missing customer phone",
			mutate:  func(r *CreateOrderRequest) { r.CustomerPhone = "" },
			wantErr: true,
		},
		{
			name:    "invalid payment method",
			mutate:  func(r *CreateOrderRequest) { r.PaymentMethod = "Cheque" },
			wantErr: true,
		},
		{
			name:    "invalid order type",
			mutate:  func(r *CreateOrderRequest) { r.OrderType = "Drive-through" },
			wantErr: true,
		},
		{
			name:    "dine-in without table",
			mutate:  func(r *CreateOrderRequest) { r.TableNumber = nil },
			wantErr: true,
		},
		{
			name:    "table number out of range",
			mutate:  func(r *CreateOrderRequest) { r.TableNumber = intPtr(101) },
			wantErr: true,
		},
		{
			name: "takeaway without table",
			mutate: func(r *CreateOrderRequest) {
				r.OrderType = "Takeaway"
				r.TableNumber = nil
			},
			wantErr: false,
		},
		{
			name:    "empty items",
			mutate:  func(r *CreateOrderRequest) { r.Items = nil },
			wantErr: true,
		},
		{
			name:    "zero quantity",
			mutate:  func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "unnamed item",
			mutate:  func(r *CreateOrderRequest) { r.Items[0].Name = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrder_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		current OrderStatus
		next    OrderStatus
		want    bool
	}{
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to pending", StatusPending, StatusPending, false},
		{"completed is immutable", StatusCompleted, StatusCancelled, false},
		{"cancelled is immutable", StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.current}
			if got := o.CanTransitionTo(tt.next); got != tt.want {
				t.Errorf("CanTransitionTo(%s) = %v, want %v", tt.next, got, tt.want)
			}
		})
	}
}

func TestGenerateReceiptRef(t *testing.T) {
	date := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)
	if got := GenerateReceiptRef(date, 7); got != "REC_20260901_007" {
		t.Errorf("GenerateReceiptRef = %s, want REC_20260901_007", got)
	}
}

func TestReceiptRoutingKey(t *testing.T) {
	tests := []struct {
		orderType OrderType
		want      string
	}{
		{DineIn, "receipt.dine-in"},
		{Takeaway, "receipt.takeaway"},
		{Delivery, "receipt.delivery"},
	}

	for _, tt := range tests {
		if got := ReceiptRoutingKey(tt.orderType); got != tt.want {
			t.Errorf("ReceiptRoutingKey(%s) = %s, want %s", tt.orderType, got, tt.want)
		}
	}
}
