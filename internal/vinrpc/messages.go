package vinrpc

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type InsertVehicleRequest struct {
	VIN       string    `json:"vin"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Vehicle struct {
	ID        string    `json:"id"`
	VIN       string    `json:"vin"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type InsertVehicleResponse struct {
	Vehicle *Vehicle `json:"vehicle"`
}

type ListVehiclesRequest struct {
	OwnerID string `json:"owner_id"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

type ListVehiclesResponse struct {
	Vehicles []*Vehicle `json:"vehicles"`
}
