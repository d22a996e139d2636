package server

import "github.com/anicoll/homedash/internal/pkg/model"

type DevicesResponse struct {
	Devices model.Devices     `json:"devices"`
	Status  model.FetchStatus `json:"status"`
}

type EventsResponse struct {
	Events model.Events      `json:"events"`
	Status model.FetchStatus `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
