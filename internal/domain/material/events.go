package material

import "time"

const EventMaterialRegistered = "MaterialRegistered"

type MaterialRegistered struct {
	MaterialID   int64     `json:"material_id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	InitialStock int64     `json:"initial_stock"`
	RegisteredAt time.Time `json:"registered_at"`
}
