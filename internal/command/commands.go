package command

// Material Commands
type RegisterMaterial struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	InitialStock *int64 `json:"initial_stock" validate:"required,gte=0"`
	Unit         string `json:"unit" validate:"required"`
}

// Stock Commands
type RecordStock struct {
	MaterialID *int64 `json:"material_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Produced   *int64 `json:"produced" validate:"required,gte=0"`
	Sold       *int64 `json:"sold" validate:"required,gte=0"`
}

type WithdrawStock struct {
	MaterialID *int64 `json:"material_id" validate:"required"`
	Quantity   *int64 `json:"quantity" validate:"required,gt=0"`
}
