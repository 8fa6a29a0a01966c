package models

// Tank represents a named physical vessel
type Tank struct {
	ID     int64  `json:"tank_id"`
	Name   string `json:"tank_name"`
	Active Flag   `json:"tank_active"`
}

// FishType represents a named species label
type FishType struct {
	ID   int64  `json:"fish_type_id"`
	Name string `json:"fish_type_name"`
}

// TankActivation registers a tank by name and sets its active flag
type TankActivation struct {
	Name   string `json:"tank_name"`
	Active Flag   `json:"tank_active"`
}
