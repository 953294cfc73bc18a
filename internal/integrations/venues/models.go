package venues

// Venue площадка из справочника (винодельня, ресторан, отель)
type Venue struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Address  string `json:"address,omitempty"`
	IsActive bool   `json:"is_active"`
}
