package partner

import (
	"github.com/clubpulse/clubpulse/internal/types"
)

// Partner is a merchant accepting club settlements at its point of sale
type Partner struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Document string `db:"document" json:"document,omitempty"`
	Active   bool   `db:"active" json:"active"`

	types.BaseModel
}

func (p *Partner) TableName() string {
	return "partners"
}
