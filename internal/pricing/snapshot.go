package pricing

import (
	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/money"
)

// FromItinerary собирает Input из полного снимка маршрута.
// Вызывать только с согласованным снимком, а не с частично отредактированными днями.
func FromItinerary(days []domain.Day, inclusions []domain.Inclusion, partySize int, discount money.Cents, rates Rates) Input {
	in := Input{
		PartySize:   partySize,
		Discount:    discount,
		TaxRatePct:  rates.TaxRatePct,
		GratuityPct: rates.GratuityPct,
		DepositPct:  rates.DepositPct,
	}

	for _, d := range days {
		for _, s := range d.Stops {
			in.Stops = append(in.Stops, StopCost{FlatCost: s.FlatCost, PerPersonCost: s.PerPersonCost})
		}
	}
	for _, inc := range inclusions {
		in.Inclusions = append(in.Inclusions, LineItem{Quantity: inc.Quantity, UnitPrice: inc.UnitPrice})
	}
	return in
}

// FromProposal Input по сохранённому предложению
func FromProposal(p *domain.TripProposal) Input {
	return FromItinerary(p.Days, p.Inclusions, p.PartySize, p.DiscountAmount, Rates{
		TaxRatePct:  p.TaxRate,
		GratuityPct: p.GratuityPercentage,
		DepositPct:  p.DepositPercentage,
	})
}
