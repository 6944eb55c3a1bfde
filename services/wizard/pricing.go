package wizard

import "repairhub/models"

// Quote prices a booking: the faults make up the service charge and the
// turnaround option's surcharge is the delivery charge.
func Quote(faults []models.SelectedFault, durationCharge float64) models.Pricing {
	var service float64
	for _, f := range faults {
		service += f.Price
	}
	p := models.Pricing{
		ServiceCharge:  service,
		DeliveryCharge: durationCharge,
	}
	p.Total = p.ServiceCharge + p.DeliveryCharge - p.Discount
	return p
}
