// Package models defines the domain records persisted in the local cache
// and replayed against the remote gateway. JSON tags follow the flat
// snake_case column naming the remote store expects, so a marshalled
// model is already a normalized sync payload.
package models

import "time"

// AssistanceType classifies who pays for a service call.
type AssistanceType string

const (
	AssistanceCourtesy      AssistanceType = "COURTESY"
	AssistanceRegular       AssistanceType = "ASSISTANCE"
	AssistanceNotApplicable AssistanceType = "NOT_APPLICABLE"
)

// AdditionalCost is an ad-hoc cost line attached to a service record.
type AdditionalCost struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// ServiceRecord is a technical-assistance ticket.
//
// Id is generated client-side at creation and is immutable afterwards.
// Date fields other than CreatedAt/UpdatedAt are ISO date strings
// (empty when not set); CallOpeningDate is required.
type ServiceRecord struct {
	ID                    string           `json:"id"`
	OrderNumber           string           `json:"order_number"`
	Equipment             string           `json:"equipment"`
	ChassisPlate          string           `json:"chassis_plate"`
	Client                string           `json:"client"`
	ManufacturingDate     string           `json:"manufacturing_date"`
	CallOpeningDate       string           `json:"call_opening_date"`
	Technician            string           `json:"technician"`
	AssistanceType        AssistanceType   `json:"assistance_type"`
	AssistanceLocation    string           `json:"assistance_location"`
	ContactPerson         string           `json:"contact_person"`
	Phone                 string           `json:"phone"`
	ReportedIssue         string           `json:"reported_issue"`
	Supplier              string           `json:"supplier"`
	Part                  string           `json:"part"`
	Observations          string           `json:"observations"`
	ServiceDate           string           `json:"service_date"`
	ResponsibleTechnician string           `json:"responsible_technician"`
	PartLaborCost         float64          `json:"part_labor_cost"`
	TravelFreightCost     float64          `json:"travel_freight_cost"`
	PartReturn            string           `json:"part_return"`
	SupplierWarranty      bool             `json:"supplier_warranty"`
	TechnicalSolution     string           `json:"technical_solution"`
	AdditionalCosts       []AdditionalCost `json:"additional_costs"`
	CreatedBy             string           `json:"created_by"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// Normalize fills the defaults the remote store requires for every
// column: list-valued fields become empty sequences instead of null.
// Numeric and text zero values already satisfy the contract.
func (r *ServiceRecord) Normalize() {
	if r.AdditionalCosts == nil {
		r.AdditionalCosts = []AdditionalCost{}
	}
}
