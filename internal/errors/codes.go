package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "unknown"

	// Funds and finance
	CodeInsufficientFunds Code = "insufficient_funds"
	CodeLoanActive        Code = "loan_active"
	CodeNoDebt            Code = "no_debt"
	CodeIntelUnavailable  Code = "intel_unavailable"

	// Travel
	CodeInsufficientFuel Code = "insufficient_fuel"
	CodeFuelCapacity     Code = "fuel_capacity"
	CodeTravelPending    Code = "travel_pending"
	CodeNoPendingTravel  Code = "no_pending_travel"
	CodeLocationLocked   Code = "location_locked"
	CodeGameOver         Code = "game_over"

	// Cargo and market
	CodeCargoFull       Code = "cargo_full"
	CodeOutOfStock      Code = "out_of_stock"
	CodeLimitedStock    Code = "limited_stock"
	CodeNotHeld         Code = "not_held"
	CodeCommodityLocked Code = "commodity_locked"
	CodeInvalidQuantity Code = "invalid_quantity"

	// Ships and services
	CodeLastShip       Code = "last_ship"
	CodeActiveShip     Code = "active_ship"
	CodeCargoNotEmpty  Code = "cargo_not_empty"
	CodeAlreadyOwned   Code = "already_owned"
	CodeNotOwned       Code = "not_owned"
	CodeNotForSale     Code = "not_for_sale"
	CodeTankFull       Code = "tank_full"
	CodeHullFull       Code = "hull_full"

	// Lookups and choices
	CodeUnknownLocation  Code = "unknown_location"
	CodeUnknownCommodity Code = "unknown_commodity"
	CodeUnknownShip      Code = "unknown_ship"
	CodeUnknownEvent     Code = "unknown_event"
	CodeInvalidChoice    Code = "invalid_choice"
	CodeNoAgeEvent       Code = "no_age_event"

	// Catalog decoding
	CodeInvalidCatalog Code = "invalid_catalog"
	CodeInvalidRequest Code = "invalid_request"
)

// HTTPStatus maps a code to the status the API responds with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnknownLocation, CodeUnknownCommodity, CodeUnknownShip, CodeUnknownEvent:
		return http.StatusNotFound
	case CodeInvalidQuantity, CodeInvalidChoice, CodeInvalidCatalog, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}
