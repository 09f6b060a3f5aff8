// Package domain contains the core entity types shared across services,
// repositories, and handlers.
//
// Types here carry no behavior beyond small derived helpers; business rules
// live in the metrics and service packages. All optionality is explicit:
// pointer fields are genuinely optional, zero values of non-pointer fields
// mean "absent" only where the field comment says so.
package domain
