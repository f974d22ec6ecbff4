package domain

import "time"

// Record status values the dashboard filters on.
const (
	LeadStatusNew       = "New"
	LeadStatusQualified = "Qualified"
	LeadStatusConverted = "Converted"

	PropertyStatusActive = "Active"

	UnitStatusAvailable = "Available"
	UnitStatusBooked    = "Booked"
	UnitStatusSold      = "Sold"

	TaskStatusPending = "Pending"
)

// Lead is the projection of a leads row used for counting.
type Lead struct {
	Status string
}

// Property is the projection of a properties row.
type Property struct {
	Status string
}

// Project is the projection of a projects row.
type Project struct {
	ID   string
	Name string
}

// Unit is the projection of a project_units row.
type Unit struct {
	UnitStatus string
}

// Deal is the projection of a deals row. DealValue is free text and may not parse.
type Deal struct {
	DealValue     *string
	PipelineStage string
}

// Task is the projection of a tasks row.
type Task struct {
	Status string
}

// Appointment is the projection of an appointments row.
type Appointment struct {
	ID            string
	StartDatetime time.Time
}
