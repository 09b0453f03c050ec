package model

import "shear/shared/model"

const (
	TableName  = "customers"
	EntityName = "customer"

	FieldID    = "id"
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
)

type Customer struct {
	ID    string  `db:"id"`
	Name  string  `db:"name"`
	Email *string `db:"email"`
	Phone *string `db:"phone"`
	Notes string  `db:"notes"`
	model.Metadata
}
