package models

import "time"

// Taxpayer is the declaring person or company. Address columns are kept
// flat to match the table layout.
type Taxpayer struct {
	ID  int    `db:"id" json:"id"`
	DIC string `db:"dic" json:"dic"` // tax identification number

	Individual bool `db:"individual" json:"individual"`
	Corporate  bool `db:"corporate" json:"corporate"`
	Foreign    bool `db:"foreign_entity" json:"foreign"`

	Name      string `db:"name" json:"name"`
	BirthDate string `db:"birth_date" json:"birth_date"` // individuals only, d.m.yyyy

	Street      string `db:"street" json:"street"`
	HouseNumber string `db:"house_number" json:"house_number"`
	PostalCode  string `db:"postal_code" json:"postal_code"`
	City        string `db:"city" json:"city"`
	Country     string `db:"country" json:"country"`
	Phone       string `db:"phone" json:"phone"`
	Email       string `db:"email" json:"email"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type TaxpayerRequest struct {
	DIC         string `json:"dic" validate:"required"`
	Individual  bool   `json:"individual"`
	Corporate   bool   `json:"corporate"`
	Foreign     bool   `json:"foreign"`
	Name        string `json:"name"`
	BirthDate   string `json:"birth_date"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// RegistryRecord is what a public-register lookup returns for one subject.
type RegistryRecord struct {
	ICO         string `json:"ico"`
	DIC         string `json:"dic"`
	Name        string `json:"name"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// MergeRegistry overwrites taxpayer fields with non-empty registry values.
// Empty registry fields never clobber existing data.
func (t *Taxpayer) MergeRegistry(rec *RegistryRecord) {
	if rec == nil {
		return
	}
	if rec.Name != "" {
		t.Name = rec.Name
	}
	if rec.DIC != "" {
		t.DIC = rec.DIC
	}
	if rec.Street != "" {
		t.Street = rec.Street
	}
	if rec.HouseNumber != "" {
		t.HouseNumber = rec.HouseNumber
	}
	if rec.PostalCode != "" {
		t.PostalCode = rec.PostalCode
	}
	if rec.City != "" {
		t.City = rec.City
	}
	if rec.Country != "" {
		t.Country = rec.Country
	}
}
