package model

import "github.com/google/uuid"

// Entidad and PersonaFisica live in the CRM schema. This service only reads them
// to validate references and label donors/recipients.

type Entidad struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RazonSocial    string    `gorm:"type:varchar(255);not null"`
	NombreFantasia string    `gorm:"type:varchar(255);not null;default:''"`
	EsDonante      bool      `gorm:"not null;default:false"`
	EsGestor       bool      `gorm:"not null;default:false"`
}

func (Entidad) TableName() string { return "entidades" }

// Rotulo prefers the trade name, like the CRM screens do.
func (e Entidad) Rotulo() string {
	if e.NombreFantasia != "" {
		return e.NombreFantasia
	}
	return e.RazonSocial
}

type PersonaFisica struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreCompleto string    `gorm:"type:varchar(255);not null"`
}

func (PersonaFisica) TableName() string { return "personas_fisicas" }

func (p PersonaFisica) Rotulo() string { return p.NombreCompleto }
